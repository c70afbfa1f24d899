package submission

import "time"

// Submission locks a user's complete pick set for a round. It exists only if
// the pick set exactly covered the round's fixture indices at write time.
type Submission struct {
	UserID      string
	Round       int
	SubmittedAt time.Time
}
