package pick

import (
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/outcome"
)

// Pick is a user's chosen outcome for one fixture. Picks are freely
// overwritable until a submission exists for the same (user, round).
type Pick struct {
	UserID       string
	Round        int
	FixtureIndex int
	Outcome      outcome.Outcome
	UpdatedAt    time.Time
}

// ByIndex maps one user's picks for a round by fixture index.
func ByIndex(items []Pick) map[int]outcome.Outcome {
	out := make(map[int]outcome.Outcome, len(items))
	for _, item := range items {
		out[item.FixtureIndex] = item.Outcome
	}
	return out
}
