package league

import (
	"fmt"
	"time"
)

// League is a private mini-league competing on prediction scores.
// StartRoundOverride, when set, pins the earliest round counted toward the
// league's standings; otherwise the effective start round is derived from the
// league's creation time.
type League struct {
	ID                 string
	Name               string
	OwnerUserID        string
	InviteCode         string
	CreatedAt          time.Time
	StartRoundOverride *int
}

// Member is one league membership row.
type Member struct {
	LeagueID string
	UserID   string
	JoinedAt time.Time
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.OwnerUserID == "" {
		return fmt.Errorf("league owner is required")
	}
	if l.StartRoundOverride != nil && *l.StartRoundOverride <= 0 {
		return fmt.Errorf("league start round override must be greater than zero")
	}
	return nil
}
