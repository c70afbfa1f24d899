package result

import (
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/outcome"
)

// Result is the recorded final state of one fixture, written once by the
// external results feed. It carries either an explicit outcome code, a goal
// pair, or both.
type Result struct {
	Round        int
	FixtureIndex int
	Code         string
	HomeGoals    *int
	AwayGoals    *int
	RecordedAt   time.Time
}

// Outcome resolves the 3-way outcome. The explicit code takes precedence over
// the goal pair when both are present. A result with neither is undecided,
// which is a normal state rather than an error.
func (r Result) Outcome() (outcome.Outcome, bool) {
	if parsed, ok := outcome.Parse(r.Code); ok {
		return parsed, true
	}
	if r.HomeGoals == nil || r.AwayGoals == nil {
		return "", false
	}
	switch {
	case *r.HomeGoals > *r.AwayGoals:
		return outcome.Home, true
	case *r.AwayGoals > *r.HomeGoals:
		return outcome.Away, true
	default:
		return outcome.Draw, true
	}
}

// OutcomesByIndex maps a round's decided outcomes by fixture index. Undecided
// results are simply absent from the map.
func OutcomesByIndex(items []Result) map[int]outcome.Outcome {
	out := make(map[int]outcome.Outcome, len(items))
	for _, item := range items {
		if resolved, ok := item.Outcome(); ok {
			out[item.FixtureIndex] = resolved
		}
	}
	return out
}
