package scoring

import (
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/fixture"
	"github.com/ferguskeenan/prediction-league/internal/domain/gameweek"
	"github.com/ferguskeenan/prediction-league/internal/domain/outcome"
	"github.com/ferguskeenan/prediction-league/internal/domain/result"
)

// SeasonIndex is a snapshot reshaped for scoring: per-round decided outcomes,
// per-round per-user pick maps and the round deadlines. Built once per
// snapshot and shared across standings, rankings and stats.
type SeasonIndex struct {
	rounds    []int
	outcomes  map[int]map[int]outcome.Outcome
	picks     map[int]map[string]map[int]outcome.Outcome
	deadlines map[int]time.Time
	decided   map[int]bool
}

// BuildSeasonIndex indexes the snapshot. A round is decided only when every
// fixture index in it has a decided outcome; partially resolved rounds stay
// out of scoring entirely.
func BuildSeasonIndex(snap *Snapshot, buffer time.Duration) *SeasonIndex {
	idx := &SeasonIndex{
		rounds:    snap.Rounds(),
		outcomes:  make(map[int]map[int]outcome.Outcome, len(snap.Fixtures)),
		picks:     make(map[int]map[string]map[int]outcome.Outcome, len(snap.Picks)),
		deadlines: make(map[int]time.Time, len(snap.Fixtures)),
		decided:   make(map[int]bool, len(snap.Fixtures)),
	}

	for round, fixtures := range snap.Fixtures {
		outcomes := result.OutcomesByIndex(snap.Results[round])
		idx.outcomes[round] = outcomes

		decided := len(fixtures) > 0
		for _, fx := range fixtures {
			if _, ok := outcomes[fx.Index]; !ok {
				decided = false
				break
			}
		}
		idx.decided[round] = decided

		if deadline, ok := gameweek.Deadline(fixture.Kickoffs(fixtures), buffer); ok {
			idx.deadlines[round] = deadline
		}
	}

	for round, picks := range snap.Picks {
		byUser := make(map[string]map[int]outcome.Outcome)
		for _, p := range picks {
			if byUser[p.UserID] == nil {
				byUser[p.UserID] = make(map[int]outcome.Outcome)
			}
			byUser[p.UserID][p.FixtureIndex] = p.Outcome
		}
		idx.picks[round] = byUser
	}
	return idx
}

// Rounds returns every round with fixtures, ascending.
func (idx *SeasonIndex) Rounds() []int { return idx.rounds }

// DecidedRounds returns the rounds where every fixture has a decided outcome,
// ascending.
func (idx *SeasonIndex) DecidedRounds() []int {
	out := make([]int, 0, len(idx.rounds))
	for _, round := range idx.rounds {
		if idx.decided[round] {
			out = append(out, round)
		}
	}
	return out
}

// Decided reports whether the round is fully decided.
func (idx *SeasonIndex) Decided(round int) bool { return idx.decided[round] }

// Outcomes returns the decided outcomes of the round keyed by fixture index.
func (idx *SeasonIndex) Outcomes(round int) map[int]outcome.Outcome {
	return idx.outcomes[round]
}

// UserPicks returns one user's picks for the round keyed by fixture index.
func (idx *SeasonIndex) UserPicks(round int, userID string) map[int]outcome.Outcome {
	return idx.picks[round][userID]
}

// PicksByUser returns every user's picks for the round.
func (idx *SeasonIndex) PicksByUser(round int) map[string]map[int]outcome.Outcome {
	return idx.picks[round]
}

// GroupPicks returns the round's picks restricted to the given users. Members
// without picks keep an empty entry so the map length stays the member count,
// which is what the unicorn group-size rule counts.
func (idx *SeasonIndex) GroupPicks(round int, userIDs []string) map[string]map[int]outcome.Outcome {
	out := make(map[string]map[int]outcome.Outcome, len(userIDs))
	for _, userID := range userIDs {
		picks := idx.picks[round][userID]
		if picks == nil {
			picks = map[int]outcome.Outcome{}
		}
		out[userID] = picks
	}
	return out
}

// Deadline returns the round's prediction deadline, if kickoffs are confirmed.
func (idx *SeasonIndex) Deadline(round int) (time.Time, bool) {
	deadline, ok := idx.deadlines[round]
	return deadline, ok
}

// Participants returns the users with at least one pick in any decided round.
func (idx *SeasonIndex) Participants() []string {
	seen := make(map[string]struct{})
	for _, round := range idx.rounds {
		if !idx.decided[round] {
			continue
		}
		for userID := range idx.picks[round] {
			seen[userID] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for userID := range seen {
		out = append(out, userID)
	}
	return out
}

// Score computes the user's final score for a decided round against the given
// comparison group. The bool is false when the round is not decided.
func (idx *SeasonIndex) Score(round int, userID string, groupIDs []string) (RoundScore, bool) {
	if !idx.decided[round] {
		return RoundScore{}, false
	}
	outcomes := idx.outcomes[round]
	unicorns := UnicornCounts(idx.GroupPicks(round, groupIDs), outcomes)
	return RoundScore{
		UserID:   userID,
		Round:    round,
		Correct:  CorrectCount(idx.UserPicks(round, userID), outcomes),
		Unicorns: unicorns[userID],
	}, true
}
