package scoring

import (
	"context"
	"slices"
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/fixture"
	"github.com/ferguskeenan/prediction-league/internal/domain/pick"
	"github.com/ferguskeenan/prediction-league/internal/domain/result"
	"github.com/ferguskeenan/prediction-league/internal/domain/submission"
)

// Snapshot is one consistent view of the season's scoring inputs. Every
// ranking or standings computation reads from a single snapshot so that a
// result landing mid-request cannot skew part of the output.
type Snapshot struct {
	Fixtures    map[int][]fixture.Fixture
	Results     map[int][]result.Result
	Picks       map[int][]pick.Pick
	Submissions map[int][]submission.Submission
	TakenAt     time.Time
}

// Source produces snapshots. The postgres implementation reads inside one
// read-only transaction; the memory implementation copies under a single lock.
type Source interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// Rounds returns the rounds with at least one fixture, ascending.
func (s *Snapshot) Rounds() []int {
	rounds := make([]int, 0, len(s.Fixtures))
	for round := range s.Fixtures {
		rounds = append(rounds, round)
	}
	slices.Sort(rounds)
	return rounds
}
