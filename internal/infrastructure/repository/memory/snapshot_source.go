package memory

import (
	"context"

	"github.com/ferguskeenan/prediction-league/internal/domain/fixture"
	"github.com/ferguskeenan/prediction-league/internal/domain/pick"
	"github.com/ferguskeenan/prediction-league/internal/domain/result"
	"github.com/ferguskeenan/prediction-league/internal/domain/scoring"
	"github.com/ferguskeenan/prediction-league/internal/domain/submission"
)

// SnapshotSource reads all scoring inputs under one RLock of the store, the
// in-memory equivalent of the read-only transaction the postgres source uses.
type SnapshotSource struct {
	store *Store
}

func NewSnapshotSource(store *Store) *SnapshotSource {
	return &SnapshotSource{store: store}
}

func (s *SnapshotSource) Load(_ context.Context) (*scoring.Snapshot, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	snap := &scoring.Snapshot{
		Fixtures:    make(map[int][]fixture.Fixture, len(s.store.fixturesByRound)),
		Results:     make(map[int][]result.Result),
		Picks:       make(map[int][]pick.Pick),
		Submissions: make(map[int][]submission.Submission),
		TakenAt:     s.store.now().UTC(),
	}

	for round, items := range s.store.fixturesByRound {
		snap.Fixtures[round] = cloneFixtures(items)
		snap.Results[round] = s.store.listResultsByRoundLocked(round)
		snap.Picks[round] = s.store.listPicksByRoundLocked(round)
		snap.Submissions[round] = s.store.listSubmissionsByRoundLocked(round)
	}
	return snap, nil
}
