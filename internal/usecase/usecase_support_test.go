package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/fixture"
	"github.com/ferguskeenan/prediction-league/internal/domain/outcome"
	"github.com/ferguskeenan/prediction-league/internal/domain/pick"
	"github.com/ferguskeenan/prediction-league/internal/domain/result"
	"github.com/ferguskeenan/prediction-league/internal/infrastructure/repository/memory"
	"github.com/ferguskeenan/prediction-league/internal/platform/cache"
)

// testNow is the frozen clock every service under test runs on. Kickoffs are
// seeded relative to it so round states are deterministic.
var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedFixtures(t *testing.T, store *memory.Store, round, count int, kickoff time.Time) {
	t.Helper()

	items := make([]fixture.Fixture, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, fixture.Fixture{
			Round:     round,
			Index:     i,
			HomeTeam:  fmt.Sprintf("Home %d-%d", round, i),
			AwayTeam:  fmt.Sprintf("Away %d-%d", round, i),
			KickoffAt: kickoff.Add(time.Duration(i) * time.Hour),
		})
	}
	if err := store.Fixtures().UpsertFixtures(context.Background(), items); err != nil {
		t.Fatalf("seed fixtures round=%d: %v", round, err)
	}
}

func seedPicks(t *testing.T, store *memory.Store, userID string, round int, outcomes ...outcome.Outcome) {
	t.Helper()

	for i, picked := range outcomes {
		err := store.Picks().Upsert(context.Background(), pick.Pick{
			UserID:       userID,
			Round:        round,
			FixtureIndex: i,
			Outcome:      picked,
			UpdatedAt:    testNow,
		})
		if err != nil {
			t.Fatalf("seed pick user=%s round=%d index=%d: %v", userID, round, i, err)
		}
	}
}

func seedResults(t *testing.T, store *memory.Store, round int, codes ...string) {
	t.Helper()

	for i, code := range codes {
		err := store.Results().Upsert(context.Background(), result.Result{
			Round:        round,
			FixtureIndex: i,
			Code:         code,
			RecordedAt:   testNow,
		})
		if err != nil {
			t.Fatalf("seed result round=%d index=%d: %v", round, i, err)
		}
	}
}

func predictionForStore(store *memory.Store, notifier SubmissionNotifier) *PredictionService {
	svc := NewPredictionService(store.Fixtures(), store.Picks(), store.Results(), store.Submissions(), store.Leagues(), notifier)
	svc.now = func() time.Time { return testNow }
	return svc
}

func rankingForStore(store *memory.Store) *RankingService {
	return NewRankingService(store.Users(), memory.NewSnapshotSource(store), cache.NewStore(time.Minute))
}

func standingsForStore(store *memory.Store) *StandingsService {
	svc := NewStandingsService(store.Leagues(), store.Users(), memory.NewSnapshotSource(store), cache.NewStore(time.Minute))
	svc.now = func() time.Time { return testNow }
	return svc
}
