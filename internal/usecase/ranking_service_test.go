package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/outcome"
	"github.com/ferguskeenan/prediction-league/internal/infrastructure/repository/memory"
)

// quartileRound seeds one decided round where correct counts land on
// alice=3, bob=2, carol=2 and dave=1.
func quartileRound(t *testing.T) *memory.Store {
	t.Helper()

	store := memory.NewStore()
	seedFixtures(t, store, 1, 3, testNow.Add(-24*time.Hour))
	seedPicks(t, store, "alice", 1, outcome.Home, outcome.Home, outcome.Home)
	seedPicks(t, store, "bob", 1, outcome.Home, outcome.Home, outcome.Away)
	seedPicks(t, store, "carol", 1, outcome.Home, outcome.Away, outcome.Home)
	seedPicks(t, store, "dave", 1, outcome.Home, outcome.Away, outcome.Away)
	seedResults(t, store, 1, "H", "H", "H")
	return store
}

func TestRankingService_OverallPercentile_InclusiveUnderTies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := rankingForStore(quartileRound(t))

	checks := map[string]float64{
		"alice": 100,
		"bob":   75,
		"carol": 75,
		"dave":  25,
	}
	for userID, want := range checks {
		got, err := svc.OverallPercentile(ctx, userID)
		if err != nil {
			t.Fatalf("percentile %s: %v", userID, err)
		}
		if !got.Available {
			t.Fatalf("percentile %s must be available", userID)
		}
		if got.Value != want {
			t.Fatalf("percentile %s: got %.2f want %.2f", userID, got.Value, want)
		}
	}
}

func TestRankingService_OverallPercentile_UnknownUserIsUnavailable(t *testing.T) {
	t.Parallel()

	svc := rankingForStore(quartileRound(t))
	got, err := svc.OverallPercentile(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("percentile: %v", err)
	}
	if got.Available {
		t.Fatalf("expected unavailable percentile for a user with no picks")
	}
}

func TestRankingService_OverallPercentile_NoDecidedRounds(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedFixtures(t, store, 1, 2, testNow.Add(24*time.Hour))
	seedPicks(t, store, "alice", 1, outcome.Home, outcome.Home)

	got, err := rankingForStore(store).OverallPercentile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("percentile: %v", err)
	}
	if got.Available {
		t.Fatalf("expected unavailable percentile before any decided round")
	}
}

func TestRankingService_Form_ExcludesPartialWindowParticipants(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	for round := 1; round <= 5; round++ {
		seedFixtures(t, store, round, 1, testNow.Add(time.Duration(round-6)*24*time.Hour))
		seedPicks(t, store, "alice", round, outcome.Home)
		if round <= 4 {
			seedPicks(t, store, "bob", round, outcome.Home)
		}
		seedResults(t, store, round, "H")
	}

	board, err := rankingForStore(store).Form(context.Background(), 5)
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if board.Window != 5 || len(board.Rounds) != 5 {
		t.Fatalf("unexpected window shape: %+v", board)
	}
	if len(board.Rows) != 1 {
		t.Fatalf("expected only the full-window participant, got %d rows", len(board.Rows))
	}
	if board.Rows[0].UserID != "alice" || board.Rows[0].Points != 5 || board.Rows[0].Rank != 1 {
		t.Fatalf("unexpected leader row: %+v", board.Rows[0])
	}
}

func TestRankingService_Form_RejectsUnknownWindow(t *testing.T) {
	t.Parallel()

	_, err := rankingForStore(memory.NewStore()).Form(context.Background(), 3)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRankingService_Form_EmptyWhenSeasonTooShort(t *testing.T) {
	t.Parallel()

	board, err := rankingForStore(quartileRound(t)).Form(context.Background(), 5)
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if len(board.Rows) != 0 || len(board.Rounds) != 0 {
		t.Fatalf("expected empty leaderboard with one decided round, got %+v", board)
	}
}

func TestRankingService_OverallRankDelta(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("no decided rounds", func(t *testing.T) {
		t.Parallel()

		store := memory.NewStore()
		seedFixtures(t, store, 1, 1, testNow.Add(24*time.Hour))
		_, err := rankingForStore(store).OverallRankDelta(ctx, "alice")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("single decided round is a new entrant", func(t *testing.T) {
		t.Parallel()

		delta, err := rankingForStore(quartileRound(t)).OverallRankDelta(ctx, "bob")
		if err != nil {
			t.Fatalf("rank delta: %v", err)
		}
		if !delta.NewEntrant {
			t.Fatalf("expected new entrant flag, got %+v", delta)
		}
	})

	t.Run("rank change across two rounds", func(t *testing.T) {
		t.Parallel()

		store := memory.NewStore()
		seedFixtures(t, store, 1, 1, testNow.Add(-48*time.Hour))
		seedPicks(t, store, "alice", 1, outcome.Away)
		seedPicks(t, store, "bob", 1, outcome.Home)
		seedResults(t, store, 1, "H")

		seedFixtures(t, store, 2, 2, testNow.Add(-24*time.Hour))
		seedPicks(t, store, "alice", 2, outcome.Home, outcome.Home)
		seedPicks(t, store, "bob", 2, outcome.Away, outcome.Away)
		seedResults(t, store, 2, "H", "H")

		delta, err := rankingForStore(store).OverallRankDelta(ctx, "alice")
		if err != nil {
			t.Fatalf("rank delta: %v", err)
		}
		if delta.NewEntrant {
			t.Fatalf("unexpected new entrant flag: %+v", delta)
		}
		if delta.CurrentRank != 1 || delta.PreviousRank != 2 || delta.Delta != 1 {
			t.Fatalf("unexpected delta: %+v", delta)
		}
	})
}

func TestRankingService_PercentileHistory_OrderedByRound(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	for round := 1; round <= 3; round++ {
		seedFixtures(t, store, round, 1, testNow.Add(time.Duration(round-4)*24*time.Hour))
		seedPicks(t, store, "alice", round, outcome.Home)
		seedPicks(t, store, "bob", round, outcome.Away)
		seedResults(t, store, round, "H")
	}

	history, err := rankingForStore(store).PercentileHistory(context.Background(), "alice")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(history))
	}
	for i, entry := range history {
		if entry.Round != i+1 {
			t.Fatalf("entry %d out of order: %+v", i, entry)
		}
		if entry.Percentile != 100 {
			t.Fatalf("entry %d percentile: got %.2f", i, entry.Percentile)
		}
	}
}

func TestRankingService_LongestTopQuartileStreak(t *testing.T) {
	t.Parallel()

	// Alice clears the quartile in rounds 1, 2 and 4; round 3 breaks the run,
	// leaving rounds 1 and 2 as the best span.
	store := memory.NewStore()
	for round := 1; round <= 4; round++ {
		seedFixtures(t, store, round, 1, testNow.Add(time.Duration(round-6)*24*time.Hour))
		alicePick, bobPick := outcome.Home, outcome.Away
		if round == 3 {
			alicePick, bobPick = outcome.Away, outcome.Home
		}
		seedPicks(t, store, "alice", round, alicePick)
		seedPicks(t, store, "bob", round, bobPick)
		seedResults(t, store, round, "H")
	}

	streak, err := rankingForStore(store).LongestTopQuartileStreak(context.Background(), "alice")
	if err != nil {
		t.Fatalf("streak: %v", err)
	}
	if streak.Length != 2 || streak.StartRound != 1 || streak.EndRound != 2 {
		t.Fatalf("unexpected streak: %+v", streak)
	}
}
