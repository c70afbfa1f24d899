package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/league"
	"github.com/ferguskeenan/prediction-league/internal/domain/outcome"
	"github.com/ferguskeenan/prediction-league/internal/domain/user"
	"github.com/ferguskeenan/prediction-league/internal/infrastructure/repository/memory"
)

func seedLeague(t *testing.T, store *memory.Store, leagueID string, createdAt time.Time, override *int, members ...string) {
	t.Helper()

	ctx := context.Background()
	item := league.League{
		ID:                 leagueID,
		Name:               "League " + leagueID,
		OwnerUserID:        members[0],
		InviteCode:         "CODE" + leagueID,
		CreatedAt:          createdAt,
		StartRoundOverride: override,
	}
	owner := league.Member{LeagueID: leagueID, UserID: members[0], JoinedAt: createdAt}
	if err := store.Leagues().Create(ctx, item, owner); err != nil {
		t.Fatalf("seed league %s: %v", leagueID, err)
	}
	for _, userID := range members[1:] {
		err := store.Leagues().AddMember(ctx, league.Member{LeagueID: leagueID, UserID: userID, JoinedAt: createdAt})
		if err != nil {
			t.Fatalf("seed member %s: %v", userID, err)
		}
	}
}

// twoRoundSeason seeds two fully decided rounds for alice, bob and carol.
// Round 1 is a shared pot between alice and bob; round 2 is an outright alice
// win carrying one unicorn.
func twoRoundSeason(t *testing.T) *memory.Store {
	t.Helper()

	store := memory.NewStore()
	seedFixtures(t, store, 1, 2, testNow.Add(-72*time.Hour))
	seedFixtures(t, store, 2, 2, testNow.Add(-48*time.Hour))

	seedPicks(t, store, "alice", 1, outcome.Home, outcome.Home)
	seedPicks(t, store, "bob", 1, outcome.Home, outcome.Home)
	seedPicks(t, store, "carol", 1, outcome.Away, outcome.Away)
	seedResults(t, store, 1, "H", "H")

	seedPicks(t, store, "alice", 2, outcome.Home, outcome.Away)
	seedPicks(t, store, "bob", 2, outcome.Home, outcome.Home)
	seedPicks(t, store, "carol", 2, outcome.Away, outcome.Home)
	seedResults(t, store, 2, "H", "A")

	for _, p := range []user.Profile{
		{UserID: "alice", DisplayName: "Alice"},
		{UserID: "bob", DisplayName: "Bob"},
		{UserID: "carol", DisplayName: "Carol"},
	} {
		if err := store.Users().UpsertProfile(context.Background(), p); err != nil {
			t.Fatalf("seed profile %s: %v", p.UserID, err)
		}
	}
	return store
}

func TestStandingsService_Build_SharedPotAndOutrightWin(t *testing.T) {
	t.Parallel()

	store := twoRoundSeason(t)
	seedLeague(t, store, "lg-1", testNow.Add(-100*time.Hour), nil, "alice", "bob", "carol")
	svc := standingsForStore(store)

	table, err := svc.Build(context.Background(), "lg-1", "alice")
	if err != nil {
		t.Fatalf("build standings: %v", err)
	}

	if table.StartRound != 1 {
		t.Fatalf("unexpected start round: %d", table.StartRound)
	}
	if len(table.Rounds) != 2 {
		t.Fatalf("unexpected round count: %d", len(table.Rounds))
	}
	if len(table.Rows) != 3 {
		t.Fatalf("unexpected row count: %d", len(table.Rows))
	}

	// Round 1 splits the pot between alice and bob; round 2 alice wins alone.
	checks := []struct {
		rank     int
		userID   string
		name     string
		points   int
		unicorns int
		correct  int
	}{
		{1, "alice", "Alice", 4, 1, 4},
		{2, "bob", "Bob", 1, 0, 3},
		{3, "carol", "Carol", 0, 0, 0},
	}
	for i, want := range checks {
		got := table.Rows[i]
		if got.Rank != want.rank || got.UserID != want.userID || got.Name != want.name {
			t.Fatalf("row %d identity mismatch: %+v", i, got)
		}
		if got.Points != want.points || got.Unicorns != want.unicorns || got.CorrectPicks != want.correct {
			t.Fatalf("row %d totals mismatch: got %+v want %+v", i, got, want)
		}
	}
}

func TestStandingsService_Build_StartRoundFromCreationTime(t *testing.T) {
	t.Parallel()

	store := twoRoundSeason(t)
	// Created after round 1's deadline but before round 2's: only round 2 counts.
	seedLeague(t, store, "lg-2", testNow.Add(-60*time.Hour), nil, "alice", "bob", "carol")
	svc := standingsForStore(store)

	table, err := svc.Build(context.Background(), "lg-2", "bob")
	if err != nil {
		t.Fatalf("build standings: %v", err)
	}
	if table.StartRound != 2 {
		t.Fatalf("unexpected start round: %d", table.StartRound)
	}
	if len(table.Rounds) != 1 || table.Rounds[0] != 2 {
		t.Fatalf("unexpected rounds: %v", table.Rounds)
	}
	if table.Rows[0].UserID != "alice" || table.Rows[0].Points != 3 {
		t.Fatalf("unexpected leader: %+v", table.Rows[0])
	}
}

func TestStandingsService_Build_StartRoundOverrideWins(t *testing.T) {
	t.Parallel()

	store := twoRoundSeason(t)
	override := 1
	seedLeague(t, store, "lg-3", testNow.Add(-60*time.Hour), &override, "alice", "bob", "carol")
	svc := standingsForStore(store)

	table, err := svc.Build(context.Background(), "lg-3", "carol")
	if err != nil {
		t.Fatalf("build standings: %v", err)
	}
	if table.StartRound != 1 {
		t.Fatalf("unexpected start round: %d", table.StartRound)
	}
	if len(table.Rounds) != 2 {
		t.Fatalf("unexpected rounds: %v", table.Rounds)
	}
}

func TestStandingsService_Build_RequiresMembership(t *testing.T) {
	t.Parallel()

	store := twoRoundSeason(t)
	seedLeague(t, store, "lg-4", testNow.Add(-100*time.Hour), nil, "alice", "bob", "carol")
	svc := standingsForStore(store)

	_, err := svc.Build(context.Background(), "lg-4", "mallory")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestStandingsService_Build_UnknownLeague(t *testing.T) {
	t.Parallel()

	svc := standingsForStore(memory.NewStore())
	_, err := svc.Build(context.Background(), "lg-missing", "alice")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
