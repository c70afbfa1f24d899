package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/fixture"
	"github.com/ferguskeenan/prediction-league/internal/domain/gameweek"
	"github.com/ferguskeenan/prediction-league/internal/domain/outcome"
	"github.com/ferguskeenan/prediction-league/internal/infrastructure/repository/memory"
)

type notifierCall struct {
	userID   string
	round    int
	leagueID string
	allIn    bool
}

type notifierStub struct {
	calls []notifierCall
}

var _ SubmissionNotifier = (*notifierStub)(nil)

func (n *notifierStub) SubmissionConfirmed(_ context.Context, userID string, round int, leagueID string, allIn bool) {
	n.calls = append(n.calls, notifierCall{userID: userID, round: round, leagueID: leagueID, allIn: allIn})
}

func TestPredictionService_SavePick_RejectsUnknownOutcome(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedFixtures(t, store, 1, 2, testNow.Add(24*time.Hour))
	svc := predictionForStore(store, nil)

	err := svc.SavePick(context.Background(), "alice", 1, 0, "Z")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPredictionService_SavePick_RejectsIndexOutsideRound(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedFixtures(t, store, 1, 2, testNow.Add(24*time.Hour))
	svc := predictionForStore(store, nil)

	err := svc.SavePick(context.Background(), "alice", 1, 5, "H")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPredictionService_SavePick_RejectsLockedRound(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	// Kickoff one hour out is already inside the deadline buffer.
	seedFixtures(t, store, 1, 2, testNow.Add(time.Hour))
	svc := predictionForStore(store, nil)

	err := svc.SavePick(context.Background(), "alice", 1, 0, "H")
	if !errors.Is(err, ErrRoundLocked) {
		t.Fatalf("expected ErrRoundLocked, got %v", err)
	}
}

func TestPredictionService_SavePick_RevokesSubmission(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	seedFixtures(t, store, 1, 2, testNow.Add(24*time.Hour))
	seedPicks(t, store, "alice", 1, outcome.Home, outcome.Away)
	svc := predictionForStore(store, nil)

	if err := svc.Submit(ctx, "alice", 1); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := svc.SavePick(ctx, "alice", 1, 0, "D"); err != nil {
		t.Fatalf("save pick after submit: %v", err)
	}

	status, err := svc.SubmissionStatus(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("submission status: %v", err)
	}
	if status.Submitted {
		t.Fatalf("expected submission revoked after pick change")
	}
	// The pick set still covers the round, so the round stays PREDICTED even
	// though the confirmation is gone.
	if status.State != gameweek.StatePredicted {
		t.Fatalf("expected state PREDICTED after revoke, got %s", status.State)
	}
}

func TestPredictionService_SubmissionStatus_PredictedBeforeSubmission(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedFixtures(t, store, 1, 2, testNow.Add(24*time.Hour))
	seedPicks(t, store, "alice", 1, outcome.Home, outcome.Away)
	svc := predictionForStore(store, nil)

	status, err := svc.SubmissionStatus(context.Background(), "alice", 1)
	if err != nil {
		t.Fatalf("submission status: %v", err)
	}
	if status.State != gameweek.StatePredicted {
		t.Fatalf("complete picks must resolve PREDICTED, got %s", status.State)
	}
	if status.Submitted {
		t.Fatalf("unconfirmed round must not report submitted")
	}
}

func TestPredictionService_Submit_RequiresFullCoverage(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	seedFixtures(t, store, 1, 3, testNow.Add(24*time.Hour))
	seedPicks(t, store, "alice", 1, outcome.Home, outcome.Draw)
	svc := predictionForStore(store, nil)

	err := svc.Submit(context.Background(), "alice", 1)
	if !errors.Is(err, ErrIncompletePicks) {
		t.Fatalf("expected ErrIncompletePicks, got %v", err)
	}
}

func TestPredictionService_Submit_UnknownRound(t *testing.T) {
	t.Parallel()

	svc := predictionForStore(memory.NewStore(), nil)
	err := svc.Submit(context.Background(), "alice", 9)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPredictionService_Submit_NotifiesPerLeagueMembership(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	seedFixtures(t, store, 1, 2, testNow.Add(24*time.Hour))
	seedPicks(t, store, "alice", 1, outcome.Home, outcome.Away)
	seedPicks(t, store, "bob", 1, outcome.Draw, outcome.Draw)
	seedPicks(t, store, "carol", 1, outcome.Away, outcome.Home)

	// Alice sits in both leagues; bob and carol each in one. A league is all
	// in only when its own members have submitted, never the round at large.
	seedLeague(t, store, "lg-a", testNow.Add(-2*time.Hour), nil, "alice", "bob")
	seedLeague(t, store, "lg-b", testNow.Add(-time.Hour), nil, "alice", "carol")

	notifier := &notifierStub{}
	svc := predictionForStore(store, notifier)

	if err := svc.Submit(ctx, "alice", 1); err != nil {
		t.Fatalf("submit alice: %v", err)
	}
	if err := svc.Submit(ctx, "bob", 1); err != nil {
		t.Fatalf("submit bob: %v", err)
	}
	if err := svc.Submit(ctx, "carol", 1); err != nil {
		t.Fatalf("submit carol: %v", err)
	}

	want := []notifierCall{
		{userID: "alice", round: 1, leagueID: "lg-a", allIn: false},
		{userID: "alice", round: 1, leagueID: "lg-b", allIn: false},
		{userID: "bob", round: 1, leagueID: "lg-a", allIn: true},
		{userID: "carol", round: 1, leagueID: "lg-b", allIn: true},
	}
	if len(notifier.calls) != len(want) {
		t.Fatalf("expected %d notifications, got %d: %+v", len(want), len(notifier.calls), notifier.calls)
	}
	for i, call := range notifier.calls {
		if call != want[i] {
			t.Fatalf("notification %d: got %+v want %+v", i, call, want[i])
		}
	}
}

func TestPredictionService_Submit_NotifiesWithoutLeague(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	seedFixtures(t, store, 1, 2, testNow.Add(24*time.Hour))
	seedPicks(t, store, "dave", 1, outcome.Home, outcome.Home)

	notifier := &notifierStub{}
	svc := predictionForStore(store, notifier)

	if err := svc.Submit(ctx, "dave", 1); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.calls))
	}
	if got := notifier.calls[0]; got.leagueID != "" || got.allIn {
		t.Fatalf("league-free submit must carry no league and no all-in flag: %+v", got)
	}
}

func TestPredictionService_LeagueSubmissions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	seedFixtures(t, store, 1, 2, testNow.Add(24*time.Hour))
	seedPicks(t, store, "alice", 1, outcome.Home, outcome.Away)
	seedPicks(t, store, "bob", 1, outcome.Draw, outcome.Draw)
	seedLeague(t, store, "lg-a", testNow.Add(-2*time.Hour), nil, "alice", "bob")
	svc := predictionForStore(store, nil)

	if err := svc.Submit(ctx, "alice", 1); err != nil {
		t.Fatalf("submit alice: %v", err)
	}

	report, err := svc.LeagueSubmissions(ctx, "lg-a", "alice", 1)
	if err != nil {
		t.Fatalf("league submissions: %v", err)
	}
	if report.Members != 2 || report.Submitted != 1 || report.AllMembersIn {
		t.Fatalf("unexpected report after one submit: %+v", report)
	}

	if err := svc.Submit(ctx, "bob", 1); err != nil {
		t.Fatalf("submit bob: %v", err)
	}
	report, err = svc.LeagueSubmissions(ctx, "lg-a", "bob", 1)
	if err != nil {
		t.Fatalf("league submissions: %v", err)
	}
	if report.Submitted != 2 || !report.AllMembersIn {
		t.Fatalf("unexpected report after both submits: %+v", report)
	}

	// A grown round makes every confirmation stale; none count any more.
	err = store.Fixtures().UpsertFixtures(ctx, []fixture.Fixture{{
		Round:     1,
		Index:     2,
		HomeTeam:  "Home 1-2",
		AwayTeam:  "Away 1-2",
		KickoffAt: testNow.Add(26 * time.Hour),
	}})
	if err != nil {
		t.Fatalf("grow round: %v", err)
	}
	report, err = svc.LeagueSubmissions(ctx, "lg-a", "alice", 1)
	if err != nil {
		t.Fatalf("league submissions: %v", err)
	}
	if report.Submitted != 0 || report.AllMembersIn {
		t.Fatalf("stale submissions must not count: %+v", report)
	}
}

func TestPredictionService_LeagueSubmissions_Access(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	seedFixtures(t, store, 1, 2, testNow.Add(24*time.Hour))
	seedLeague(t, store, "lg-a", testNow.Add(-time.Hour), nil, "alice")
	svc := predictionForStore(store, nil)

	if _, err := svc.LeagueSubmissions(ctx, "lg-a", "mallory", 1); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.LeagueSubmissions(ctx, "lg-missing", "alice", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPredictionService_SubmissionStatus_RevokesStaleSubmission(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	seedFixtures(t, store, 1, 2, testNow.Add(24*time.Hour))
	seedPicks(t, store, "alice", 1, outcome.Home, outcome.Away)
	svc := predictionForStore(store, nil)

	if err := svc.Submit(ctx, "alice", 1); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// An admin re-import grows the round; the confirmed set no longer covers it.
	err := store.Fixtures().UpsertFixtures(ctx, []fixture.Fixture{{
		Round:     1,
		Index:     2,
		HomeTeam:  "Home 1-2",
		AwayTeam:  "Away 1-2",
		KickoffAt: testNow.Add(26 * time.Hour),
	}})
	if err != nil {
		t.Fatalf("grow round: %v", err)
	}

	status, err := svc.SubmissionStatus(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("submission status: %v", err)
	}
	if status.Submitted {
		t.Fatalf("expected stale submission revoked")
	}
	if _, exists, _ := store.Submissions().Get(ctx, "alice", 1); exists {
		t.Fatalf("expected stored submission deleted")
	}
}

func TestPredictionService_SubmissionStatus_ReportsDeadlineAndFixtures(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	kickoff := testNow.Add(24 * time.Hour)
	seedFixtures(t, store, 1, 3, kickoff)
	svc := predictionForStore(store, nil)

	status, err := svc.SubmissionStatus(context.Background(), "alice", 1)
	if err != nil {
		t.Fatalf("submission status: %v", err)
	}
	if status.State != gameweek.StateOpen {
		t.Fatalf("expected state OPEN, got %s", status.State)
	}
	if status.Deadline == nil {
		t.Fatalf("expected a deadline")
	}
	if want := kickoff.Add(-gameweek.DefaultDeadlineBuffer); !status.Deadline.Equal(want) {
		t.Fatalf("unexpected deadline: got %s want %s", status.Deadline, want)
	}
	if len(status.FixtureIDs) != 3 {
		t.Fatalf("unexpected fixture index count: %d", len(status.FixtureIDs))
	}
}
