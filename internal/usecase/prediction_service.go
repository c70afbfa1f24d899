package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/fixture"
	"github.com/ferguskeenan/prediction-league/internal/domain/gameweek"
	"github.com/ferguskeenan/prediction-league/internal/domain/league"
	"github.com/ferguskeenan/prediction-league/internal/domain/outcome"
	"github.com/ferguskeenan/prediction-league/internal/domain/pick"
	"github.com/ferguskeenan/prediction-league/internal/domain/result"
	"github.com/ferguskeenan/prediction-league/internal/domain/submission"
)

// SubmissionNotifier is told when a user confirms a round, once per league the
// user belongs to, so downstream channels can announce it. The leagueID is
// empty when the user is in no league. Failures are logged by the
// implementation and never fail the submit.
type SubmissionNotifier interface {
	SubmissionConfirmed(ctx context.Context, userID string, round int, leagueID string, allMembersIn bool)
}

type PredictionService struct {
	fixtureRepo    fixture.Repository
	pickRepo       pick.Repository
	resultRepo     result.Repository
	submissionRepo submission.Repository
	leagueRepo     league.Repository
	notifier       SubmissionNotifier
	now            func() time.Time
	deadlineBuffer time.Duration
}

// RoundStatus is the per-user view of a round: its lifecycle state, deadline
// and whether the submission currently stands.
type RoundStatus struct {
	Round      int
	State      gameweek.State
	Deadline   *time.Time
	Submitted  bool
	PickCount  int
	FixtureIDs []int
}

func NewPredictionService(
	fixtureRepo fixture.Repository,
	pickRepo pick.Repository,
	resultRepo result.Repository,
	submissionRepo submission.Repository,
	leagueRepo league.Repository,
	notifier SubmissionNotifier,
) *PredictionService {
	return &PredictionService{
		fixtureRepo:    fixtureRepo,
		pickRepo:       pickRepo,
		resultRepo:     resultRepo,
		submissionRepo: submissionRepo,
		leagueRepo:     leagueRepo,
		notifier:       notifier,
		now:            time.Now,
		deadlineBuffer: gameweek.DefaultDeadlineBuffer,
	}
}

// SavePick stores one pick. The round must still accept changes; any pick
// write also revokes an existing submission so a changed set must be
// confirmed again.
func (s *PredictionService) SavePick(ctx context.Context, userID string, round, fixtureIndex int, rawOutcome string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.SavePick")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if round <= 0 {
		return fmt.Errorf("%w: round must be greater than zero", ErrInvalidInput)
	}
	picked, ok := outcome.Parse(rawOutcome)
	if !ok {
		return fmt.Errorf("%w: unknown outcome %q", ErrInvalidInput, rawOutcome)
	}

	fixtures, err := s.fixtureRepo.ListByRound(ctx, round)
	if err != nil {
		return fmt.Errorf("list fixtures by round: %w", err)
	}
	if len(fixtures) == 0 {
		return fmt.Errorf("%w: round=%d", ErrNotFound, round)
	}
	if _, exists := fixture.Indices(fixtures)[fixtureIndex]; !exists {
		return fmt.Errorf("%w: fixture index %d not in round %d", ErrInvalidInput, fixtureIndex, round)
	}

	state, err := s.resolveState(ctx, userID, round, fixtures)
	if err != nil {
		return err
	}
	if state.Locked() || state == gameweek.StateUndefined {
		return fmt.Errorf("%w: round %d is not open for picks", ErrRoundLocked, round)
	}

	if err := s.pickRepo.Upsert(ctx, pick.Pick{
		UserID:       userID,
		Round:        round,
		FixtureIndex: fixtureIndex,
		Outcome:      picked,
		UpdatedAt:    s.now().UTC(),
	}); err != nil {
		return fmt.Errorf("upsert pick: %w", err)
	}

	// A changed pick set invalidates the confirmation for the round.
	if err := s.submissionRepo.Delete(ctx, userID, round); err != nil {
		return fmt.Errorf("revoke submission after pick change: %w", err)
	}
	return nil
}

// Submit confirms the user's pick set for the round. It requires one pick per
// fixture index, no extras, and a round that still accepts changes.
func (s *PredictionService) Submit(ctx context.Context, userID string, round int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Submit")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	fixtures, err := s.fixtureRepo.ListByRound(ctx, round)
	if err != nil {
		return fmt.Errorf("list fixtures by round: %w", err)
	}
	if len(fixtures) == 0 {
		return fmt.Errorf("%w: round=%d", ErrNotFound, round)
	}

	picks, err := s.pickRepo.ListByUserAndRound(ctx, userID, round)
	if err != nil {
		return fmt.Errorf("list picks by user and round: %w", err)
	}
	if !picksCoverRound(picks, fixtures) {
		return fmt.Errorf("%w: picks must cover every fixture of round %d exactly", ErrIncompletePicks, round)
	}

	state, err := s.resolveState(ctx, userID, round, fixtures)
	if err != nil {
		return err
	}
	if state != gameweek.StateOpen && state != gameweek.StatePredicted {
		return fmt.Errorf("%w: round %d is not open for submission", ErrRoundLocked, round)
	}

	if err := s.submissionRepo.Upsert(ctx, submission.Submission{
		UserID:      userID,
		Round:       round,
		SubmittedAt: s.now().UTC(),
	}); err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifyLeagues(ctx, userID, round, fixtures); err != nil {
			return err
		}
	}
	return nil
}

// SubmissionStatus reports the round from the user's perspective. A stale
// submission, one whose pick set no longer covers the round, is revoked here
// rather than reported as valid.
func (s *PredictionService) SubmissionStatus(ctx context.Context, userID string, round int) (RoundStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.SubmissionStatus")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return RoundStatus{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	fixtures, err := s.fixtureRepo.ListByRound(ctx, round)
	if err != nil {
		return RoundStatus{}, fmt.Errorf("list fixtures by round: %w", err)
	}
	if len(fixtures) == 0 {
		return RoundStatus{}, fmt.Errorf("%w: round=%d", ErrNotFound, round)
	}

	picks, err := s.pickRepo.ListByUserAndRound(ctx, userID, round)
	if err != nil {
		return RoundStatus{}, fmt.Errorf("list picks by user and round: %w", err)
	}
	covered := picksCoverRound(picks, fixtures)

	_, submitted, err := s.submissionRepo.Get(ctx, userID, round)
	if err != nil {
		return RoundStatus{}, fmt.Errorf("get submission: %w", err)
	}
	if submitted && !covered {
		if err := s.submissionRepo.Delete(ctx, userID, round); err != nil {
			return RoundStatus{}, fmt.Errorf("revoke stale submission: %w", err)
		}
		submitted = false
	}

	// A complete pick set is enough for PREDICTED; confirmation is tracked
	// separately in Submitted.
	state, err := s.resolveStateWithPicks(ctx, round, fixtures, covered)
	if err != nil {
		return RoundStatus{}, err
	}

	status := RoundStatus{
		Round:     round,
		State:     state,
		Submitted: submitted,
		PickCount: len(picks),
	}
	for _, fx := range fixtures {
		status.FixtureIDs = append(status.FixtureIDs, fx.Index)
	}
	if deadline, ok := gameweek.Deadline(fixture.Kickoffs(fixtures), s.deadlineBuffer); ok {
		status.Deadline = &deadline
	}
	return status, nil
}

// LeagueRoundSubmissions reports how far a league's membership has come in
// confirming a round. Only valid submissions count.
type LeagueRoundSubmissions struct {
	LeagueID     string
	Round        int
	Members      int
	Submitted    int
	AllMembersIn bool
}

// LeagueSubmissions evaluates the all-members-in condition for one league and
// round. Callers must belong to the league.
func (s *PredictionService) LeagueSubmissions(ctx context.Context, leagueID, viewerID string, round int) (LeagueRoundSubmissions, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.LeagueSubmissions")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return LeagueRoundSubmissions{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	_, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return LeagueRoundSubmissions{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return LeagueRoundSubmissions{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	member, err := s.leagueRepo.IsMember(ctx, leagueID, viewerID)
	if err != nil {
		return LeagueRoundSubmissions{}, fmt.Errorf("check membership: %w", err)
	}
	if !member {
		return LeagueRoundSubmissions{}, fmt.Errorf("%w: not a member of league %s", ErrUnauthorized, leagueID)
	}

	fixtures, err := s.fixtureRepo.ListByRound(ctx, round)
	if err != nil {
		return LeagueRoundSubmissions{}, fmt.Errorf("list fixtures by round: %w", err)
	}
	if len(fixtures) == 0 {
		return LeagueRoundSubmissions{}, fmt.Errorf("%w: round=%d", ErrNotFound, round)
	}

	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return LeagueRoundSubmissions{}, fmt.Errorf("list members: %w", err)
	}

	submitters, err := s.roundSubmitters(ctx, round)
	if err != nil {
		return LeagueRoundSubmissions{}, err
	}

	report := LeagueRoundSubmissions{LeagueID: leagueID, Round: round, Members: len(members)}
	for _, m := range members {
		valid, err := s.hasValidSubmission(ctx, m.UserID, round, fixtures, submitters)
		if err != nil {
			return LeagueRoundSubmissions{}, err
		}
		if valid {
			report.Submitted++
		}
	}
	report.AllMembersIn = report.Members > 0 && report.Submitted == report.Members
	return report, nil
}

// ListPicks returns the user's picks for the round.
func (s *PredictionService) ListPicks(ctx context.Context, userID string, round int) ([]pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListPicks")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	items, err := s.pickRepo.ListByUserAndRound(ctx, userID, round)
	if err != nil {
		return nil, fmt.Errorf("list picks by user and round: %w", err)
	}
	return items, nil
}

func (s *PredictionService) resolveState(ctx context.Context, userID string, round int, fixtures []fixture.Fixture) (gameweek.State, error) {
	picks, err := s.pickRepo.ListByUserAndRound(ctx, userID, round)
	if err != nil {
		return gameweek.StateUndefined, fmt.Errorf("list picks for state: %w", err)
	}
	return s.resolveStateWithPicks(ctx, round, fixtures, picksCoverRound(picks, fixtures))
}

func (s *PredictionService) resolveStateWithPicks(ctx context.Context, round int, fixtures []fixture.Fixture, picksComplete bool) (gameweek.State, error) {
	results, err := s.resultRepo.ListByRound(ctx, round)
	if err != nil {
		return gameweek.StateUndefined, fmt.Errorf("list results for state: %w", err)
	}
	outcomes := result.OutcomesByIndex(results)
	fullyDecided := len(fixtures) > 0
	for _, fx := range fixtures {
		if _, ok := outcomes[fx.Index]; !ok {
			fullyDecided = false
			break
		}
	}
	return gameweek.Resolve(fixture.Kickoffs(fixtures), s.now().UTC(), s.deadlineBuffer, fullyDecided, picksComplete), nil
}

// notifyLeagues emits one confirmation per league the submitter belongs to,
// each carrying whether that league's full membership is now in. A user in no
// league still gets a plain confirmation with no league attached.
func (s *PredictionService) notifyLeagues(ctx context.Context, userID string, round int, fixtures []fixture.Fixture) error {
	leagues, err := s.leagueRepo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list leagues by user: %w", err)
	}
	if len(leagues) == 0 {
		s.notifier.SubmissionConfirmed(ctx, userID, round, "", false)
		return nil
	}

	submitters, err := s.roundSubmitters(ctx, round)
	if err != nil {
		return err
	}
	for _, item := range leagues {
		allIn, err := s.leagueAllSubmitted(ctx, item.ID, round, fixtures, submitters)
		if err != nil {
			return err
		}
		s.notifier.SubmissionConfirmed(ctx, userID, round, item.ID, allIn)
	}
	return nil
}

func (s *PredictionService) leagueAllSubmitted(ctx context.Context, leagueID string, round int, fixtures []fixture.Fixture, submitters map[string]struct{}) (bool, error) {
	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return false, fmt.Errorf("list members of league %s: %w", leagueID, err)
	}
	if len(members) == 0 {
		return false, nil
	}
	for _, member := range members {
		valid, err := s.hasValidSubmission(ctx, member.UserID, round, fixtures, submitters)
		if err != nil {
			return false, err
		}
		if !valid {
			return false, nil
		}
	}
	return true, nil
}

func (s *PredictionService) roundSubmitters(ctx context.Context, round int) (map[string]struct{}, error) {
	submissions, err := s.submissionRepo.ListByRound(ctx, round)
	if err != nil {
		return nil, fmt.Errorf("list submissions by round: %w", err)
	}
	submitters := make(map[string]struct{}, len(submissions))
	for _, sub := range submissions {
		submitters[sub.UserID] = struct{}{}
	}
	return submitters, nil
}

// hasValidSubmission requires both the confirmation and a pick set that still
// covers the round; a stale submission does not count toward the league.
func (s *PredictionService) hasValidSubmission(ctx context.Context, userID string, round int, fixtures []fixture.Fixture, submitters map[string]struct{}) (bool, error) {
	if _, ok := submitters[userID]; !ok {
		return false, nil
	}
	picks, err := s.pickRepo.ListByUserAndRound(ctx, userID, round)
	if err != nil {
		return false, fmt.Errorf("list picks for %s: %w", userID, err)
	}
	return picksCoverRound(picks, fixtures), nil
}

// picksCoverRound requires a bijection between picks and fixture indices:
// nothing missing, nothing extra, no index outside the round.
func picksCoverRound(picks []pick.Pick, fixtures []fixture.Fixture) bool {
	indices := fixture.Indices(fixtures)
	if len(picks) != len(indices) {
		return false
	}
	seen := make(map[int]struct{}, len(picks))
	for _, p := range picks {
		if _, ok := indices[p.FixtureIndex]; !ok {
			return false
		}
		if _, dup := seen[p.FixtureIndex]; dup {
			return false
		}
		seen[p.FixtureIndex] = struct{}{}
	}
	return true
}
