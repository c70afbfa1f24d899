package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/ferguskeenan/prediction-league/internal/domain/gameweek"
	"github.com/ferguskeenan/prediction-league/internal/domain/scoring"
	"github.com/ferguskeenan/prediction-league/internal/domain/user"
	"github.com/ferguskeenan/prediction-league/internal/platform/cache"
)

// FormWindows are the only trailing-window sizes the leaderboard accepts.
var FormWindows = []int{5, 10}

type RankingService struct {
	userRepo       user.Repository
	source         scoring.Source
	store          *cache.Store
	now            func() time.Time
	deadlineBuffer time.Duration
}

// Percentile is an inclusive percentile figure. Available is false when the
// user has no scored data yet; a zero value must never stand in for that.
type Percentile struct {
	Available bool
	Value     float64
}

// RankDelta compares a user's overall rank now against the table as of the
// previous decided round. NewEntrant marks a user absent from the earlier
// table, which is not the same as a rank change.
type RankDelta struct {
	CurrentRank  int
	PreviousRank int
	Delta        int
	NewEntrant   bool
}

// FormRow is one entry of a trailing-window form leaderboard.
type FormRow struct {
	Rank   int
	UserID string
	Name   string
	Points int
}

// FormLeaderboard covers the trailing window ending at the latest decided
// round. Only users scored in every window round appear.
type FormLeaderboard struct {
	Window int
	Rounds []int
	Rows   []FormRow
}

func NewRankingService(userRepo user.Repository, source scoring.Source, store *cache.Store) *RankingService {
	return &RankingService{
		userRepo:       userRepo,
		source:         source,
		store:          store,
		now:            time.Now,
		deadlineBuffer: gameweek.DefaultDeadlineBuffer,
	}
}

// OverallPercentile ranks the user's cumulative correct picks against every
// participant.
func (s *RankingService) OverallPercentile(ctx context.Context, userID string) (Percentile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.OverallPercentile")
	defer span.End()

	idx, err := s.seasonIndex(ctx)
	if err != nil {
		return Percentile{}, err
	}
	rounds := idx.DecidedRounds()
	if len(rounds) == 0 {
		return Percentile{}, nil
	}
	return inclusivePercentile(cumulativeCorrect(idx, rounds[len(rounds)-1]), userID), nil
}

// LastRoundPercentile ranks the user's latest decided round among that
// round's participants.
func (s *RankingService) LastRoundPercentile(ctx context.Context, userID string) (Percentile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.LastRoundPercentile")
	defer span.End()

	idx, err := s.seasonIndex(ctx)
	if err != nil {
		return Percentile{}, err
	}
	rounds := idx.DecidedRounds()
	if len(rounds) == 0 {
		return Percentile{}, nil
	}
	return inclusivePercentile(roundCorrect(idx, rounds[len(rounds)-1]), userID), nil
}

// OverallRankDelta diffs the user's rank between the current table and the
// table as of the previous decided round.
func (s *RankingService) OverallRankDelta(ctx context.Context, userID string) (RankDelta, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.OverallRankDelta")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return RankDelta{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	idx, err := s.seasonIndex(ctx)
	if err != nil {
		return RankDelta{}, err
	}
	rounds := idx.DecidedRounds()
	if len(rounds) == 0 {
		return RankDelta{}, fmt.Errorf("%w: no decided rounds yet", ErrNotFound)
	}

	names, err := s.namesForParticipants(ctx, idx)
	if err != nil {
		return RankDelta{}, err
	}

	current := rankByValue(cumulativeCorrect(idx, rounds[len(rounds)-1]), names)
	currentRank, ok := current[userID]
	if !ok {
		return RankDelta{}, fmt.Errorf("%w: user %s has no scored rounds", ErrNotFound, userID)
	}

	if len(rounds) == 1 {
		return RankDelta{CurrentRank: currentRank, NewEntrant: true}, nil
	}
	previous := rankByValue(cumulativeCorrect(idx, rounds[len(rounds)-2]), names)
	previousRank, ok := previous[userID]
	if !ok {
		return RankDelta{CurrentRank: currentRank, NewEntrant: true}, nil
	}
	return RankDelta{
		CurrentRank:  currentRank,
		PreviousRank: previousRank,
		Delta:        previousRank - currentRank,
	}, nil
}

// Form builds the trailing-window leaderboard. A user scored in only part of
// the window is excluded outright, not ranked on a partial sum.
func (s *RankingService) Form(ctx context.Context, window int) (FormLeaderboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.Form")
	defer span.End()

	if !validFormWindow(window) {
		return FormLeaderboard{}, fmt.Errorf("%w: window must be one of %v", ErrInvalidInput, FormWindows)
	}

	idx, err := s.seasonIndex(ctx)
	if err != nil {
		return FormLeaderboard{}, err
	}
	rounds := idx.DecidedRounds()
	if len(rounds) < window {
		return FormLeaderboard{Window: window}, nil
	}
	windowRounds := rounds[len(rounds)-window:]

	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, round := range windowRounds {
		for userID, points := range roundCorrect(idx, round) {
			sums[userID] += points
			counts[userID]++
		}
	}

	qualified := make([]string, 0, len(sums))
	for userID, count := range counts {
		if count == window {
			qualified = append(qualified, userID)
		}
	}

	names, err := s.displayNames(ctx, qualified)
	if err != nil {
		return FormLeaderboard{}, err
	}

	rows := make([]FormRow, 0, len(qualified))
	for _, userID := range qualified {
		rows = append(rows, FormRow{UserID: userID, Name: names[userID], Points: sums[userID]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].Name < rows[j].Name
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return FormLeaderboard{Window: window, Rounds: windowRounds, Rows: rows}, nil
}

// PercentileHistory is the user's chronological per-round percentile
// sequence over decided rounds they were scored in. Rounds are independent,
// so they are computed in parallel and reordered after.
func (s *RankingService) PercentileHistory(ctx context.Context, userID string) ([]scoring.RoundPercentile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.PercentileHistory")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	idx, err := s.seasonIndex(ctx)
	if err != nil {
		return nil, err
	}

	workers := pool.NewWithResults[*scoring.RoundPercentile]().WithMaxGoroutines(8)
	for _, round := range idx.DecidedRounds() {
		round := round
		workers.Go(func() *scoring.RoundPercentile {
			p := inclusivePercentile(roundCorrect(idx, round), userID)
			if !p.Available {
				return nil
			}
			return &scoring.RoundPercentile{Round: round, Percentile: p.Value}
		})
	}

	sequence := make([]scoring.RoundPercentile, 0)
	for _, entry := range workers.Wait() {
		if entry != nil {
			sequence = append(sequence, *entry)
		}
	}
	sort.Slice(sequence, func(i, j int) bool { return sequence[i].Round < sequence[j].Round })
	return sequence, nil
}

// LongestTopQuartileStreak is the user's best run of consecutive rounds at or
// above the 75th percentile.
func (s *RankingService) LongestTopQuartileStreak(ctx context.Context, userID string) (scoring.StreakSpan, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.LongestTopQuartileStreak")
	defer span.End()

	sequence, err := s.PercentileHistory(ctx, userID)
	if err != nil {
		return scoring.StreakSpan{}, err
	}
	return scoring.LongestStreak(sequence, scoring.TopQuartileThreshold), nil
}

func (s *RankingService) seasonIndex(ctx context.Context) (*scoring.SeasonIndex, error) {
	value, err := s.store.GetOrLoad(ctx, "ranking:season-index", func(ctx context.Context) (any, error) {
		snap, err := s.source.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load scoring snapshot: %w", err)
		}
		return scoring.BuildSeasonIndex(snap, s.deadlineBuffer), nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*scoring.SeasonIndex), nil
}

// InvalidateScoring drops the cached season index, used after results sync.
func (s *RankingService) InvalidateScoring(ctx context.Context) {
	s.store.Delete(ctx, "ranking:season-index")
}

func (s *RankingService) namesForParticipants(ctx context.Context, idx *scoring.SeasonIndex) (map[string]string, error) {
	return s.displayNames(ctx, idx.Participants())
}

func (s *RankingService) displayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	profiles, err := s.userRepo.ListProfiles(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	names := make(map[string]string, len(userIDs))
	for _, p := range profiles {
		names[p.UserID] = p.DisplayName
	}
	for _, userID := range userIDs {
		if names[userID] == "" {
			names[userID] = userID
		}
	}
	return names, nil
}

func validFormWindow(window int) bool {
	for _, allowed := range FormWindows {
		if window == allowed {
			return true
		}
	}
	return false
}

// inclusivePercentile is self-counting: the share of users whose value is at
// or below the user's own, never the exclusive rank-over-total variant. The
// two diverge under ties and must not be mixed.
func inclusivePercentile(values map[string]int, userID string) Percentile {
	mine, ok := values[userID]
	if !ok || len(values) == 0 {
		return Percentile{}
	}
	atOrBelow := 0
	for _, value := range values {
		if value <= mine {
			atOrBelow++
		}
	}
	raw := 100 * float64(atOrBelow) / float64(len(values))
	return Percentile{Available: true, Value: math.Round(raw*100) / 100}
}

// cumulativeCorrect sums each participant's correct picks over decided rounds
// up to and including the given round. Users appear once they have a pick in
// any counted round.
func cumulativeCorrect(idx *scoring.SeasonIndex, throughRound int) map[string]int {
	totals := make(map[string]int)
	for _, round := range idx.DecidedRounds() {
		if round > throughRound {
			break
		}
		for userID, points := range roundCorrect(idx, round) {
			totals[userID] += points
		}
	}
	return totals
}

// roundCorrect scores one decided round for every user with picks in it.
func roundCorrect(idx *scoring.SeasonIndex, round int) map[string]int {
	outcomes := idx.Outcomes(round)
	out := make(map[string]int)
	for userID, picks := range idx.PicksByUser(round) {
		out[userID] = scoring.CorrectCount(picks, outcomes)
	}
	return out
}

// rankByValue assigns positional ranks by value descending with name as the
// deterministic tie-break.
func rankByValue(values map[string]int, names map[string]string) map[string]int {
	userIDs := make([]string, 0, len(values))
	for userID := range values {
		userIDs = append(userIDs, userID)
	}
	sort.SliceStable(userIDs, func(i, j int) bool {
		if values[userIDs[i]] != values[userIDs[j]] {
			return values[userIDs[i]] > values[userIDs[j]]
		}
		return names[userIDs[i]] < names[userIDs[j]]
	})

	ranks := make(map[string]int, len(userIDs))
	for i, userID := range userIDs {
		ranks[userID] = i + 1
	}
	return ranks
}
