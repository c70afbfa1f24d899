package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/ferguskeenan/prediction-league/internal/domain/fixture"
	"github.com/ferguskeenan/prediction-league/internal/domain/outcome"
	"github.com/ferguskeenan/prediction-league/internal/domain/pick"
	"github.com/ferguskeenan/prediction-league/internal/domain/result"
	"github.com/ferguskeenan/prediction-league/internal/domain/scoring"
	"github.com/ferguskeenan/prediction-league/internal/platform/resilience"
)

// ResultsFeed is the external provider of match outcomes. Final results are
// write-once facts; live scores are in-progress readings that change until
// the match ends.
type ResultsFeed interface {
	FetchFinal(ctx context.Context, round int) ([]result.Result, error)
	FetchLive(ctx context.Context, round int) ([]result.Result, error)
}

// CacheInvalidator is anything holding derived state that a fresh result set
// makes stale.
type CacheInvalidator interface {
	InvalidateScoring(ctx context.Context)
}

type ResultsSyncService struct {
	fixtureRepo  fixture.Repository
	resultRepo   result.Repository
	pickRepo     pick.Repository
	feed         ResultsFeed
	invalidators []CacheInvalidator
	maxWorkers   int
	now          func() time.Time

	syncFlight   resilience.SingleFlight
	syncMu       sync.Mutex
	lastSyncAt   time.Time
	syncInterval time.Duration
}

const defaultResultsSyncInterval = 30 * time.Second
const defaultResultsSyncWorkers = 4

// SyncReport summarizes one pass over the season's rounds.
type SyncReport struct {
	Rounds       int `json:"rounds"`
	SyncedRounds int `json:"synced_rounds"`
	NewResults   int `json:"new_results"`
	FailedRounds int `json:"failed_rounds"`
	WorkerCount  int `json:"worker_count"`
}

func NewResultsSyncService(
	fixtureRepo fixture.Repository,
	resultRepo result.Repository,
	pickRepo pick.Repository,
	feed ResultsFeed,
	invalidators ...CacheInvalidator,
) *ResultsSyncService {
	return &ResultsSyncService{
		fixtureRepo:  fixtureRepo,
		resultRepo:   resultRepo,
		pickRepo:     pickRepo,
		feed:         feed,
		invalidators: invalidators,
		maxWorkers:   defaultResultsSyncWorkers,
		now:          time.Now,
		syncInterval: defaultResultsSyncInterval,
	}
}

// SetSyncPolicy overrides the minimum gap between passes and the worker
// count. Non-positive values keep the defaults.
func (s *ResultsSyncService) SetSyncPolicy(interval time.Duration, workers int) {
	if interval > 0 {
		s.syncInterval = interval
	}
	if workers > 0 {
		s.maxWorkers = workers
	}
}

// SyncAll pulls final results for every round that still has undecided
// fixtures. Concurrent callers collapse onto one pass; a recent pass is
// skipped entirely.
func (s *ResultsSyncService) SyncAll(ctx context.Context) (SyncReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultsSyncService.SyncAll")
	defer span.End()

	if s.feed == nil {
		return SyncReport{}, fmt.Errorf("%w: results feed is not configured", ErrDependencyUnavailable)
	}

	now := s.now().UTC()
	if s.shouldSkipSync(now) {
		return SyncReport{}, nil
	}

	value, err, _ := s.syncFlight.Do("results:sync-all", func() (any, error) {
		runNow := s.now().UTC()
		if s.shouldSkipSync(runNow) {
			return SyncReport{}, nil
		}
		report, runErr := s.syncAllOnce(ctx)
		if runErr != nil {
			return SyncReport{}, runErr
		}
		s.markSync(runNow)
		return report, nil
	})
	if err != nil {
		return SyncReport{}, err
	}
	return value.(SyncReport), nil
}

func (s *ResultsSyncService) syncAllOnce(ctx context.Context) (SyncReport, error) {
	rounds, err := s.fixtureRepo.ListRounds(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("list rounds: %w", err)
	}
	sort.Ints(rounds)

	pending := make([]int, 0, len(rounds))
	for _, round := range rounds {
		undecided, err := s.hasUndecidedFixtures(ctx, round)
		if err != nil {
			return SyncReport{}, err
		}
		if undecided {
			pending = append(pending, round)
		}
	}

	report := SyncReport{Rounds: len(rounds), WorkerCount: s.maxWorkers}
	if len(pending) == 0 {
		return report, nil
	}

	var syncedRounds atomic.Int32
	var newResults atomic.Int32
	var failedRounds atomic.Int32

	workerPool, err := ants.NewPool(s.maxWorkers)
	if err != nil {
		return SyncReport{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var workers sync.WaitGroup
	for _, round := range pending {
		round := round
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			stored, syncErr := s.syncRound(ctx, round)
			if syncErr != nil {
				failedRounds.Add(1)
				return
			}
			syncedRounds.Add(1)
			newResults.Add(int32(stored))
		}); err != nil {
			workers.Done()
			return SyncReport{}, fmt.Errorf("submit round sync to worker pool: %w", err)
		}
	}
	workers.Wait()

	report.SyncedRounds = int(syncedRounds.Load())
	report.NewResults = int(newResults.Load())
	report.FailedRounds = int(failedRounds.Load())

	if report.NewResults > 0 {
		for _, invalidator := range s.invalidators {
			invalidator.InvalidateScoring(ctx)
		}
	}
	return report, nil
}

func (s *ResultsSyncService) syncRound(ctx context.Context, round int) (int, error) {
	fetched, err := s.feed.FetchFinal(ctx, round)
	if err != nil {
		return 0, fmt.Errorf("fetch final results round=%d: %w", round, err)
	}

	existing, err := s.resultRepo.ListByRound(ctx, round)
	if err != nil {
		return 0, fmt.Errorf("list results round=%d: %w", round, err)
	}
	known := make(map[int]struct{}, len(existing))
	for _, item := range existing {
		known[item.FixtureIndex] = struct{}{}
	}

	stored := 0
	for _, item := range fetched {
		// Results are write-once per fixture; the feed re-sending one is
		// absorbed, never rewritten.
		if _, ok := known[item.FixtureIndex]; ok {
			continue
		}
		if _, decided := item.Outcome(); !decided {
			continue
		}
		item.Round = round
		item.RecordedAt = s.now().UTC()
		if err := s.resultRepo.Upsert(ctx, item); err != nil {
			return stored, fmt.Errorf("upsert result round=%d index=%d: %w", round, item.FixtureIndex, err)
		}
		stored++
	}
	return stored, nil
}

// Ingest records one pushed final result. The write is idempotent by
// (round, fixture index); a repeat of a known result is absorbed silently.
func (s *ResultsSyncService) Ingest(ctx context.Context, item result.Result) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultsSyncService.Ingest")
	defer span.End()

	if item.Round <= 0 {
		return fmt.Errorf("%w: round must be greater than zero", ErrInvalidInput)
	}
	if _, decided := item.Outcome(); !decided {
		return fmt.Errorf("%w: result carries neither code nor goals", ErrInvalidInput)
	}

	fixtures, err := s.fixtureRepo.ListByRound(ctx, item.Round)
	if err != nil {
		return fmt.Errorf("list fixtures round=%d: %w", item.Round, err)
	}
	if _, ok := fixture.Indices(fixtures)[item.FixtureIndex]; !ok {
		return fmt.Errorf("%w: fixture index %d not in round %d", ErrInvalidInput, item.FixtureIndex, item.Round)
	}

	existing, err := s.resultRepo.ListByRound(ctx, item.Round)
	if err != nil {
		return fmt.Errorf("list results round=%d: %w", item.Round, err)
	}
	for _, known := range existing {
		if known.FixtureIndex == item.FixtureIndex {
			return nil
		}
	}

	item.RecordedAt = s.now().UTC()
	if err := s.resultRepo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("upsert result round=%d index=%d: %w", item.Round, item.FixtureIndex, err)
	}
	for _, invalidator := range s.invalidators {
		invalidator.InvalidateScoring(ctx)
	}
	return nil
}

// ProvisionalScores computes live scores for an in-play round from the feed's
// current readings. They are returned marked provisional and are never
// written anywhere.
func (s *ResultsSyncService) ProvisionalScores(ctx context.Context, round int) ([]scoring.RoundScore, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultsSyncService.ProvisionalScores")
	defer span.End()

	if round <= 0 {
		return nil, fmt.Errorf("%w: round must be greater than zero", ErrInvalidInput)
	}

	live, err := s.feed.FetchLive(ctx, round)
	if err != nil {
		return nil, fmt.Errorf("fetch live results round=%d: %w", round, err)
	}
	outcomes := result.OutcomesByIndex(live)
	if len(outcomes) == 0 {
		return []scoring.RoundScore{}, nil
	}

	picks, err := s.pickRepo.ListByRound(ctx, round)
	if err != nil {
		return nil, fmt.Errorf("list picks round=%d: %w", round, err)
	}
	byUser := make(map[string]map[int]outcome.Outcome)
	for _, p := range picks {
		if byUser[p.UserID] == nil {
			byUser[p.UserID] = make(map[int]outcome.Outcome)
		}
		byUser[p.UserID][p.FixtureIndex] = p.Outcome
	}

	scores := make([]scoring.RoundScore, 0, len(byUser))
	for userID, userPicks := range byUser {
		scores = append(scores, scoring.RoundScore{
			UserID:      userID,
			Round:       round,
			Correct:     scoring.CorrectCount(userPicks, outcomes),
			Provisional: true,
		})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Correct != scores[j].Correct {
			return scores[i].Correct > scores[j].Correct
		}
		return scores[i].UserID < scores[j].UserID
	})
	return scores, nil
}

func (s *ResultsSyncService) hasUndecidedFixtures(ctx context.Context, round int) (bool, error) {
	fixtures, err := s.fixtureRepo.ListByRound(ctx, round)
	if err != nil {
		return false, fmt.Errorf("list fixtures round=%d: %w", round, err)
	}
	results, err := s.resultRepo.ListByRound(ctx, round)
	if err != nil {
		return false, fmt.Errorf("list results round=%d: %w", round, err)
	}
	outcomes := result.OutcomesByIndex(results)
	for _, fx := range fixtures {
		if _, ok := outcomes[fx.Index]; !ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *ResultsSyncService) shouldSkipSync(now time.Time) bool {
	if s.syncInterval <= 0 {
		return false
	}
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	if s.lastSyncAt.IsZero() {
		return false
	}
	return now.Sub(s.lastSyncAt) < s.syncInterval
}

func (s *ResultsSyncService) markSync(now time.Time) {
	s.syncMu.Lock()
	s.lastSyncAt = now
	s.syncMu.Unlock()
}
