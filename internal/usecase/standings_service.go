package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/gameweek"
	"github.com/ferguskeenan/prediction-league/internal/domain/league"
	"github.com/ferguskeenan/prediction-league/internal/domain/scoring"
	"github.com/ferguskeenan/prediction-league/internal/domain/user"
	"github.com/ferguskeenan/prediction-league/internal/platform/cache"
)

const roundWinPoints = 3
const roundSharedPoints = 1

type StandingsService struct {
	leagueRepo     league.Repository
	userRepo       user.Repository
	source         scoring.Source
	store          *cache.Store
	now            func() time.Time
	deadlineBuffer time.Duration
}

// StandingsRow is one member's aggregate over the league's relevant rounds.
type StandingsRow struct {
	Rank         int
	UserID       string
	Name         string
	Points       int
	Unicorns     int
	CorrectPicks int
}

// LeagueStandings is the computed table plus the rounds it covers.
type LeagueStandings struct {
	LeagueID   string
	StartRound int
	Rounds     []int
	Rows       []StandingsRow
	ComputedAt time.Time
}

func NewStandingsService(
	leagueRepo league.Repository,
	userRepo user.Repository,
	source scoring.Source,
	store *cache.Store,
) *StandingsService {
	return &StandingsService{
		leagueRepo:     leagueRepo,
		userRepo:       userRepo,
		source:         source,
		store:          store,
		now:            time.Now,
		deadlineBuffer: gameweek.DefaultDeadlineBuffer,
	}
}

// Build computes the league table. Callers must be members; the table is
// derived fresh from one snapshot and briefly cached, never persisted.
func (s *StandingsService) Build(ctx context.Context, leagueID, viewerID string) (LeagueStandings, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Build")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return LeagueStandings{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return LeagueStandings{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return LeagueStandings{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	if viewerID != "" {
		member, err := s.leagueRepo.IsMember(ctx, leagueID, viewerID)
		if err != nil {
			return LeagueStandings{}, fmt.Errorf("check membership: %w", err)
		}
		if !member {
			return LeagueStandings{}, fmt.Errorf("%w: not a member of league %s", ErrUnauthorized, leagueID)
		}
	}

	value, err := s.store.GetOrLoad(ctx, "standings:"+leagueID, func(ctx context.Context) (any, error) {
		return s.build(ctx, item)
	})
	if err != nil {
		return LeagueStandings{}, err
	}
	return value.(LeagueStandings), nil
}

// InvalidateScoring drops every cached table, used after results sync.
func (s *StandingsService) InvalidateScoring(ctx context.Context) {
	s.store.DeletePrefix(ctx, "standings:")
}

func (s *StandingsService) build(ctx context.Context, item league.League) (LeagueStandings, error) {
	members, err := s.leagueRepo.ListMembers(ctx, item.ID)
	if err != nil {
		return LeagueStandings{}, fmt.Errorf("list members: %w", err)
	}
	memberIDs := make([]string, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.UserID)
	}

	snap, err := s.source.Load(ctx)
	if err != nil {
		return LeagueStandings{}, fmt.Errorf("load scoring snapshot: %w", err)
	}
	idx := scoring.BuildSeasonIndex(snap, s.deadlineBuffer)

	startRound := EffectiveStartRound(item, idx)
	rounds := make([]int, 0)
	for _, round := range idx.DecidedRounds() {
		if round >= startRound {
			rounds = append(rounds, round)
		}
	}

	names, err := s.displayNames(ctx, memberIDs)
	if err != nil {
		return LeagueStandings{}, err
	}

	rows := buildStandingsRows(idx, memberIDs, rounds, names)
	return LeagueStandings{
		LeagueID:   item.ID,
		StartRound: startRound,
		Rounds:     rounds,
		Rows:       rows,
		ComputedAt: s.now().UTC(),
	}, nil
}

func (s *StandingsService) displayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
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

// EffectiveStartRound picks the first round the league may score. An explicit
// override wins; otherwise the earliest decided round whose deadline falls on
// or after the league's creation time; failing that, one past the latest
// decided round, which makes the league ineligible until new rounds decide.
func EffectiveStartRound(item league.League, idx *scoring.SeasonIndex) int {
	if item.StartRoundOverride != nil {
		return *item.StartRoundOverride
	}

	decided := idx.DecidedRounds()
	for _, round := range decided {
		deadline, ok := idx.Deadline(round)
		if !ok {
			continue
		}
		if !deadline.Before(item.CreatedAt) {
			return round
		}
	}
	if len(decided) == 0 {
		return 1
	}
	return decided[len(decided)-1] + 1
}

func buildStandingsRows(idx *scoring.SeasonIndex, memberIDs []string, rounds []int, names map[string]string) []StandingsRow {
	totals := make(map[string]*StandingsRow, len(memberIDs))
	for _, userID := range memberIDs {
		totals[userID] = &StandingsRow{UserID: userID, Name: names[userID]}
	}

	for _, round := range rounds {
		scores := make(map[string]scoring.RoundScore, len(memberIDs))
		for _, userID := range memberIDs {
			score, ok := idx.Score(round, userID, memberIDs)
			if !ok {
				continue
			}
			scores[userID] = score
			totals[userID].Unicorns += score.Unicorns
			totals[userID].CorrectPicks += score.Correct
		}

		winners := roundWinners(scores, memberIDs)
		if len(winners) == 1 {
			totals[winners[0]].Points += roundWinPoints
		} else {
			for _, userID := range winners {
				totals[userID].Points += roundSharedPoints
			}
		}
	}

	rows := make([]StandingsRow, 0, len(memberIDs))
	for _, userID := range memberIDs {
		rows = append(rows, *totals[userID])
	}

	// The full four-level cascade. Trimming any level reorders real tables.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].Unicorns != rows[j].Unicorns {
			return rows[i].Unicorns > rows[j].Unicorns
		}
		if rows[i].CorrectPicks != rows[j].CorrectPicks {
			return rows[i].CorrectPicks > rows[j].CorrectPicks
		}
		return rows[i].Name < rows[j].Name
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// roundWinners returns the members at the round's top spot, ranked by correct
// count with unicorns as the only tie-break. More than one winner means the
// pot is shared.
func roundWinners(scores map[string]scoring.RoundScore, memberIDs []string) []string {
	bestCorrect := -1
	bestUnicorns := -1
	winners := make([]string, 0, 1)
	for _, userID := range memberIDs {
		score, ok := scores[userID]
		if !ok {
			continue
		}
		switch {
		case score.Correct > bestCorrect || (score.Correct == bestCorrect && score.Unicorns > bestUnicorns):
			bestCorrect = score.Correct
			bestUnicorns = score.Unicorns
			winners = winners[:0]
			winners = append(winners, userID)
		case score.Correct == bestCorrect && score.Unicorns == bestUnicorns:
			winners = append(winners, userID)
		}
	}
	return winners
}
