package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ferguskeenan/prediction-league/internal/domain/scoring"
)

type StatsService struct {
	ranking *RankingService
}

// UserStats is the read-only statistic bundle for one user. Best and worst
// rounds only exist once at least one round is scored; Available on the
// percentiles distinguishes "no data" from a real zero.
type UserStats struct {
	UserID              string
	RoundsScored        int
	TotalCorrect        int
	AveragePerRound     float64
	BestRound           int
	BestPoints          int
	WorstRound          int
	WorstPoints         int
	Unicorns            int
	UnicornRate         float64
	OverallPercentile   Percentile
	LastRoundPercentile Percentile
	Streak              scoring.StreakSpan
}

func NewStatsService(ranking *RankingService) *StatsService {
	return &StatsService{ranking: ranking}
}

// UserStats assembles the bundle from one season index. The unicorn group is
// the full participant population, so the rate is comparable across leagues.
func (s *StatsService) UserStats(ctx context.Context, userID string) (UserStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.UserStats")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return UserStats{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	idx, err := s.ranking.seasonIndex(ctx)
	if err != nil {
		return UserStats{}, err
	}

	stats := UserStats{UserID: userID}
	participants := idx.Participants()
	for _, round := range idx.DecidedRounds() {
		if idx.UserPicks(round, userID) == nil {
			continue
		}
		score, ok := idx.Score(round, userID, participants)
		if !ok {
			continue
		}

		if stats.RoundsScored == 0 || score.Correct > stats.BestPoints {
			stats.BestRound = round
			stats.BestPoints = score.Correct
		}
		if stats.RoundsScored == 0 || score.Correct < stats.WorstPoints {
			stats.WorstRound = round
			stats.WorstPoints = score.Correct
		}
		stats.RoundsScored++
		stats.TotalCorrect += score.Correct
		stats.Unicorns += score.Unicorns
	}

	if stats.RoundsScored > 0 {
		stats.AveragePerRound = float64(stats.TotalCorrect) / float64(stats.RoundsScored)
		stats.UnicornRate = float64(stats.Unicorns) / float64(stats.RoundsScored)
	}

	if stats.OverallPercentile, err = s.ranking.OverallPercentile(ctx, userID); err != nil {
		return UserStats{}, err
	}
	if stats.LastRoundPercentile, err = s.ranking.LastRoundPercentile(ctx, userID); err != nil {
		return UserStats{}, err
	}
	if stats.Streak, err = s.ranking.LongestTopQuartileStreak(ctx, userID); err != nil {
		return UserStats{}, err
	}
	return stats, nil
}
