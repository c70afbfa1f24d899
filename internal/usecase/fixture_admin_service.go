package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ferguskeenan/prediction-league/internal/domain/fixture"
)

// FixtureImporter accepts the admin schedule import. The engine never creates
// fixtures on its own.
type FixtureImporter interface {
	UpsertFixtures(ctx context.Context, items []fixture.Fixture) error
}

type FixtureAdminService struct {
	fixtures     FixtureImporter
	invalidators []CacheInvalidator
}

func NewFixtureAdminService(fixtures FixtureImporter, invalidators ...CacheInvalidator) *FixtureAdminService {
	return &FixtureAdminService{fixtures: fixtures, invalidators: invalidators}
}

// ImportFixtures validates and stores a schedule batch. A zero kickoff is
// allowed and means the match has no confirmed time yet.
func (s *FixtureAdminService) ImportFixtures(ctx context.Context, items []fixture.Fixture) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureAdminService.ImportFixtures")
	defer span.End()

	if len(items) == 0 {
		return 0, fmt.Errorf("%w: fixtures are required", ErrInvalidInput)
	}

	seen := make(map[[2]int]struct{}, len(items))
	for _, item := range items {
		if item.Round <= 0 {
			return 0, fmt.Errorf("%w: round must be greater than zero", ErrInvalidInput)
		}
		if item.Index < 0 {
			return 0, fmt.Errorf("%w: fixture index must not be negative", ErrInvalidInput)
		}
		if strings.TrimSpace(item.HomeTeam) == "" || strings.TrimSpace(item.AwayTeam) == "" {
			return 0, fmt.Errorf("%w: both team names are required for round %d index %d", ErrInvalidInput, item.Round, item.Index)
		}
		key := [2]int{item.Round, item.Index}
		if _, dup := seen[key]; dup {
			return 0, fmt.Errorf("%w: duplicate fixture round %d index %d", ErrInvalidInput, item.Round, item.Index)
		}
		seen[key] = struct{}{}
	}

	if err := s.fixtures.UpsertFixtures(ctx, items); err != nil {
		return 0, fmt.Errorf("upsert fixtures: %w", err)
	}
	for _, invalidator := range s.invalidators {
		invalidator.InvalidateScoring(ctx)
	}
	return len(items), nil
}
