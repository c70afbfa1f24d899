package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ferguskeenan/prediction-league/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo schedule and users into an empty database.
// A database with any fixture rows is left untouched.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM fixtures WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count fixtures for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	fixtureRepo := NewFixtureRepository(db)
	if err := fixtureRepo.UpsertFixtures(ctx, memory.SeedFixtures()); err != nil {
		return fmt.Errorf("seed fixtures: %w", err)
	}

	userRepo := NewUserRepository(db)
	for _, profile := range memory.SeedProfiles() {
		if err := userRepo.UpsertProfile(ctx, profile); err != nil {
			return fmt.Errorf("seed profile %s: %w", profile.UserID, err)
		}
	}
	return nil
}
