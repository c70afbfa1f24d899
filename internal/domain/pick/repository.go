package pick

import "context"

type Repository interface {
	// Upsert inserts or replaces a pick by its (user, round, fixture index) key.
	Upsert(ctx context.Context, item Pick) error
	ListByUserAndRound(ctx context.Context, userID string, round int) ([]Pick, error)
	ListByRound(ctx context.Context, round int) ([]Pick, error)
}
