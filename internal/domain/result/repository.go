package result

import "context"

type Repository interface {
	// Upsert is idempotent by (round, fixture index). The external feed owns
	// result writes; the engine never rewrites a recorded result.
	Upsert(ctx context.Context, item Result) error
	ListByRound(ctx context.Context, round int) ([]Result, error)
}
