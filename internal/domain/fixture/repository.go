package fixture

import "context"

// Repository exposes fixture reads. Fixtures are created by an external admin
// import and are read-only to this engine.
type Repository interface {
	ListByRound(ctx context.Context, round int) ([]Fixture, error)
	ListRounds(ctx context.Context) ([]int, error)
}
