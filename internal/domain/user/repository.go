package user

import "context"

type Repository interface {
	// UpsertProfile refreshes the stored display name, idempotent by user id.
	UpsertProfile(ctx context.Context, profile Profile) error
	ListProfiles(ctx context.Context, userIDs []string) ([]Profile, error)
}
