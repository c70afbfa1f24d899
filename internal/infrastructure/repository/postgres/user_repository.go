package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ferguskeenan/prediction-league/internal/domain/user"
	qb "github.com/ferguskeenan/prediction-league/internal/platform/querybuilder"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) UpsertProfile(ctx context.Context, profile user.Profile) error {
	insertModel := userProfileInsertModel{
		UserID:      strings.TrimSpace(profile.UserID),
		DisplayName: strings.TrimSpace(profile.DisplayName),
	}

	query, args, err := qb.InsertModel("user_profiles", insertModel, `ON CONFLICT (user_id) WHERE deleted_at IS NULL
DO UPDATE SET
    display_name = EXCLUDED.display_name,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert user profile query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert user profile: %w", err)
	}
	return nil
}

func (r *UserRepository) ListProfiles(ctx context.Context, userIDs []string) ([]user.Profile, error) {
	if len(userIDs) == 0 {
		return []user.Profile{}, nil
	}

	values := make([]any, 0, len(userIDs))
	for _, userID := range userIDs {
		values = append(values, userID)
	}

	query, args, err := qb.Select("*").From("user_profiles").
		Where(
			qb.In("user_id", values),
			qb.IsNull("deleted_at"),
		).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select user profiles query: %w", err)
	}

	var rows []userProfileTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select user profiles: %w", err)
	}

	out := make([]user.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, user.Profile{
			UserID:      row.UserID,
			DisplayName: row.DisplayName,
		})
	}
	return out, nil
}
