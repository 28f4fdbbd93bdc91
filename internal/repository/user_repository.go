package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/letzhq/letz-insights/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, waid, full_name, timezone, level, is_active, created_at, updated_at"

// ListCanonical returns one user row per waid: the most recently created
// one. Re-onboarding creates duplicate rows per waid, and only the newest
// carries the current name and timezone.
func (r *UserRepo) ListCanonical(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.id, u.waid, u.full_name, u.timezone, u.level, u.is_active, u.created_at, u.updated_at
		FROM users u
		JOIN (
			SELECT waid, MAX(created_at) AS max_created
			FROM users
			GROUP BY waid
		) latest ON u.waid = latest.waid AND u.created_at = latest.max_created
		ORDER BY u.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.WAID, &u.FullName, &u.Timezone, &u.Level,
			&u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetByID fetches a single user row.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id).
		Scan(&u.ID, &u.WAID, &u.FullName, &u.Timezone, &u.Level, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// CountDistinct counts unique waids across all user rows.
func (r *UserRepo) CountDistinct(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(DISTINCT waid) FROM users").Scan(&n)
	return n, err
}

// CountCreatedSince counts unique waids first seen at or after the given
// instant.
func (r *UserRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT waid) FROM users WHERE created_at >= ?", since).Scan(&n)
	return n, err
}
