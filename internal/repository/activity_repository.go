package repository

import (
	"context"
	"database/sql"

	"github.com/letzhq/letz-insights/internal/model"
)

type ActivityRepo struct{ DB *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{DB: db} }

// ListCompletions returns every completed activity, ordered by completion
// time. Rows without a completed_at are scheduled-but-unfinished and are
// skipped.
func (r *ActivityRepo) ListCompletions(ctx context.Context) ([]model.ActivityCompletion, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, activity_type, completed_at, COALESCE(xp_earned, 0)
		FROM user_activities_history
		WHERE completed_at IS NOT NULL
		ORDER BY completed_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ActivityCompletion
	for rows.Next() {
		var a model.ActivityCompletion
		if err := rows.Scan(&a.UserID, &a.ActivityType, &a.CompletedAt, &a.XPEarned); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// XPTotals returns total XP earned per user.
func (r *ActivityRepo) XPTotals(ctx context.Context) (map[uint64]int64, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, COALESCE(SUM(xp_earned), 0)
		FROM user_activities_history
		GROUP BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64]int64)
	for rows.Next() {
		var userID uint64
		var xp int64
		if err := rows.Scan(&userID, &xp); err != nil {
			return nil, err
		}
		out[userID] = xp
	}
	return out, rows.Err()
}

// CountUsersWithCompletion counts distinct users that finished at least one
// activity.
func (r *ActivityRepo) CountUsersWithCompletion(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT user_id) FROM user_activities_history WHERE completed_at IS NOT NULL").Scan(&n)
	return n, err
}
