package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/letzhq/letz-insights/internal/model"
)

type RecoveryRepo struct{ DB *sql.DB }

func NewRecoveryRepo(db *sql.DB) *RecoveryRepo { return &RecoveryRepo{DB: db} }

// ListSends returns every recovery-template send ordered by user and send
// time, the shape the attribution calculator expects.
func (r *RecoveryRepo) ListSends(ctx context.Context) ([]model.RecoveryLog, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, template_name, ladder_step, sent_at, converted
		FROM recovery_logs
		WHERE sent_at IS NOT NULL
		ORDER BY user_id, sent_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RecoveryLog
	for rows.Next() {
		var l model.RecoveryLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.TemplateName, &l.LadderStep, &l.SentAt, &l.Converted); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CountSince counts template sends at or after the given instant.
func (r *RecoveryRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM recovery_logs WHERE sent_at >= ?", since).Scan(&n)
	return n, err
}

// CountsByUser returns how many recovery templates each user has received.
func (r *RecoveryRepo) CountsByUser(ctx context.Context) (map[uint64]int64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT user_id, COUNT(*) FROM recovery_logs GROUP BY user_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64]int64)
	for rows.Next() {
		var userID uint64
		var n int64
		if err := rows.Scan(&userID, &n); err != nil {
			return nil, err
		}
		out[userID] = n
	}
	return out, rows.Err()
}
