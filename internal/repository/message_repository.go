package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/letzhq/letz-insights/internal/model"
)

// MessageWithUser is a message row joined with display fields of its user.
type MessageWithUser struct {
	model.Message
	FullName *string
	Timezone *string
}

// UserMessageTime is one user-sent message instant, keyed by waid so
// callers can deduplicate re-onboarded users.
type UserMessageTime struct {
	UserID uint64
	WAID   string
	SentAt time.Time
}

// LastMessage is the most recent message of one direction for a user.
type LastMessage struct {
	SentAt  time.Time
	Message string
	Type    *string
}

type MessageRepo struct{ DB *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{DB: db} }

// ListRecent returns the latest messages across all users, newest first,
// joined with user name and timezone for display.
func (r *MessageRepo) ListRecent(ctx context.Context, limit int) ([]MessageWithUser, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT m.id, m.user_id, m.waid, m.sender, m.type, m.message, m.sent_at, m.status,
		       u.full_name, u.timezone
		FROM messages m
		LEFT JOIN users u ON m.user_id = u.id
		WHERE m.sent_at IS NOT NULL
		ORDER BY m.sent_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MessageWithUser
	for rows.Next() {
		var m MessageWithUser
		if err := rows.Scan(&m.ID, &m.UserID, &m.WAID, &m.Sender, &m.Type, &m.Message.Message,
			&m.SentAt, &m.Status, &m.FullName, &m.Timezone); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListByUser returns a user's message history, newest first.
func (r *MessageRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Message, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, waid, sender, type, message, sent_at, status
		FROM messages
		WHERE user_id = ? AND sent_at IS NOT NULL
		ORDER BY sent_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.WAID, &m.Sender, &m.Type, &m.Message,
			&m.SentAt, &m.Status); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UserMessageTimes returns every user-sent message instant with its waid.
// This feeds the cohort calculator, which buckets the instants into local
// dates itself so the date math stays in one pure place.
func (r *MessageRepo) UserMessageTimes(ctx context.Context) ([]UserMessageTime, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT m.user_id, u.waid, m.sent_at
		FROM messages m
		JOIN users u ON m.user_id = u.id
		WHERE m.sender = ? AND m.sent_at IS NOT NULL
		ORDER BY m.sent_at`, model.SenderUser)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserMessageTime
	for rows.Next() {
		var t UserMessageTime
		if err := rows.Scan(&t.UserID, &t.WAID, &t.SentAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// LastMessagesBySender returns, per user, the newest message of the given
// sender direction.
func (r *MessageRepo) LastMessagesBySender(ctx context.Context, sender string) (map[uint64]LastMessage, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, sent_at, message, type FROM (
			SELECT user_id, sent_at, message, type,
			       ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY sent_at DESC) AS rn
			FROM messages
			WHERE user_id IS NOT NULL AND sender = ? AND sent_at IS NOT NULL
		) ranked
		WHERE rn = 1`, sender)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64]LastMessage)
	for rows.Next() {
		var userID uint64
		var lm LastMessage
		if err := rows.Scan(&userID, &lm.SentAt, &lm.Message, &lm.Type); err != nil {
			return nil, err
		}
		out[userID] = lm
	}
	return out, rows.Err()
}

// CountActiveSince counts distinct waids that sent at least one message at
// or after the given instant.
func (r *MessageRepo) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT u.waid)
		FROM messages m
		JOIN users u ON m.user_id = u.id
		WHERE m.sender = ? AND m.sent_at >= ?`, model.SenderUser, since).Scan(&n)
	return n, err
}
