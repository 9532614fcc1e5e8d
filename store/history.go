package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpilot/taskpilot/triage"
)

// Email is one row of the history ledger, shaped for the read API.
type Email struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	SenderEmail   string    `json:"sender_email"`
	SenderName    string    `json:"sender_name"`
	ReceiverEmail string    `json:"receiver_email"`
	HistoryID     string    `json:"history_id"`
	Date          time.Time `json:"date"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	Priority      string    `json:"priority"`
	Read          bool      `json:"read"`
}

// History is the email ledger repository. The triage core uses it
// write-only through triage.HistoryStore.
type History struct {
	pool *pgxpool.Pool
}

func NewHistory(pool *pgxpool.Pool) *History {
	return &History{pool: pool}
}

// Append persists the terminal record of a processed message. Records are
// never updated or deleted here; retention is an external concern.
func (r *History) Append(ctx context.Context, rec *triage.HistoryRecord) error {
	query := `
		INSERT INTO emails (user_id, sender_email, sender_name, receiver_email,
			history_id, date, title, summary, priority, read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.pool.Exec(ctx, query,
		rec.UserID, rec.SenderAddress, rec.SenderName, rec.ReceiverAddress,
		rec.HistoryWatermark, rec.Date, rec.Title, rec.Summary, string(rec.Priority), rec.Read,
	)
	if err != nil {
		return fmt.Errorf("append history record for user %d: %w", rec.UserID, err)
	}
	return nil
}

// ListByReceiver returns the receiver's newest records, newest first.
func (r *History) ListByReceiver(ctx context.Context, receiver string, limit int) ([]Email, error) {
	query := `
		SELECT id, user_id, sender_email, sender_name, receiver_email,
			history_id, date, title, summary, priority, read
		FROM emails
		WHERE receiver_email = $1
		ORDER BY date DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, query, receiver, limit)
	if err != nil {
		return nil, fmt.Errorf("list history for %s: %w", receiver, err)
	}
	defer rows.Close()

	emails := []Email{}
	for rows.Next() {
		var e Email
		if err := rows.Scan(&e.ID, &e.UserID, &e.SenderEmail, &e.SenderName, &e.ReceiverEmail,
			&e.HistoryID, &e.Date, &e.Title, &e.Summary, &e.Priority, &e.Read); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}
