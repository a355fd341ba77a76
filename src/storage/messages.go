package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// CreateMessage appends a message to the live log
func CreateMessage(ctx context.Context, db Execer, message *Message) error {
	if message.ID == "" {
		message.ID = GenerateID()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}

	query := `INSERT INTO messages (id, role, content, timestamp) VALUES (?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, message.ID, message.Role, message.Content, message.Timestamp)
	return err
}

// ListMessages returns up to limit live messages, newest first, strictly older than before when set
func ListMessages(ctx context.Context, db sqlscan.Querier, limit int, before *time.Time) ([]Message, error) {
	query := `SELECT id, role, content, timestamp FROM messages`
	args := []interface{}{}
	if before != nil {
		query += ` WHERE timestamp < ?`
		args = append(args, before.UTC())
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	args = append(args, limit)

	var messages []Message
	if err := sqlscan.Select(ctx, db, &messages, query, args...); err != nil {
		return nil, err
	}
	allToUTC(messages)
	return messages, nil
}

// CountMessages counts the live log
func CountMessages(ctx context.Context, db sqlscan.Querier) (int64, error) {
	var n int64
	err := sqlscan.Get(ctx, db, &n, `SELECT COUNT(*) FROM messages`)
	return n, err
}

// LatestTimestamp returns the newest instant written to any ledger table, or nil on an empty store
func LatestTimestamp(ctx context.Context, db sqlscan.Querier) (*time.Time, error) {
	queries := []string{
		`SELECT timestamp FROM messages ORDER BY timestamp DESC LIMIT 1`,
		`SELECT timestamp FROM archived_messages ORDER BY timestamp DESC LIMIT 1`,
		`SELECT started_at FROM sessions ORDER BY started_at DESC LIMIT 1`,
		`SELECT ended_at FROM sessions WHERE ended_at IS NOT NULL ORDER BY ended_at DESC LIMIT 1`,
		`SELECT timestamp FROM traces ORDER BY timestamp DESC LIMIT 1`,
	}

	var latest *time.Time
	for _, query := range queries {
		t, err := getTime(ctx, db, query)
		if err != nil {
			return nil, err
		}
		if t != nil && (latest == nil || t.After(*latest)) {
			latest = t
		}
	}
	return latest, nil
}

// getTime reads the first column of the first row as a timestamp, nil when
// there is no row. Scanned without scany, which maps time.Time as a struct.
func getTime(ctx context.Context, db sqlscan.Querier, query string, args ...interface{}) (*time.Time, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var t sql.NullTime
	if err := rows.Scan(&t); err != nil {
		return nil, err
	}
	if !t.Valid {
		return nil, nil
	}
	return utcPtr(&t.Time), rows.Err()
}
