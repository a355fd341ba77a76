package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

const sessionColumns = `id, started_at, ended_at, note, provider, model, context_messages`

// GetSessionByID retrieves a session by its ID
func GetSessionByID(ctx context.Context, db sqlscan.Querier, sessionID string) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	var s Session
	err := sqlscan.Get(ctx, db, &s, query, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	s.toUTC()
	return &s, nil
}

// GetActiveSession retrieves the open session, nil when none is open
func GetActiveSession(ctx context.Context, db sqlscan.Querier) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE ended_at IS NULL LIMIT 1`
	var s Session
	err := sqlscan.Get(ctx, db, &s, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.toUTC()
	return &s, nil
}

// CreateSession creates a new open session in the database
func CreateSession(ctx context.Context, db Execer, session *Session) error {
	if session.ID == "" {
		session.ID = GenerateID()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}
	session.EndedAt = nil

	query := `INSERT INTO sessions (id, started_at, ended_at, note, provider, model, context_messages) VALUES (?, ?, NULL, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		session.ID, session.StartedAt, session.Note,
		session.Provider, session.Model, session.ContextMessages)
	return err
}

// CloseSession sets ended_at on an open session. It reports false when the
// session does not exist or was already closed.
func CloseSession(ctx context.Context, db Execer, sessionID string, endedAt time.Time) (bool, error) {
	res, err := db.ExecContext(ctx, `UPDATE sessions SET ended_at = ? WHERE id = ? AND ended_at IS NULL`, endedAt, sessionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListSessions returns every session, most recently started first. Open
// sessions count the live log; closed ones count their archived messages.
func ListSessions(ctx context.Context, db sqlscan.Querier) ([]SessionSummary, error) {
	query := `
	SELECT s.id, s.started_at, s.ended_at, s.note, s.provider, s.model, s.context_messages,
		CASE WHEN s.ended_at IS NULL
			THEN (SELECT COUNT(*) FROM messages)
			ELSE (SELECT COUNT(*) FROM archived_messages a WHERE a.session_id = s.id)
		END AS message_count
	FROM sessions s
	ORDER BY s.started_at DESC, s.id DESC`

	var sessions []SessionSummary
	if err := sqlscan.Select(ctx, db, &sessions, query); err != nil {
		return nil, err
	}
	allToUTC(sessions)
	for i := range sessions {
		sessions[i].IsActive = sessions[i].Active()
	}
	return sessions, nil
}

// CountActiveSessions is used to check the single-open-session invariant
func CountActiveSessions(ctx context.Context, db sqlscan.Querier) (int64, error) {
	var n int64
	err := sqlscan.Get(ctx, db, &n, `SELECT COUNT(*) FROM sessions WHERE ended_at IS NULL`)
	return n, err
}
