package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// ErrArchiveMismatch means the live log and the archive disagreed on how many
// messages moved. The caller must roll back.
var ErrArchiveMismatch = errors.New("archived message count does not match removed live messages")

// ArchiveLiveMessages moves every live message into the archive tagged with
// sessionID (NULL when nil) and empties the live log. It must run inside a
// transaction; a count mismatch returns ErrArchiveMismatch.
func ArchiveLiveMessages(ctx context.Context, db Execer, sessionID *string, archivedAt time.Time) (int64, error) {
	insert := `
	INSERT INTO archived_messages (id, session_id, role, content, timestamp, archived_at)
	SELECT id, ?, role, content, timestamp, ? FROM messages`
	res, err := db.ExecContext(ctx, insert, sessionID, archivedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to copy live messages: %w", err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	res, err = db.ExecContext(ctx, `DELETE FROM messages`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear live messages: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if moved != removed {
		return 0, fmt.Errorf("%w: archived %d, removed %d", ErrArchiveMismatch, moved, removed)
	}
	return moved, nil
}

// CountArchivedMessages counts archived messages of one session; nil counts the untagged ones
func CountArchivedMessages(ctx context.Context, db sqlscan.Querier, sessionID *string) (int64, error) {
	var n int64
	var err error
	if sessionID == nil {
		err = sqlscan.Get(ctx, db, &n, `SELECT COUNT(*) FROM archived_messages WHERE session_id IS NULL`)
	} else {
		err = sqlscan.Get(ctx, db, &n, `SELECT COUNT(*) FROM archived_messages WHERE session_id = ?`, *sessionID)
	}
	return n, err
}

// ListArchivedMessages returns the archived messages of one session in timestamp order
func ListArchivedMessages(ctx context.Context, db sqlscan.Querier, sessionID string) ([]ArchivedMessage, error) {
	query := `SELECT id, session_id, role, content, timestamp, archived_at FROM archived_messages WHERE session_id = ? ORDER BY timestamp, id`
	var messages []ArchivedMessage
	if err := sqlscan.Select(ctx, db, &messages, query, sessionID); err != nil {
		return nil, err
	}
	allToUTC(messages)
	return messages, nil
}
