package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/elee1766/chatledger/src/storage"
)

// StartSessionInput is the configuration for a new session
type StartSessionInput struct {
	storage.SessionConfig
	Note string
}

// SessionStart is the outcome of a transition
type SessionStart struct {
	SessionID      string                `json:"session_id"`
	EndedSession   *storage.EndedSession `json:"ended_session"`
	ConfigSnapshot storage.SessionConfig `json:"config_snapshot"`
}

// ArchiveResult reports an archive of the live log
type ArchiveResult struct {
	ArchivedCount int64     `json:"archived_count"`
	ArchivedAt    time.Time `json:"archived_at"`
}

// StartSession closes the active session, archives the live log and opens a
// new session, as one atomic unit. Live messages that predate every session
// are archived untagged.
func (l *Ledger) StartSession(ctx context.Context, input StartSessionInput) (*SessionStart, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}
	input.Provider = strings.TrimSpace(input.Provider)
	input.Model = strings.TrimSpace(input.Model)
	if input.Provider == "" {
		return nil, ErrProviderMissing
	}
	if input.Model == "" {
		return nil, ErrModelMissing
	}
	if input.ContextMessages < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidContext, input.ContextMessages)
	}

	logger := l.logger.With("method", "StartSession")

	l.transitionMu.Lock()
	defer l.transitionMu.Unlock()

	result := &SessionStart{ConfigSnapshot: input.SessionConfig}
	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		now := l.clock.Now()

		active, err := storage.GetActiveSession(ctx, tx)
		if err != nil {
			return fmt.Errorf("failed to get active session: %w", err)
		}

		if active != nil {
			closed, err := storage.CloseSession(ctx, tx, active.ID, now)
			if err != nil {
				return fmt.Errorf("failed to close session %s: %w", active.ID, err)
			}
			if !closed {
				return fmt.Errorf("session %s was closed concurrently", active.ID)
			}
			moved, err := storage.ArchiveLiveMessages(ctx, tx, &active.ID, now)
			if err != nil {
				return err
			}
			result.EndedSession = &storage.EndedSession{
				ID:           active.ID,
				MessageCount: moved,
				StartedAt:    active.StartedAt,
				EndedAt:      now,
			}
		} else {
			moved, err := storage.ArchiveLiveMessages(ctx, tx, nil, now)
			if err != nil {
				return err
			}
			if moved > 0 {
				logger.Warn("archived messages that predate any session", "count", moved)
			}
		}

		session := &storage.Session{
			StartedAt:     l.clock.Now(),
			Note:          input.Note,
			SessionConfig: input.SessionConfig,
		}
		if err := storage.CreateSession(ctx, tx, session); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		result.SessionID = session.ID
		return nil
	})
	if err != nil {
		logger.Error("session transition rolled back", "error", err)
		return nil, &TransactionError{Op: "start_session", Err: err}
	}

	if result.EndedSession != nil {
		logger.Info("session transition",
			"ended", result.EndedSession.ID,
			"archived", result.EndedSession.MessageCount,
			"started", result.SessionID)
	} else {
		logger.Info("session started", "session_id", result.SessionID)
	}
	return result, nil
}

// ArchiveAll moves the whole live log into the archive without closing the
// active session. Moved messages are tagged with the active session id, if any.
func (l *Ledger) ArchiveAll(ctx context.Context) (*ArchiveResult, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}

	l.transitionMu.Lock()
	defer l.transitionMu.Unlock()

	result := &ArchiveResult{}
	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		active, err := storage.GetActiveSession(ctx, tx)
		if err != nil {
			return fmt.Errorf("failed to get active session: %w", err)
		}
		var tag *string
		if active != nil {
			tag = &active.ID
		}

		result.ArchivedAt = l.clock.Now()
		result.ArchivedCount, err = storage.ArchiveLiveMessages(ctx, tx, tag, result.ArchivedAt)
		return err
	})
	if err != nil {
		return nil, &TransactionError{Op: "archive_all", Err: err}
	}

	l.logger.Info("archived live log", "method", "ArchiveAll", "count", result.ArchivedCount)
	return result, nil
}

// ListSessions returns every session, most recently started first
func (l *Ledger) ListSessions(ctx context.Context) ([]storage.SessionSummary, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}
	sessions, err := storage.ListSessions(ctx, db.DB())
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []storage.SessionSummary{}
	}
	return sessions, nil
}

// ActiveSession returns the open session, nil when there is none
func (l *Ledger) ActiveSession(ctx context.Context) (*storage.Session, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}
	session, err := storage.GetActiveSession(ctx, db.DB())
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	return session, nil
}

// ActiveSessionID returns the id of the open session and whether one exists
func (l *Ledger) ActiveSessionID(ctx context.Context) (string, bool, error) {
	session, err := l.ActiveSession(ctx)
	if err != nil || session == nil {
		return "", false, err
	}
	return session.ID, true, nil
}
