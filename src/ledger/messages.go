package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/elee1766/chatledger/src/storage"
)

// HistoryPage is one page of the live log, newest first.
type HistoryPage struct {
	Messages   []storage.Message `json:"messages"`
	HasMore    bool              `json:"has_more"`
	NextCursor *time.Time        `json:"next_cursor"`
}

// AppendMessage writes one turn to the live log
func (l *Ledger) AppendMessage(ctx context.Context, role, content string) (*storage.Message, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}
	if role != storage.RoleUser && role != storage.RoleAssistant {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	message := &storage.Message{
		Role:      role,
		Content:   content,
		Timestamp: l.clock.Now(),
	}
	if err := storage.CreateMessage(ctx, db.DB(), message); err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	return message, nil
}

// GetHistory reads up to limit live messages strictly older than before.
// NextCursor is set only when more messages remain; pass it back as before.
func (l *Ledger) GetHistory(ctx context.Context, limit int, before *time.Time) (*HistoryPage, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}
	if err := validateLimit(limit, 0); err != nil {
		return nil, err
	}

	rows, err := storage.ListMessages(ctx, db.DB(), limit+1, before)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	page := &HistoryPage{Messages: []storage.Message{}}
	if len(rows) > limit {
		page.HasMore = true
		rows = rows[:limit]
	}
	page.Messages = append(page.Messages, rows...)
	if page.HasMore {
		cursor := rows[len(rows)-1].Timestamp
		page.NextCursor = &cursor
	}
	return page, nil
}

// ContextWindow returns the newest n live messages in chronological order
func (l *Ledger) ContextWindow(ctx context.Context, n int) ([]storage.Message, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return []storage.Message{}, nil
	}

	rows, err := storage.ListMessages(ctx, db.DB(), n, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read context window: %w", err)
	}
	window := make([]storage.Message, len(rows))
	for i, m := range rows {
		window[len(rows)-1-i] = m
	}
	return window, nil
}
