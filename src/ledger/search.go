package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/elee1766/chatledger/src/storage"
)

// SearchQuery filters the union of the live log and the archive
type SearchQuery struct {
	Limit  int
	Offset int
	// Role is an exact match; empty matches both roles
	Role string
	// Query is a case-insensitive substring of content
	Query string
}

// SearchPage is one page of search hits and the size of the full result
type SearchPage struct {
	Messages []storage.SearchHit `json:"messages"`
	Total    int64               `json:"total"`
}

// SearchMessages pages through live and archived messages, newest first.
// Both sources are read in one transaction so the page and total agree.
func (l *Ledger) SearchMessages(ctx context.Context, q SearchQuery) (*SearchPage, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}
	if err := validateLimit(q.Limit, q.Offset); err != nil {
		return nil, err
	}
	if q.Role != "" && q.Role != storage.RoleUser && q.Role != storage.RoleAssistant {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, q.Role)
	}

	filter := storage.SearchFilter{Role: q.Role, Query: q.Query}
	window := q.Offset + q.Limit
	page := &SearchPage{Messages: []storage.SearchHit{}}

	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		live, err := storage.SearchLiveMessages(ctx, tx, filter, window)
		if err != nil {
			return fmt.Errorf("failed to search live messages: %w", err)
		}
		archived, err := storage.SearchArchivedMessages(ctx, tx, filter, window)
		if err != nil {
			return fmt.Errorf("failed to search archive: %w", err)
		}
		liveCount, archivedCount, err := storage.CountMatches(ctx, tx, filter)
		if err != nil {
			return fmt.Errorf("failed to count matches: %w", err)
		}

		merged := storage.MergeHits(live, archived)
		if q.Offset < len(merged) {
			end := min(len(merged), window)
			page.Messages = append(page.Messages, merged[q.Offset:end]...)
		}
		page.Total = liveCount + archivedCount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// MessageStats aggregates the live log and archive. MessagesToday counts
// only live entries stamped on the current UTC day.
func (l *Ledger) MessageStats(ctx context.Context) (*storage.MessageStats, error) {
	db, err := l.store()
	if err != nil {
		return nil, err
	}

	dayStart := l.clock.Wall().Truncate(24 * time.Hour)
	var stats *storage.MessageStats
	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		stats, err = storage.GetMessageStats(ctx, tx, dayStart)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute message stats: %w", err)
	}
	return stats, nil
}
