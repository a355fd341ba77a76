package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/elee1766/chatledger/src/storage"
)

// Ledger is the session-scoped conversation ledger and trace analytics store.
// It is constructed once per process and shared by every consumer.
type Ledger struct {
	mu     sync.RWMutex
	db     *storage.DB
	logger *slog.Logger
	clock  *Clock

	// transitionMu serializes operations that move the live log
	transitionMu sync.Mutex
}

// Config holds configuration for creating a new Ledger
type Config struct {
	DB     *storage.DB
	Logger *slog.Logger
	// Now overrides the wall clock, mainly for tests
	Now func() time.Time
}

// New creates a ledger over an opened store. The clock is seeded from the
// newest stored instant so timestamps keep increasing across restarts.
func New(ctx context.Context, config Config) (*Ledger, error) {
	if config.DB == nil {
		return nil, ErrNotInitialized
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	l := &Ledger{
		db:     config.DB,
		logger: config.Logger.With("component", "ledger"),
		clock:  NewClock(config.Now),
	}

	latest, err := storage.LatestTimestamp(ctx, config.DB.DB())
	if err != nil {
		return nil, fmt.Errorf("failed to read latest timestamp: %w", err)
	}
	if latest != nil {
		l.clock.Observe(*latest)
	}
	return l, nil
}

// Open opens the database at path, applies migrations and returns a ledger owning it
func Open(ctx context.Context, path string, config Config) (*Ledger, error) {
	db, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	config.DB = db
	l, err := New(ctx, config)
	if err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// Close closes the underlying store. Later calls fail with ErrNotInitialized.
func (l *Ledger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

// store returns the open store or ErrNotInitialized
func (l *Ledger) store() (*storage.DB, error) {
	if l == nil {
		return nil, ErrNotInitialized
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return nil, ErrNotInitialized
	}
	return l.db, nil
}

// Now returns the next ledger instant
func (l *Ledger) Now() time.Time {
	return l.clock.Now()
}

func validateLimit(limit, offset int) error {
	if limit < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	if offset < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidOffset, offset)
	}
	return nil
}
