package storage

import (
	"context"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

const (
	SourceLive    = "live"
	SourceArchive = "archive"
)

// whereClause applies the same role and substring predicates to either source.
// Substring matching is case-insensitive (SQLite lower() folds ASCII).
func (f SearchFilter) whereClause() (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.Role != "" {
		conds = append(conds, `role = ?`)
		args = append(args, f.Role)
	}
	if f.Query != "" {
		conds = append(conds, `instr(lower(content), lower(?)) > 0`)
		args = append(args, f.Query)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

// SearchLiveMessages returns the newest limit live messages matching f
func SearchLiveMessages(ctx context.Context, db sqlscan.Querier, f SearchFilter, limit int) ([]SearchHit, error) {
	where, args := f.whereClause()
	query := `SELECT id, role, content, timestamp, NULL AS session_id, NULL AS archived_at, '` + SourceLive + `' AS source FROM messages` +
		where + ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	var hits []SearchHit
	if err := sqlscan.Select(ctx, db, &hits, query, append(args, limit)...); err != nil {
		return nil, err
	}
	allToUTC(hits)
	return hits, nil
}

// SearchArchivedMessages returns the newest limit archived messages matching f
func SearchArchivedMessages(ctx context.Context, db sqlscan.Querier, f SearchFilter, limit int) ([]SearchHit, error) {
	where, args := f.whereClause()
	query := `SELECT id, role, content, timestamp, session_id, archived_at, '` + SourceArchive + `' AS source FROM archived_messages` +
		where + ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	var hits []SearchHit
	if err := sqlscan.Select(ctx, db, &hits, query, append(args, limit)...); err != nil {
		return nil, err
	}
	allToUTC(hits)
	return hits, nil
}

// CountMatches counts live and archived messages matching f
func CountMatches(ctx context.Context, db sqlscan.Querier, f SearchFilter) (live, archived int64, err error) {
	where, args := f.whereClause()
	if err = sqlscan.Get(ctx, db, &live, `SELECT COUNT(*) FROM messages`+where, args...); err != nil {
		return 0, 0, err
	}
	if err = sqlscan.Get(ctx, db, &archived, `SELECT COUNT(*) FROM archived_messages`+where, args...); err != nil {
		return 0, 0, err
	}
	return live, archived, nil
}

// MergeHits merges two timestamp-descending lists into one, newest first
func MergeHits(a, b []SearchHit) []SearchHit {
	merged := make([]SearchHit, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if newerHit(a[i], b[j]) {
			merged = append(merged, a[i])
			i++
		} else {
			merged = append(merged, b[j])
			j++
		}
	}
	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)
	return merged
}

func newerHit(x, y SearchHit) bool {
	if !x.Timestamp.Equal(y.Timestamp) {
		return x.Timestamp.After(y.Timestamp)
	}
	return x.ID > y.ID
}

// GetMessageStats aggregates the live log and archive. messagesToday counts
// only live entries in [dayStart, dayStart+24h).
func GetMessageStats(ctx context.Context, db sqlscan.Querier, dayStart time.Time) (*MessageStats, error) {
	type roleCounts struct {
		Total     int64 `db:"total"`
		User      int64 `db:"user_count"`
		Assistant int64 `db:"assistant_count"`
	}
	countQuery := `SELECT COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN role = 'user' THEN 1 ELSE 0 END), 0) AS user_count,
		COALESCE(SUM(CASE WHEN role = 'assistant' THEN 1 ELSE 0 END), 0) AS assistant_count
	FROM `

	var live, archived roleCounts
	if err := sqlscan.Get(ctx, db, &live, countQuery+`messages`); err != nil {
		return nil, err
	}
	if err := sqlscan.Get(ctx, db, &archived, countQuery+`archived_messages`); err != nil {
		return nil, err
	}

	stats := &MessageStats{
		TotalMessages:     live.Total + archived.Total,
		UserMessages:      live.User + archived.User,
		AssistantMessages: live.Assistant + archived.Assistant,
	}

	dayStart = dayStart.UTC()
	err := sqlscan.Get(ctx, db, &stats.MessagesToday,
		`SELECT COUNT(*) FROM messages WHERE timestamp >= ? AND timestamp < ?`,
		dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	for _, table := range []string{"messages", "archived_messages"} {
		first, err := getTime(ctx, db, `SELECT timestamp FROM `+table+` ORDER BY timestamp ASC LIMIT 1`)
		if err != nil {
			return nil, err
		}
		if first != nil && (stats.FirstMessageAt == nil || first.Before(*stats.FirstMessageAt)) {
			stats.FirstMessageAt = first
		}
		last, err := getTime(ctx, db, `SELECT timestamp FROM `+table+` ORDER BY timestamp DESC LIMIT 1`)
		if err != nil {
			return nil, err
		}
		if last != nil && (stats.LastMessageAt == nil || last.After(*stats.LastMessageAt)) {
			stats.LastMessageAt = last
		}
	}

	return stats, nil
}
