package storage

import "time"

// The driver parses stored timestamps into time.Local when the stored offset
// matches the host zone. Every read normalizes back to UTC so API output does
// not depend on the host.

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func (m *Message) toUTC() { m.Timestamp = m.Timestamp.UTC() }

func (m *ArchivedMessage) toUTC() {
	m.Message.toUTC()
	m.ArchivedAt = m.ArchivedAt.UTC()
}

func (s *Session) toUTC() {
	s.StartedAt = s.StartedAt.UTC()
	s.EndedAt = utcPtr(s.EndedAt)
}

func (h *SearchHit) toUTC() {
	h.Timestamp = h.Timestamp.UTC()
	h.ArchivedAt = utcPtr(h.ArchivedAt)
}

func (t *Trace) toUTC() { t.Timestamp = t.Timestamp.UTC() }

func (r *Rollup) toUTC() { r.PeriodStart = r.PeriodStart.UTC() }

func (r *BenchRun) toUTC() {
	r.StartedAt = r.StartedAt.UTC()
	r.EndedAt = utcPtr(r.EndedAt)
}

func (r *BenchSummaryRow) toUTC() { r.StartedAt = r.StartedAt.UTC() }

func (m *MigrationRecord) toUTC() { m.AppliedAt = m.AppliedAt.UTC() }

// allToUTC normalizes every row of a scanned slice in place.
func allToUTC[T any, P interface {
	*T
	toUTC()
}](rows []T) {
	for i := range rows {
		P(&rows[i]).toUTC()
	}
}
