package activity

import (
	"strings"
	"time"
)

// Query limits.
const (
	DefaultQueryLimit  = 100
	MaxQueryLimit      = 500
	DefaultSearchLimit = 20
)

// QueryOptions controls filtering and pagination for index queries.
type QueryOptions struct {
	Since  *time.Time
	Until  *time.Time
	Limit  int    // default DefaultQueryLimit, capped at MaxQueryLimit
	Cursor string // from CursorFor on the last entry of the previous page
}

// SearchOptions controls filtering for summary search.
type SearchOptions struct {
	IndexType string // restrict to one index type; empty searches question entries
	Since     *time.Time
	Limit     int // default DefaultSearchLimit
}

func (o QueryOptions) limit() int {
	if o.Limit <= 0 || o.Limit > MaxQueryLimit {
		return DefaultQueryLimit
	}
	return o.Limit
}

func (o SearchOptions) limit() int {
	if o.Limit <= 0 {
		return DefaultSearchLimit
	}
	return o.Limit
}

// CursorFor formats the pagination cursor pointing after e. The event id
// breaks ties between entries with the same timestamp.
func CursorFor(e Entry) string {
	return e.OccurredAt.UTC().Format(time.RFC3339Nano) + "|" + e.EventID
}

type cursor struct {
	at      time.Time
	eventID string
}

func parseCursor(raw string) (*cursor, bool) {
	if raw == "" {
		return nil, false
	}
	ts, id, _ := strings.Cut(raw, "|")
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, false
	}
	return &cursor{at: t, eventID: id}, true
}

// after reports whether e sorts after the cursor in newest-first order.
func (c *cursor) after(e Entry) bool {
	if e.OccurredAt.Equal(c.at) {
		return e.EventID < c.eventID
	}
	return e.OccurredAt.Before(c.at)
}

// sortsBefore orders entries newest first, then by descending event id.
func sortsBefore(a, b Entry) bool {
	if !a.OccurredAt.Equal(b.OccurredAt) {
		return a.OccurredAt.After(b.OccurredAt)
	}
	return a.EventID > b.EventID
}
