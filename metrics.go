package recipehub

import (
	"context"
	"time"
)

// UsageMetrics tracks one provider's daily API consumption. UsedToday
// is only meaningful relative to LastReset: a record whose LastReset is
// before today is stale and is reset before any read or write.
type UsageMetrics struct {
	Provider   string    `json:"provider"`
	DailyQuota int       `json:"daily_quota"`
	UsedToday  int       `json:"used_today"`
	LastReset  time.Time `json:"last_reset"` // calendar date, midnight UTC
}

// Remaining returns the calls left today, never negative.
func (m UsageMetrics) Remaining() int {
	if r := m.DailyQuota - m.UsedToday; r > 0 {
		return r
	}
	return 0
}

// MetricsStore persists usage metrics as JSON blobs keyed by provider
// name. The ledger treats persistence as best-effort: a store that
// fails leaves the ledger serving from memory.
type MetricsStore interface {
	// Save persists a single record, replacing any previous one.
	Save(ctx context.Context, m UsageMetrics) error

	// SaveAll replaces the persisted set with the given records.
	SaveAll(ctx context.Context, all []UsageMetrics) error

	// LoadAll returns every persisted record.
	LoadAll(ctx context.Context) ([]UsageMetrics, error)
}
