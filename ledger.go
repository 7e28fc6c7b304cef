package recipehub

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Ledger tracks per-provider daily call budgets with automatic midnight
// reset. All methods are safe for concurrent use. Quota checks must
// never crash a request path, so apart from Register every operation
// degrades gracefully: unknown providers get deny-by-default answers
// instead of errors, and persistence failures leave the ledger serving
// from memory.
type Ledger struct {
	mu      sync.Mutex
	records map[string]*UsageMetrics
	order   []string // registration order, for stable scans
	store   MetricsStore
	now     func() time.Time
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithClock overrides the ledger's clock.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// NewLedger creates a Ledger backed by store. A nil store keeps the
// ledger purely in memory. Call LoadAll to pick up persisted state.
func NewLedger(store MetricsStore, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		records: make(map[string]*UsageMetrics),
		store:   store,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// today returns the current calendar date at midnight UTC.
func (l *Ledger) today() time.Time {
	n := l.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Register creates the quota record for a provider, or updates the
// quota in place if the provider is already registered. Idempotent.
func (l *Ledger) Register(name string, dailyQuota int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: provider name is required", ErrInvalidArgument)
	}
	if dailyQuota <= 0 {
		return fmt.Errorf("%w: daily quota must be positive, got %d", ErrInvalidArgument, dailyQuota)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if rec, ok := l.records[name]; ok {
		if rec.DailyQuota != dailyQuota {
			rec.DailyQuota = dailyQuota
			l.persist(rec)
		}
		return nil
	}

	rec := &UsageMetrics{Provider: name, DailyQuota: dailyQuota, LastReset: l.today()}
	l.records[name] = rec
	l.order = append(l.order, name)
	l.persist(rec)
	return nil
}

// refresh applies the lazy daily reset to a record. Caller holds l.mu.
// Reports whether a reset fired.
func (l *Ledger) refresh(rec *UsageMetrics) bool {
	today := l.today()
	if !rec.LastReset.Before(today) {
		return false
	}
	rec.UsedToday = 0
	rec.LastReset = today
	return true
}

// persist writes a single record through the store, best-effort.
// Caller holds l.mu.
func (l *Ledger) persist(rec *UsageMetrics) {
	if l.store == nil {
		return
	}
	_ = l.store.Save(context.Background(), *rec)
}

// Metrics returns the usage record for a provider, applying the lazy
// reset first. The second return is false for unknown providers.
func (l *Ledger) Metrics(name string) (UsageMetrics, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[name]
	if !ok {
		return UsageMetrics{}, false
	}
	if l.refresh(rec) {
		l.persist(rec)
	}
	return *rec, true
}

// AllMetrics returns a snapshot of every record, lazily reset.
func (l *Ledger) AllMetrics() map[string]UsageMetrics {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]UsageMetrics, len(l.records))
	for name, rec := range l.records {
		if l.refresh(rec) {
			l.persist(rec)
		}
		out[name] = *rec
	}
	return out
}

// IncrementUsage adds count calls to a provider's daily usage. No-op
// for unknown providers or non-positive counts.
func (l *Ledger) IncrementUsage(name string, count int) {
	if count <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[name]
	if !ok {
		return
	}
	l.refresh(rec)
	rec.UsedToday += count
	l.persist(rec)
}

// ResetCounter forces a provider's usage back to zero as of today.
func (l *Ledger) ResetCounter(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[name]
	if !ok {
		return
	}
	rec.UsedToday = 0
	rec.LastReset = l.today()
	l.persist(rec)
}

// IsQuotaExceeded reports whether a provider's quota is spent. Unknown
// providers count as exceeded: deny by default.
func (l *Ledger) IsQuotaExceeded(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[name]
	if !ok {
		return true
	}
	if l.refresh(rec) {
		l.persist(rec)
	}
	return rec.UsedToday >= rec.DailyQuota
}

// RemainingCalls returns the calls a provider has left today, zero for
// unknown providers.
func (l *Ledger) RemainingCalls(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[name]
	if !ok {
		return 0
	}
	if l.refresh(rec) {
		l.persist(rec)
	}
	return rec.Remaining()
}

// RecommendProvider returns the provider best positioned to take
// another call. With a preferred order it returns the first entry whose
// quota is not exceeded; otherwise it scans all registered providers
// and returns the one with the most calls remaining. Empty string when
// every quota is spent.
func (l *Ledger) RecommendProvider(preferred ...string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(preferred) > 0 {
		for _, name := range preferred {
			rec, ok := l.records[name]
			if !ok {
				continue
			}
			l.refresh(rec)
			if rec.UsedToday < rec.DailyQuota {
				return name
			}
		}
		return ""
	}

	best, bestRemaining := "", 0
	for _, name := range l.order {
		rec := l.records[name]
		l.refresh(rec)
		if r := rec.Remaining(); r > bestRemaining {
			best, bestRemaining = name, r
		}
	}
	return best
}

// SaveAll persists every record through the configured store.
func (l *Ledger) SaveAll(ctx context.Context) error {
	if l.store == nil {
		return nil
	}

	l.mu.Lock()
	all := make([]UsageMetrics, 0, len(l.order))
	for _, name := range l.order {
		all = append(all, *l.records[name])
	}
	l.mu.Unlock()

	if err := l.store.SaveAll(ctx, all); err != nil {
		return fmt.Errorf("recipehub: save metrics: %w", err)
	}
	return nil
}

// LoadAll merges persisted records into the ledger, applying the lazy
// reset to anything left over from a previous day before it becomes
// visible. For providers already registered, the registered quota wins
// and only the usage state is taken from the store.
func (l *Ledger) LoadAll(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	all, err := l.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("recipehub: load metrics: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, m := range all {
		if rec, ok := l.records[m.Provider]; ok {
			rec.UsedToday = m.UsedToday
			rec.LastReset = m.LastReset
			l.refresh(rec)
			continue
		}
		rec := m
		l.refresh(&rec)
		l.records[rec.Provider] = &rec
		l.order = append(l.order, rec.Provider)
	}
	return nil
}
