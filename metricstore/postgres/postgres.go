// Package postgres provides a PostgreSQL-backed MetricsStore for the
// recipehub quota ledger.
//
// Metrics are stored one row per provider, upserted on save. This makes
// usage counters durable across restarts and shareable between
// processes pointed at the same database.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	recipehub "github.com/DavidDuveau/RecipeHub-sub000"
)

// Store is a PostgreSQL-backed MetricsStore.
type Store struct {
	pool        *pgxpool.Pool
	tablePrefix string
}

var _ recipehub.MetricsStore = (*Store)(nil)

// Option configures Store.
type Option func(*Store)

// WithTablePrefix sets the table name prefix (default "recipehub_").
func WithTablePrefix(prefix string) Option {
	return func(s *Store) { s.tablePrefix = prefix }
}

// New creates a new PostgreSQL-backed MetricsStore.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{
		pool:        pool,
		tablePrefix: "recipehub_",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) metricsTable() string { return s.tablePrefix + "usage_metrics" }

// EnsureSchema creates the required table if it doesn't exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	q := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			provider TEXT PRIMARY KEY,
			daily_quota INTEGER NOT NULL,
			used_today INTEGER NOT NULL DEFAULT 0,
			last_reset DATE NOT NULL
		);
	`, s.metricsTable())
	if _, err := s.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("recipehub/postgres: ensure schema: %w", err)
	}
	return nil
}

// Save upserts a single provider's record.
func (s *Store) Save(ctx context.Context, m recipehub.UsageMetrics) error {
	q := fmt.Sprintf(`
		INSERT INTO %s (provider, daily_quota, used_today, last_reset)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider) DO UPDATE SET
			daily_quota = EXCLUDED.daily_quota,
			used_today = EXCLUDED.used_today,
			last_reset = EXCLUDED.last_reset
	`, s.metricsTable())
	if _, err := s.pool.Exec(ctx, q, m.Provider, m.DailyQuota, m.UsedToday, m.LastReset); err != nil {
		return fmt.Errorf("recipehub/postgres: save %s: %w", m.Provider, err)
	}
	return nil
}

// SaveAll replaces the persisted set with the given records in one
// transaction.
func (s *Store) SaveAll(ctx context.Context, all []recipehub.UsageMetrics) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("recipehub/postgres: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, s.metricsTable())); err != nil {
		return fmt.Errorf("recipehub/postgres: clear: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO %s (provider, daily_quota, used_today, last_reset)
		VALUES ($1, $2, $3, $4)
	`, s.metricsTable())
	for _, m := range all {
		if _, err := tx.Exec(ctx, q, m.Provider, m.DailyQuota, m.UsedToday, m.LastReset); err != nil {
			return fmt.Errorf("recipehub/postgres: insert %s: %w", m.Provider, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("recipehub/postgres: commit: %w", err)
	}
	return nil
}

// LoadAll returns every persisted record.
func (s *Store) LoadAll(ctx context.Context) ([]recipehub.UsageMetrics, error) {
	q := fmt.Sprintf(`
		SELECT provider, daily_quota, used_today, last_reset
		FROM %s ORDER BY provider
	`, s.metricsTable())
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("recipehub/postgres: load: %w", err)
	}
	defer rows.Close()

	var out []recipehub.UsageMetrics
	for rows.Next() {
		var m recipehub.UsageMetrics
		if err := rows.Scan(&m.Provider, &m.DailyQuota, &m.UsedToday, &m.LastReset); err != nil {
			return nil, fmt.Errorf("recipehub/postgres: scan: %w", err)
		}
		out = append(out, m)
	}
	if rows.Err() != nil && rows.Err() != pgx.ErrNoRows {
		return nil, fmt.Errorf("recipehub/postgres: rows: %w", rows.Err())
	}
	return out, nil
}
