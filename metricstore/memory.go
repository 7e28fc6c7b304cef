// Package metricstore provides MetricsStore implementations for the
// quota ledger.
package metricstore

import (
	"context"
	"sync"

	recipehub "github.com/DavidDuveau/RecipeHub-sub000"
)

// Memory is an in-memory MetricsStore, for tests and for running
// without durability.
type Memory struct {
	mu      sync.Mutex
	records map[string]recipehub.UsageMetrics
}

var _ recipehub.MetricsStore = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]recipehub.UsageMetrics)}
}

func (s *Memory) Save(_ context.Context, m recipehub.UsageMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[m.Provider] = m
	return nil
}

func (s *Memory) SaveAll(_ context.Context, all []recipehub.UsageMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]recipehub.UsageMetrics, len(all))
	for _, m := range all {
		s.records[m.Provider] = m
	}
	return nil
}

func (s *Memory) LoadAll(context.Context) ([]recipehub.UsageMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recipehub.UsageMetrics, 0, len(s.records))
	for _, m := range s.records {
		out = append(out, m)
	}
	return out, nil
}
