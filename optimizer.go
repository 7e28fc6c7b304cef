package recipehub

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// defaultCallSpacing is the minimum gap between the start of two calls
// to the same provider.
const defaultCallSpacing = 100 * time.Millisecond

// conservativePct is the usage percentage at which
// StrategyConservativeQuota starts refusing calls.
const conservativePct = 90

// Optimizer is the single chokepoint for outbound provider calls.
// Every call passes through cache check, quota policy, rate limiting,
// execution, usage accounting and cache store, in that order.
//
// Each provider gets its own critical section (see providerGate), so
// quota observe-and-increment is exactly-once per provider while calls
// to distinct providers can overlap.
type Optimizer struct {
	ledger  *Ledger
	cache   Cache
	meter   Meter
	spacing time.Duration

	mu         sync.Mutex
	gates      map[string]*providerGate
	strategies map[string]OptimizationStrategy
}

// providerGate serializes calls to one provider. The mutex makes the
// quota check, the call and the usage increment one atomic sequence;
// the limiter enforces the minimum inter-call spacing. Both are only
// touched on the network path, never on a cache hit.
type providerGate struct {
	mu      sync.Mutex
	limiter *rate.Limiter
}

// OptimizerOption configures an Optimizer.
type OptimizerOption func(*Optimizer)

// WithMeter sets the meter.
func WithMeter(m Meter) OptimizerOption {
	return func(o *Optimizer) { o.meter = m }
}

// WithCallSpacing overrides the minimum inter-call spacing per
// provider. Zero or negative disables spacing.
func WithCallSpacing(d time.Duration) OptimizerOption {
	return func(o *Optimizer) { o.spacing = d }
}

// NewOptimizer creates an Optimizer over the given ledger and cache.
// A nil cache disables caching.
func NewOptimizer(ledger *Ledger, cache Cache, opts ...OptimizerOption) *Optimizer {
	o := &Optimizer{
		ledger:     ledger,
		cache:      cache,
		meter:      noopMeter{},
		spacing:    defaultCallSpacing,
		gates:      make(map[string]*providerGate),
		strategies: make(map[string]OptimizationStrategy),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetStrategy configures the quota strategy for a provider. May be
// changed at runtime.
func (o *Optimizer) SetStrategy(provider string, s OptimizationStrategy) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.strategies[provider] = s
}

// Strategy returns the configured strategy for a provider,
// StrategyBalanced for unknown names.
func (o *Optimizer) Strategy(provider string) OptimizationStrategy {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.strategies[provider]
}

func (o *Optimizer) gate(provider string) *providerGate {
	o.mu.Lock()
	defer o.mu.Unlock()

	g, ok := o.gates[provider]
	if !ok {
		lim := rate.NewLimiter(rate.Inf, 0)
		if o.spacing > 0 {
			lim = rate.NewLimiter(rate.Every(o.spacing), 1)
		}
		g = &providerGate{limiter: lim}
		o.gates[provider] = g
	}
	return g
}

// admit applies the provider's quota strategy. Caller holds the gate.
func (o *Optimizer) admit(provider string) error {
	m, ok := o.ledger.Metrics(provider)
	exceeded := !ok || m.UsedToday >= m.DailyQuota

	switch o.Strategy(provider) {
	case StrategyConservativeQuota:
		if ok && m.DailyQuota > 0 && m.UsedToday*100 >= m.DailyQuota*conservativePct {
			return fmt.Errorf("%w: %s at %d/%d calls", ErrQuotaNearExhausted, provider, m.UsedToday, m.DailyQuota)
		}
	case StrategyQuotaProtection:
		if exceeded {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, provider)
		}
	case StrategyFallback:
		if exceeded {
			if alt := o.ledger.RecommendProvider(); alt != "" && alt != provider {
				return &FallbackError{Original: provider, Alternative: alt}
			}
		}
	}
	return nil
}

// Call describes one optimized provider call.
type Call struct {
	Provider string
	CacheKey string        // empty disables caching for this call
	CacheTTL time.Duration // required for the result to be cached
	Cost     int           // quota units charged on success; defaults to 1
}

// Execute runs action through the optimizer. A cache hit returns
// immediately without touching the quota ledger or the rate limiter.
// On success the provider's usage is incremented by the call's cost and
// the result is cached if a key and TTL were given.
func Execute[T any](ctx context.Context, o *Optimizer, call Call, action func(context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := CachedAs[T](ctx, o.cache, call.CacheKey); ok {
		o.meter.OnResult(ResultEvent{Provider: call.Provider, Success: true, Cached: true})
		return v, nil
	}

	cost := call.Cost
	if cost <= 0 {
		cost = 1
	}

	g := o.gate(call.Provider)
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := o.admit(call.Provider); err != nil {
		return zero, err
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return zero, err
	}

	id := uuid.New().String()
	o.meter.OnCall(CallEvent{
		ID:        id,
		Provider:  call.Provider,
		Cost:      cost,
		Remaining: o.ledger.RemainingCalls(call.Provider),
	})

	start := time.Now()
	v, err := action(ctx)
	duration := time.Since(start)

	if err != nil {
		o.meter.OnResult(ResultEvent{ID: id, Provider: call.Provider, Duration: duration, Error: err})
		return zero, err
	}

	o.ledger.IncrementUsage(call.Provider, cost)
	o.meter.OnResult(ResultEvent{ID: id, Provider: call.Provider, Success: true, Duration: duration})
	StoreAs(ctx, o.cache, call.CacheKey, v, call.CacheTTL)
	return v, nil
}

// ExecuteList is Execute specialized for list-valued results.
func ExecuteList[T any](ctx context.Context, o *Optimizer, call Call, action func(context.Context) ([]T, error)) ([]T, error) {
	return Execute(ctx, o, call, action)
}

// BatchOptions configures BatchProcess.
type BatchOptions[K comparable] struct {
	BatchSize    int            // items per network call; defaults to 10
	KeyFn        func(K) string // per-item cache key; nil disables item caching
	CacheTTL     time.Duration
	CostPerBatch int // quota units per chunk; defaults to 1
}

// BatchProcess resolves items in chunks, charging quota once per chunk
// rather than per item. Items whose cache key already resolves are
// served from cache and never sent to the network; resolved items are
// cached individually so later single-item lookups hit too.
func BatchProcess[K comparable, V any](
	ctx context.Context,
	o *Optimizer,
	provider string,
	items []K,
	batchAction func(context.Context, []K) (map[K]V, error),
	opts BatchOptions[K],
) (map[K]V, error) {
	size := opts.BatchSize
	if size <= 0 {
		size = 10
	}

	out := make(map[K]V, len(items))
	var misses []K
	for _, item := range items {
		if opts.KeyFn != nil {
			if v, ok := CachedAs[V](ctx, o.cache, opts.KeyFn(item)); ok {
				out[item] = v
				continue
			}
		}
		misses = append(misses, item)
	}

	for start := 0; start < len(misses); start += size {
		chunk := misses[start:min(start+size, len(misses))]
		res, err := Execute(ctx, o, Call{Provider: provider, Cost: opts.CostPerBatch},
			func(ctx context.Context) (map[K]V, error) {
				return batchAction(ctx, chunk)
			})
		if err != nil {
			return out, err
		}
		for item, v := range res {
			out[item] = v
			if opts.KeyFn != nil {
				StoreAs(ctx, o.cache, opts.KeyFn(item), v, opts.CacheTTL)
			}
		}
	}
	return out, nil
}

// ExecuteMulti fans actions out across providers concurrently, each
// through Execute, and combines the non-nil results. Providers that
// error or return nothing are simply absent from the combiner's input;
// partial failure is not propagated at this layer. The combined value
// is cached under cachePrefix + "_aggregated" when a prefix is given.
func ExecuteMulti[T any, R any](
	ctx context.Context,
	o *Optimizer,
	actions map[string]func(context.Context) (T, error),
	combine func(map[string]T) R,
	cachePrefix string,
	ttl time.Duration,
) (R, error) {
	var aggKey string
	if cachePrefix != "" {
		aggKey = cachePrefix + "_aggregated"
	}
	if v, ok := CachedAs[R](ctx, o.cache, aggKey); ok {
		return v, nil
	}

	var mu sync.Mutex
	results := make(map[string]T, len(actions))

	g := new(errgroup.Group)
	for provider, action := range actions {
		provider, action := provider, action
		g.Go(func() error {
			var key string
			if cachePrefix != "" {
				key = cachePrefix + "_" + provider
			}
			v, err := Execute(ctx, o, Call{Provider: provider, CacheKey: key, CacheTTL: ttl}, action)
			if err != nil || isNilResult(v) {
				return nil
			}
			mu.Lock()
			results[provider] = v
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	combined := combine(results)
	StoreAs(ctx, o.cache, aggKey, combined, ttl)
	return combined, nil
}

func isNilResult(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
