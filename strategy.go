package recipehub

import (
	"fmt"
	"strings"
)

// OptimizationStrategy governs how the optimizer behaves once a
// provider's daily quota is exceeded or close to it.
type OptimizationStrategy int

const (
	// StrategyBalanced applies no restriction beyond quota tracking.
	// Calls proceed even past the quota; the over-count is accepted.
	StrategyBalanced OptimizationStrategy = iota

	// StrategyConservativeQuota refuses calls once usage reaches 90%
	// of the daily quota, before it is actually exhausted.
	StrategyConservativeQuota

	// StrategyQuotaProtection refuses calls once the quota is exhausted.
	StrategyQuotaProtection

	// StrategyFallback redirects exhausted calls to a better-provisioned
	// provider via a FallbackError instead of failing outright.
	StrategyFallback
)

func (s OptimizationStrategy) String() string {
	switch s {
	case StrategyBalanced:
		return "balanced"
	case StrategyConservativeQuota:
		return "conservative_quota"
	case StrategyQuotaProtection:
		return "quota_protection"
	case StrategyFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// ParseStrategy parses a strategy name as written in config files.
// The empty string parses to StrategyBalanced.
func ParseStrategy(name string) (OptimizationStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "balanced":
		return StrategyBalanced, nil
	case "conservative", "conservative_quota":
		return StrategyConservativeQuota, nil
	case "protection", "quota_protection":
		return StrategyQuotaProtection, nil
	case "fallback":
		return StrategyFallback, nil
	}
	return StrategyBalanced, fmt.Errorf("%w: unknown strategy %q", ErrInvalidArgument, name)
}
