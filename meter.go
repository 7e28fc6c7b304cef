package recipehub

import "time"

// Meter observes optimizer traffic for monitoring/logging.
type Meter interface {
	// OnCall is called when a call is admitted past the quota policy.
	OnCall(event CallEvent)

	// OnResult is called when a call completes or is served from cache.
	OnResult(event ResultEvent)
}

// CallEvent describes an admitted provider call.
type CallEvent struct {
	ID        string
	Provider  string
	Cost      int
	Remaining int
}

// ResultEvent describes the outcome of a provider call.
type ResultEvent struct {
	ID       string
	Provider string
	Success  bool
	Cached   bool
	Duration time.Duration
	Error    error
}

// noopMeter is a meter that does nothing.
type noopMeter struct{}

func (noopMeter) OnCall(CallEvent)     {}
func (noopMeter) OnResult(ResultEvent) {}
