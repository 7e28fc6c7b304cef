package meter

import (
	"log/slog"

	recipehub "github.com/DavidDuveau/RecipeHub-sub000"
)

// LogMeter logs optimizer events using slog.
type LogMeter struct {
	Logger *slog.Logger
}

var _ recipehub.Meter = (*LogMeter)(nil)

// NewLogMeter creates a LogMeter with the given logger.
// If logger is nil, slog.Default() is used.
func NewLogMeter(logger *slog.Logger) *LogMeter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMeter{Logger: logger}
}

func (m *LogMeter) OnCall(e recipehub.CallEvent) {
	m.Logger.Info("call",
		"id", e.ID,
		"provider", e.Provider,
		"cost", e.Cost,
		"remaining", e.Remaining,
	)
}

func (m *LogMeter) OnResult(e recipehub.ResultEvent) {
	switch {
	case e.Cached:
		m.Logger.Debug("cache_hit", "provider", e.Provider)
	case e.Success:
		m.Logger.Info("result",
			"id", e.ID,
			"provider", e.Provider,
			"duration_ms", e.Duration.Milliseconds(),
		)
	default:
		m.Logger.Warn("result_error",
			"id", e.ID,
			"provider", e.Provider,
			"duration_ms", e.Duration.Milliseconds(),
			"error", e.Error,
		)
	}
}
