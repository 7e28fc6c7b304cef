package meter

import recipehub "github.com/DavidDuveau/RecipeHub-sub000"

// NoopMeter is a meter that does nothing.
type NoopMeter struct{}

var _ recipehub.Meter = (*NoopMeter)(nil)

func (m *NoopMeter) OnCall(recipehub.CallEvent)     {}
func (m *NoopMeter) OnResult(recipehub.ResultEvent) {}
