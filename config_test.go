package recipehub_test

import (
	"os"
	"path/filepath"
	"testing"

	recipehub "github.com/DavidDuveau/RecipeHub-sub000"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipehub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SPOONACULAR_API_KEY", "sk-test-123")

	path := writeConfig(t, `
providers:
  - name: themealdb
    api_key: "1"
    daily_quota: 1000
  - name: spoonacular
    api_key: ${SPOONACULAR_API_KEY}
    daily_quota: 150
    strategy: fallback
priority:
  - spoonacular
  - themealdb
metrics_path: /var/lib/recipehub/metrics.json
`)

	cfg, err := recipehub.LoadConfig(path)
	require.NoError(t, err)

	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "themealdb", cfg.Providers[0].Name)
	assert.Equal(t, 1000, cfg.Providers[0].DailyQuota)
	assert.Equal(t, "sk-test-123", cfg.Providers[1].APIKey)
	assert.Equal(t, "fallback", cfg.Providers[1].Strategy)
	assert.Equal(t, []string{"spoonacular", "themealdb"}, cfg.Priority)
	assert.Equal(t, "/var/lib/recipehub/metrics.json", cfg.MetricsPath)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := recipehub.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "providers: [unclosed")
	_, err := recipehub.LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	valid := recipehub.ProviderConfig{Name: "themealdb", DailyQuota: 1000}

	tests := []struct {
		name    string
		cfg     recipehub.Config
		wantErr string
	}{
		{
			name:    "no providers",
			cfg:     recipehub.Config{},
			wantErr: "at least one provider",
		},
		{
			name: "missing name",
			cfg: recipehub.Config{Providers: []recipehub.ProviderConfig{
				{DailyQuota: 10},
			}},
			wantErr: "name is required",
		},
		{
			name: "duplicate provider",
			cfg: recipehub.Config{Providers: []recipehub.ProviderConfig{
				valid, valid,
			}},
			wantErr: "duplicate provider",
		},
		{
			name: "non-positive quota",
			cfg: recipehub.Config{Providers: []recipehub.ProviderConfig{
				{Name: "themealdb", DailyQuota: 0},
			}},
			wantErr: "daily_quota must be positive",
		},
		{
			name: "unknown strategy",
			cfg: recipehub.Config{Providers: []recipehub.ProviderConfig{
				{Name: "themealdb", DailyQuota: 10, Strategy: "yolo"},
			}},
			wantErr: "invalid strategy",
		},
		{
			name: "priority references unknown provider",
			cfg: recipehub.Config{
				Providers: []recipehub.ProviderConfig{valid},
				Priority:  []string{"spoonacular"},
			},
			wantErr: "unknown provider",
		},
		{
			name: "valid",
			cfg: recipehub.Config{
				Providers: []recipehub.ProviderConfig{valid},
				Priority:  []string{"themealdb"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    recipehub.OptimizationStrategy
		wantErr bool
	}{
		{"", recipehub.StrategyBalanced, false},
		{"balanced", recipehub.StrategyBalanced, false},
		{"conservative", recipehub.StrategyConservativeQuota, false},
		{"conservative_quota", recipehub.StrategyConservativeQuota, false},
		{"protection", recipehub.StrategyQuotaProtection, false},
		{"quota_protection", recipehub.StrategyQuotaProtection, false},
		{"Fallback", recipehub.StrategyFallback, false},
		{"  fallback  ", recipehub.StrategyFallback, false},
		{"yolo", recipehub.StrategyBalanced, true},
	}

	for _, tt := range tests {
		got, err := recipehub.ParseStrategy(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, recipehub.ErrInvalidArgument, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "balanced", recipehub.StrategyBalanced.String())
	assert.Equal(t, "conservative_quota", recipehub.StrategyConservativeQuota.String())
	assert.Equal(t, "quota_protection", recipehub.StrategyQuotaProtection.String())
	assert.Equal(t, "fallback", recipehub.StrategyFallback.String())
}
