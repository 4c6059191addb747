package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.False(t, cfg.UseMemory)
	assert.Equal(t, 150.0, cfg.SolUSDPrice)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "@every 5m", cfg.RefreshSchedule)

	assert.Equal(t, 1e-6, cfg.Engine.DustAbsoluteTokens)
	assert.Equal(t, 1.0, cfg.Engine.DustValueUSD)
	assert.Equal(t, 0.05, cfg.Engine.DustRelativeRatio)
	assert.Equal(t, 15*time.Minute, cfg.Engine.SniperWindow)
	assert.Len(t, cfg.Engine.Windows, 5)
	assert.Empty(t, cfg.Engine.IgnoredMints)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("USE_MEMORY", "true")
	t.Setenv("SOL_USD_PRICE", "200.5")
	t.Setenv("PNL_DUST_VALUE_USD", "2")
	t.Setenv("PNL_DUST_RATIO", "0.1")
	t.Setenv("PNL_SNIPER_WINDOW", "5m")
	t.Setenv("PNL_IGNORED_MINTS", " M1, ,M2 ")
	t.Setenv("CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.True(t, cfg.UseMemory)
	assert.Equal(t, 200.5, cfg.SolUSDPrice)
	assert.Equal(t, 2.0, cfg.Engine.DustValueUSD)
	assert.Equal(t, 0.1, cfg.Engine.DustRelativeRatio)
	assert.Equal(t, 5*time.Minute, cfg.Engine.SniperWindow)
	assert.Equal(t, []string{"M1", "M2"}, cfg.Engine.IgnoredMints)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"bad sniper window", "PNL_SNIPER_WINDOW", "soon"},
		{"bad cache ttl", "CACHE_TTL", "forever"},
		{"zero sol price", "SOL_USD_PRICE", 0.0},
		{"ratio above one", "PNL_DUST_RATIO", 1.5},
		{"negative dust", "PNL_DUST_ABSOLUTE", -1.0},
		{"missing dsn", "POSTGRES_DSN", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.val)
			_, err := FromViper(v)
			assert.Error(t, err)
		})
	}
}
