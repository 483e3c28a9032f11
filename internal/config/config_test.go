package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "auraprocure", cfg.Logger.ServiceName)
	assert.Equal(t, 4, cfg.Engine.MaxConcurrentMissions)
	assert.Equal(t, 2*time.Minute, cfg.Engine.StageTimeout)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, int64(10000), cfg.Approval.GeneralThreshold)
	assert.InDelta(t, 0.08, cfg.Documents.TaxRate, 1e-9)
	assert.False(t, cfg.LLM.Enabled(), "no API key means the enhancement is disabled")
}

func TestNewConfigFromViper(t *testing.T) {
	t.Run("overrides defaults from viper values", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("engine.max_concurrent_missions", 2)
		v.Set("approval.general_threshold", 25000)
		v.Set("logger.level", "debug")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, 2, cfg.Engine.MaxConcurrentMissions)
		assert.Equal(t, int64(25000), cfg.Approval.GeneralThreshold)
		assert.Equal(t, "debug", cfg.Logger.Level)
	})

	t.Run("reads the API key from the environment", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "test-key")
		v := viper.New()
		SetDefaults(v)

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.True(t, cfg.LLM.Enabled())
		assert.Equal(t, "test-key", cfg.LLM.APIKey)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("engine.max_concurrent_missions", 0)

		_, err := NewConfigFromViper(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_concurrent_missions")
	})

	t.Run("rejects tax rate of one or more", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("documents.tax_rate", 1.0)

		_, err := NewConfigFromViper(v)
		require.Error(t, err)
	})
}

func TestGetFallsBackToDefaults(t *testing.T) {
	Set(nil)
	cfg := Get()
	require.NotNil(t, cfg)
	assert.Equal(t, "auraprocure", cfg.Logger.ServiceName)
}
