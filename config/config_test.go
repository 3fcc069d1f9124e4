package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ProviderOpenAI, cfg.ModelProvider)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.LineUseFlex)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", ProviderAnthropic)
	t.Setenv("LINE_USE_FLEX", "true")
	t.Setenv("LIFF_ID", "1234567890-abcdefgh")
	t.Setenv("BASE_URL", "https://chat.example.com")

	cfg := Load()

	assert.Equal(t, ProviderAnthropic, cfg.ModelProvider)
	assert.True(t, cfg.LineUseFlex)
	assert.Equal(t, "1234567890-abcdefgh", cfg.LIFFID)
	assert.Equal(t, "https://chat.example.com", cfg.BaseURL)
}

func TestGetBool_Garbage(t *testing.T) {
	t.Setenv("LINE_USE_FLEX", "maybe")
	cfg := Load()
	assert.False(t, cfg.LineUseFlex)
}
