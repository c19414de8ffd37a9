package appconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	cfg := &AppConfig{}
	cfg.Defaults()

	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, 5.0, cfg.OpenTargetsRPS)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, time.Hour, cfg.CacheTTL())
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL())
	assert.Equal(t, 20, cfg.MaxSessionMsgs)
}

func TestDefaultsKeepExplicitValues(t *testing.T) {
	cfg := &AppConfig{LLMProvider: "anthropic", Port: 9000, CacheTTLMinutes: 5, MaxTurns: 2}
	cfg.Defaults()

	assert.Equal(t, "anthropic", cfg.LLMProvider)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 2, cfg.MaxTurns)
}
