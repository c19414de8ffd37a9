package appconfig

import (
	"time"

	"github.com/SaiNageswarS/go-api-boot/config"
)

type AppConfig struct {
	config.BootConfig `ini:",extends"`

	LLMProvider  string `env:"LLM-PROVIDER" ini:"llm_provider"`
	BigModel     string `env:"BIG-MODEL" ini:"big_model"`
	MiniModel    string `env:"MINI-MODEL" ini:"mini_model"`
	ToolSelector string `ini:"tool_selector_model"`

	OpenTargetsURL   string  `env:"OPENTARGETS-URL" ini:"opentargets_url"`
	OpenTargetsRPS   float64 `ini:"opentargets_rps"`
	OpenTargetsBurst int     `ini:"opentargets_burst"`

	RedisAddr       string `env:"REDIS-ADDR" ini:"redis_addr"`
	RedisPassword   string `env:"REDIS-PASSWORD" ini:"redis_password"`
	RedisDB         int    `ini:"redis_db"`
	CacheTTLMinutes int    `ini:"cache_ttl_minutes"`
	SessionTTLHours int    `ini:"session_ttl_hours"`
	MaxSessionMsgs  int    `ini:"max_session_msgs"`

	MaxTurns  int `ini:"max_turns"`
	MaxTokens int `ini:"max_tokens"`

	Port           int `env:"PORT" ini:"port"`
	RequestsPerMin int `ini:"requests_per_min"`
}

// Defaults fills zero values left by a partial config.ini.
func (c *AppConfig) Defaults() {
	if c.LLMProvider == "" {
		c.LLMProvider = "gemini"
	}
	if c.OpenTargetsRPS == 0 {
		c.OpenTargetsRPS = 5
	}
	if c.OpenTargetsBurst == 0 {
		c.OpenTargetsBurst = 5
	}
	if c.CacheTTLMinutes == 0 {
		c.CacheTTLMinutes = 60
	}
	if c.SessionTTLHours == 0 {
		c.SessionTTLHours = 24
	}
	if c.MaxSessionMsgs == 0 {
		c.MaxSessionMsgs = 20
	}
	if c.MaxTurns == 0 {
		c.MaxTurns = 5
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 8192
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.RequestsPerMin == 0 {
		c.RequestsPerMin = 30
	}
}

func (c *AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}
