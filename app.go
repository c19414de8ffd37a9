package main

import (
	"context"
	"fmt"

	"github.com/SaiNageswarS/go-api-boot/config"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/opentargets-agent/agents"
	"github.com/SaiNageswarS/opentargets-agent/appconfig"
	"github.com/SaiNageswarS/opentargets-agent/cache"
	"github.com/SaiNageswarS/opentargets-agent/llm"
	"github.com/SaiNageswarS/opentargets-agent/memory"
	"github.com/SaiNageswarS/opentargets-agent/opentargets"
	"github.com/SaiNageswarS/opentargets-agent/tools"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type app struct {
	cfg           *appconfig.AppConfig
	team          *agents.Team
	conversations *memory.ConversationManager
	client        *opentargets.Client
	redis         *redis.Client
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
}

func loadConfig() (*appconfig.AppConfig, error) {
	cfg := &appconfig.AppConfig{}
	if err := config.LoadConfig(configPath, cfg); err != nil {
		return nil, fmt.Errorf("load %s: %w", configPath, err)
	}
	cfg.Defaults()
	return cfg, nil
}

// newApp wires models, the Open Targets client, session storage and the team.
// Without a redis_addr responses are not cached and sessions live in memory.
func newApp(ctx context.Context, cfg *appconfig.AppConfig) (*app, error) {
	big, err := llm.NewClient(cfg.LLMProvider, cfg.BigModel)
	if err != nil {
		return nil, fmt.Errorf("big model: %w", err)
	}
	mini, err := llm.NewClient(cfg.LLMProvider, cfg.MiniModel)
	if err != nil {
		return nil, fmt.Errorf("mini model: %w", err)
	}
	models := agents.Models{Big: big, Mini: mini}
	if cfg.ToolSelector != "" {
		if models.ToolSelector, err = llm.NewClient(cfg.LLMProvider, cfg.ToolSelector); err != nil {
			return nil, fmt.Errorf("tool selector model: %w", err)
		}
	}

	a := &app{cfg: cfg}

	var responseCache cache.Cache = cache.NoopCache{}
	var store memory.SessionStore = memory.NewInMemorySessionStore()
	if cfg.RedisAddr != "" {
		a.redis = cache.NewRedisClient(cache.RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		rc, err := cache.NewRedisCache(ctx, a.redis, "")
		if err != nil {
			a.Close()
			return nil, err
		}
		responseCache = rc
		store = memory.NewRedisSessionStore(a.redis, cfg.SessionTTL())
		logger.Info("Using Redis", zap.String("addr", cfg.RedisAddr))
	}

	opts := []opentargets.Option{
		opentargets.WithRateLimit(cfg.OpenTargetsRPS, cfg.OpenTargetsBurst),
		opentargets.WithCache(responseCache, cfg.CacheTTL()),
	}
	if cfg.OpenTargetsURL != "" {
		opts = append(opts, opentargets.WithURL(cfg.OpenTargetsURL))
	}
	a.client = opentargets.NewClient(opts...)

	spec, err := agents.DefaultTeamSpec()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.conversations = memory.NewConversationManager(store, cfg.MaxSessionMsgs)
	a.team, err = agents.BuildTeam(spec, agents.TeamOptions{
		Models:              models,
		Tools:               tools.NewRegistry(tools.OpenTargetsTools(a.client)...),
		ConversationManager: a.conversations,
		MaxTurns:            cfg.MaxTurns,
		MaxTokens:           cfg.MaxTokens,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	logger.Info("Team ready",
		zap.String("root", a.team.Root.Name()),
		zap.String("provider", cfg.LLMProvider),
		zap.String("model", big.GetModel()))
	return a, nil
}

func mustApp(ctx context.Context) *app {
	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to start agent team", zap.Error(err))
	}
	return a
}
