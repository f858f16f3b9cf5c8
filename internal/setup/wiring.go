package setup

import (
	"context"
	"fmt"
	"os"

	"github.com/promptops/experiment-hub/internal/completion"
	"github.com/promptops/experiment-hub/internal/config"
	"github.com/promptops/experiment-hub/internal/judge"
	"github.com/promptops/experiment-hub/internal/llm"
	"github.com/promptops/experiment-hub/internal/llm/bedrock"
	"github.com/promptops/experiment-hub/internal/llm/groq"
	"github.com/promptops/experiment-hub/internal/runner"
	"github.com/promptops/experiment-hub/internal/runstate"
	"github.com/promptops/experiment-hub/internal/store"
	"github.com/promptops/experiment-hub/internal/store/turso"
	"github.com/promptops/experiment-hub/internal/summary"
	"github.com/rs/zerolog"
)

type Config struct {
	DatabaseURL       string
	DatabaseAuthToken string
	GroqAPIKey        string
	GroqBaseURL       string
	LLMBackend        string
	AWSRegion         string
	RedisAddr         string
	RedisPassword     string
	APIPort           string
	LogLevel          string
}

type Dependencies struct {
	Store      store.Store
	Runner     *runner.Runner
	Judge      judge.Judge
	Tracker    runstate.Tracker
	Aggregator *summary.Aggregator
	Logger     *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DatabaseAuthToken: getEnv("DATABASE_AUTH_TOKEN", ""),
		GroqAPIKey:        getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:       getEnv("GROQ_BASE_URL", ""),
		LLMBackend:        getEnv("LLM_BACKEND", "groq"),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		APIPort:           getEnv("API_PORT", "18080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	// Database credentials are a hard startup requirement.
	db, err := turso.NewDB(cfg.DatabaseURL, cfg.DatabaseAuthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := turso.EnsureSchema(ctx, db); err != nil {
		return nil, err
	}

	providersCfg, err := config.LoadProvidersConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load providers config: %w", err)
	}

	modelClient, err := createModelClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	completionClient := completion.NewClient(modelClient, providersCfg, logger)

	factualityJudge, err := judge.NewFactualityJudge(completionClient, providersCfg.Evaluator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create judge: %w", err)
	}

	experimentStore := turso.NewStore(db)
	experimentRunner := runner.NewRunner(experimentStore, completionClient, factualityJudge, logger)

	var tracker runstate.Tracker = runstate.NopTracker{}
	if cfg.RedisAddr != "" {
		client, err := runstate.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, 3, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, runs proceed without a run lock")
		} else {
			tracker = runstate.NewRedisTracker(client, logger)
		}
	}

	return &Dependencies{
		Store:      experimentStore,
		Runner:     experimentRunner,
		Judge:      factualityJudge,
		Tracker:    tracker,
		Aggregator: summary.NewAggregator(logger),
		Logger:     logger,
	}, nil
}

func createModelClient(ctx context.Context, cfg *Config) (llm.ModelClient, error) {
	switch cfg.LLMBackend {
	case "bedrock":
		return bedrock.NewClient(ctx, cfg.AWSRegion)
	case "groq":
		return groq.NewClient(cfg.GroqAPIKey, cfg.GroqBaseURL)
	default:
		return nil, fmt.Errorf("unknown LLM backend %q", cfg.LLMBackend)
	}
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}
