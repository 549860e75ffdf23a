package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"journal-backend/internal/common"
	"journal-backend/internal/db"
)

const devSessionSecret = "dev-secret-change-in-production"

type Config struct {
	Env  string
	Port string

	DB *db.Config

	LLMToken   string
	LLMModel   string
	LLMBaseURL string

	SessionSecret string
	SessionTTL    time.Duration
}

func LoadConfig() (*Config, error) {
	dbCfg, err := db.LoadConfig()
	if err != nil {
		return nil, err
	}

	token := os.Getenv("GEMINI_API_KEY")
	if token == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not found in environment variables")
	}

	ttl := 24 * time.Hour
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("invalid SESSION_TTL %q", raw)
		}
	}

	return &Config{
		Env:           getEnvWithDefault("ENV", "development"),
		Port:          getEnvWithDefault("PORT", "8080"),
		DB:            dbCfg,
		LLMToken:      token,
		LLMModel:      getEnvWithDefault("LLM_MODEL", common.DefaultLLMModel),
		LLMBaseURL:    getEnvWithDefault("LLM_BASE_URL", common.DefaultLLMBaseURL),
		SessionSecret: getEnvWithDefault("SESSION_SECRET", devSessionSecret),
		SessionTTL:    ttl,
	}, nil
}

func (c *Config) Print(logger *zap.Logger) {
	logger.Info("config loaded",
		zap.String("env", c.Env),
		zap.String("port", c.Port),
		zap.String("llm_model", c.LLMModel),
		zap.String("llm_base_url", c.LLMBaseURL),
		zap.Duration("session_ttl", c.SessionTTL))
	if c.SessionSecret == devSessionSecret {
		logger.Warn("using default SESSION_SECRET; set one with: openssl rand -hex 32")
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
