package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/tatianab/gamespec/internal/models"
)

// Config holds the application configuration.
type Config struct {
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	Model            string `env:"GAMESPEC_MODEL" envDefault:"gemini-2.5-flash"`
	SaveDir          string `env:"GAMESPEC_SAVE_DIR" envDefault:".saves"`
	MaxContinuations int    `env:"GAMESPEC_MAX_CONTINUATIONS" envDefault:"2"`
	MaxOutputTokens  int32  `env:"GAMESPEC_MAX_OUTPUT_TOKENS" envDefault:"8192"`
	CacheSize        int    `env:"GAMESPEC_CACHE_SIZE" envDefault:"128"`
	DefaultGenre     string `env:"GAMESPEC_DEFAULT_GENRE" envDefault:"platformer"`
	LogLevel         string `env:"GAMESPEC_LOG_LEVEL" envDefault:"info"`
}

var ErrNoAPIKey = errors.New("GEMINI_API_KEY environment variable is not set")

// LoadConfig loads the configuration from the environment, after reading a
// .env file in the working directory if there is one.
func LoadConfig() (*Config, error) {
	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if _, ok := models.ParseGameType(cfg.DefaultGenre); !ok {
		return nil, fmt.Errorf("GAMESPEC_DEFAULT_GENRE: unsupported game type %q", cfg.DefaultGenre)
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("GAMESPEC_LOG_LEVEL: %w", err)
	}
	if cfg.MaxContinuations < 0 {
		return nil, fmt.Errorf("GAMESPEC_MAX_CONTINUATIONS must not be negative, got %d", cfg.MaxContinuations)
	}
	return &cfg, nil
}

// Genre returns the configured default game type.
func (c *Config) Genre() models.GameType {
	gt, ok := models.ParseGameType(c.DefaultGenre)
	if !ok {
		return models.Platformer
	}
	return gt
}

// Level returns the configured log level.
func (c *Config) Level() zapcore.Level {
	l, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// RequireAPIKey returns ErrNoAPIKey unless a Gemini key is configured.
func (c *Config) RequireAPIKey() error {
	if c.GeminiAPIKey == "" {
		return ErrNoAPIKey
	}
	return nil
}
