package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const envPrefix = "GRANDMASTER_"

type Config struct {
	ListenAddr     string        `env:"LISTEN_ADDR" envDefault:":8080" validate:"required"`
	DataDir        string        `env:"DATA_DIR" envDefault:"./data" validate:"required"`
	GamesDBPath    string        `env:"DB_PATH"`
	ConfigPath     string        `env:"CONFIG_PATH"`
	GeminiAPIKey   string        `env:"GEMINI_API_KEY"`
	AdminToken     string        `env:"ADMIN_TOKEN"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogDev         bool          `env:"LOG_DEV"`
	TableTTL       time.Duration `env:"TABLE_TTL" envDefault:"2h" validate:"gte=0"`
	ModelTimeout   time.Duration `env:"MODEL_TIMEOUT" envDefault:"0s" validate:"gte=0"`
	OTELEndpoint   string        `env:"OTEL_ENDPOINT" validate:"omitempty,url"`
}

// FromEnv loads an optional .env file, then reads GRANDMASTER_* variables.
// Paths left empty are placed under the data dir.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return parse()
}

func parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.GamesDBPath == "" {
		cfg.GamesDBPath = filepath.Join(cfg.DataDir, "grandmaster.sqlite")
	}
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = filepath.Join(cfg.DataDir, "ai.json")
	}
	// the browser build reads API_KEY; accept it too.
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("API_KEY")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
