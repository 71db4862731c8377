package configstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	DefaultModel        = "gemini-3-flash-preview"
	DefaultTemperature  = 0.1
	DefaultMoveDelayMS  = 600
	DefaultShareBaseURL = "https://chess-3d.app/"
)

// Config holds the runtime AI opponent settings, editable from /admin.
type Config struct {
	Model          string    `json:"model"`
	Temperature    float32   `json:"temperature"`
	ThinkingBudget int32     `json:"thinking_budget"`
	MoveDelayMS    int       `json:"move_delay_ms"`
	ShareBaseURL   string    `json:"share_base_url"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (c Config) MoveDelay() time.Duration {
	return time.Duration(c.MoveDelayMS) * time.Millisecond
}

type Store struct {
	path string
	mu   sync.Mutex
	cfg  Config
}

func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	store := &Store{path: path}
	if err := store.loadOrInit(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) GetConfig(ctx context.Context) (Config, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg, nil
}

func (s *Store) UpdateConfig(ctx context.Context, cfg Config) error {
	_ = ctx
	if err := validate(cfg); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg = normalize(cfg)
	cfg.UpdatedAt = time.Now().UTC()
	s.cfg = cfg
	return s.saveLocked()
}

func (s *Store) loadOrInit() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.cfg = defaultConfig()
			return s.saveLocked()
		}
		return fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, &s.cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	s.cfg = normalize(s.cfg)
	return nil
}

func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func validate(cfg Config) error {
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", cfg.Temperature)
	}
	if cfg.ThinkingBudget < 0 {
		return fmt.Errorf("thinking budget must not be negative")
	}
	if cfg.MoveDelayMS < 0 {
		return fmt.Errorf("move delay must not be negative")
	}
	return nil
}

// normalize fills empty fields. A zero temperature, budget or delay is a
// valid setting and is kept.
func normalize(cfg Config) Config {
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	cfg.ShareBaseURL = strings.TrimSpace(cfg.ShareBaseURL)
	if cfg.ShareBaseURL == "" {
		cfg.ShareBaseURL = DefaultShareBaseURL
	}
	return cfg
}

func defaultConfig() Config {
	return Config{
		Model:          DefaultModel,
		Temperature:    DefaultTemperature,
		ThinkingBudget: 0,
		MoveDelayMS:    DefaultMoveDelayMS,
		ShareBaseURL:   DefaultShareBaseURL,
		UpdatedAt:      time.Now().UTC(),
	}
}
