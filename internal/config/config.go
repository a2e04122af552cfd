package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the hazardlens server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AI       AIConfig
	Pipeline PipelineConfig
	Snapshot SnapshotConfig
}

type ServerConfig struct {
	Port            int
	Env             string
	WriteTimeout    time.Duration
	MaxUploadBytes  int64
	RateLimitPerMin int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	Gemini           GeminiConfig
	OpenAI           OpenAIConfig
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	ImageModel string
	BaseURL    string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// PipelineConfig bounds the per-image annotation work.
type PipelineConfig struct {
	MaxRecommendations int
	Concurrency        int
	MaxImageDim        int
}

type SnapshotConfig struct {
	Backend string
	Path    string
	TTL     time.Duration
}

// Part names a configuration section that can be validated on its own.
type Part int

const (
	PartDatabase Part = iota
	PartRedis
	PartAI
	PartSnapshot
)

var validProviders = map[string]bool{
	"gemini": true,
	"openai": true,
}

var validSnapshotBackends = map[string]bool{
	"file":  true,
	"redis": true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	return LoadParts(PartDatabase, PartRedis, PartAI, PartSnapshot)
}

// LoadParts is Load with validation restricted to the given sections.
// The CLI uses it to run the pipeline without a database or Redis.
func LoadParts(parts ...Part) (*Config, error) {
	// A missing .env is fine; real environment variables always win.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            envInt("HAZARDLENS_PORT", 8080),
			Env:             envString("HAZARDLENS_ENV", "development"),
			WriteTimeout:    envDuration("HAZARDLENS_WRITE_TIMEOUT", 5*time.Minute),
			MaxUploadBytes:  int64(envInt("HAZARDLENS_MAX_UPLOAD_BYTES", 20<<20)),
			RateLimitPerMin: envInt("HAZARDLENS_RATE_LIMIT_PER_MIN", 30),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		AI: AIConfig{
			Provider:         os.Getenv("AI_PROVIDER"),
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 120*time.Second),
			Gemini: GeminiConfig{
				APIKey:     os.Getenv("GEMINI_API_KEY"),
				Model:      envString("GEMINI_MODEL", "gemini-2.5-pro"),
				ImageModel: envString("GEMINI_IMAGE_MODEL", "gemini-2.0-flash-exp-image-generation"),
				BaseURL:    envString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			},
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   envString("OPENAI_MODEL", "gpt-4o"),
				BaseURL: envString("OPENAI_BASE_URL", ""),
			},
		},
		Pipeline: PipelineConfig{
			MaxRecommendations: envInt("PIPELINE_MAX_RECOMMENDATIONS", 3),
			Concurrency:        envInt("PIPELINE_CONCURRENCY", 3),
			MaxImageDim:        envInt("PIPELINE_MAX_IMAGE_DIM", 1024),
		},
		Snapshot: SnapshotConfig{
			Backend: envString("SNAPSHOT_BACKEND", "file"),
			Path:    envString("SNAPSHOT_PATH", "results_bounding_boxes.zip"),
			TTL:     envDuration("SNAPSHOT_TTL", 24*time.Hour),
		},
	}

	if err := cfg.validate(parts); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate(parts []Part) error {
	if c.Pipeline.MaxRecommendations < 1 {
		return fmt.Errorf("PIPELINE_MAX_RECOMMENDATIONS must be at least 1, got %d", c.Pipeline.MaxRecommendations)
	}
	if c.Pipeline.Concurrency < 1 {
		return fmt.Errorf("PIPELINE_CONCURRENCY must be at least 1, got %d", c.Pipeline.Concurrency)
	}
	if c.Pipeline.MaxImageDim < 16 {
		return fmt.Errorf("PIPELINE_MAX_IMAGE_DIM must be at least 16, got %d", c.Pipeline.MaxImageDim)
	}

	for _, p := range parts {
		var err error
		switch p {
		case PartDatabase:
			err = c.validateDatabase()
		case PartRedis:
			err = c.validateRedis()
		case PartAI:
			err = c.validateAI()
		case PartSnapshot:
			err = c.validateSnapshot()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func (c *Config) validateRedis() error {
	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	return nil
}

func (c *Config) validateAI() error {
	if c.AI.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of gemini, openai; got %q", c.AI.Provider)
	}

	if c.AI.Provider == "gemini" && c.AI.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER is gemini")
	}
	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}
	return nil
}

func (c *Config) validateSnapshot() error {
	if !validSnapshotBackends[c.Snapshot.Backend] {
		return fmt.Errorf("SNAPSHOT_BACKEND must be one of file, redis; got %q", c.Snapshot.Backend)
	}
	if c.Snapshot.Backend == "file" && c.Snapshot.Path == "" {
		return fmt.Errorf("SNAPSHOT_PATH is required when SNAPSHOT_BACKEND is file")
	}
	if c.Snapshot.Backend == "redis" && c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required when SNAPSHOT_BACKEND is redis")
	}
	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
