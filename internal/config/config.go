package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type GeminiConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	EmbeddingModel string `yaml:"embedding_model"`
}

type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type EmbeddingConfig struct {
	Provider   string       `yaml:"provider"` // "gemini" or "ollama"
	Dimensions int          `yaml:"dimensions"`
	Ollama     OllamaConfig `yaml:"ollama"`
}

type RetryConfig struct {
	MaxAttempts int     `yaml:"max_attempts"`
	BaseDelay   float64 `yaml:"base_delay_seconds"`
	Factor      float64 `yaml:"growth_factor"`
	MaxJitter   float64 `yaml:"max_jitter_seconds"`
}

type RAGConfig struct {
	MaxDocs      int    `yaml:"max_docs"`
	IndexDir     string `yaml:"index_dir"`
	IndexName    string `yaml:"index_name"`
	ImageRoot    string `yaml:"image_root"`    // filesystem root of rendered page images
	ImageMount   string `yaml:"image_mount"`   // public URL prefix the server mounts image_root on
	StaticPrefix string `yaml:"static_prefix"` // fallback URL prefix for paths outside image_root
}

type CalendarConfig struct {
	TokenFile string `yaml:"token_file"`
	Timezone  string `yaml:"timezone"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retry     RetryConfig     `yaml:"retry"`
	RAG       RAGConfig       `yaml:"rag"`
	Calendar  CalendarConfig  `yaml:"calendar"`
	Server    ServerConfig    `yaml:"server"`
}

// LoadConfig reads the YAML config file and overlays secrets from the
// environment. A .env file in the working directory is honored when present.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Gemini.EmbeddingModel == "" {
		c.Gemini.EmbeddingModel = "text-embedding-004"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "gemini"
	}
	if c.Embedding.Dimensions == 0 {
		c.Embedding.Dimensions = 768
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 6
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = 1
	}
	if c.Retry.Factor == 0 {
		c.Retry.Factor = 1.5
	}
	if c.Retry.MaxJitter == 0 {
		c.Retry.MaxJitter = 0.3
	}
	if c.RAG.MaxDocs == 0 {
		c.RAG.MaxDocs = 5
	}
	if c.RAG.IndexDir == "" {
		c.RAG.IndexDir = "./indexes"
	}
	if c.RAG.IndexName == "" {
		c.RAG.IndexName = "chunks"
	}
	if c.RAG.ImageRoot == "" {
		c.RAG.ImageRoot = "data/processed"
	}
	if c.RAG.ImageMount == "" {
		c.RAG.ImageMount = "/manual-pages"
	}
	if c.RAG.StaticPrefix == "" {
		c.RAG.StaticPrefix = "/static"
	}
	if c.Calendar.TokenFile == "" {
		c.Calendar.TokenFile = "token.json"
	}
	if c.Calendar.Timezone == "" {
		c.Calendar.Timezone = "Asia/Seoul"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8100"
	}
}
