package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port           string   `yaml:"port"`
	PostgresDSN    string   `yaml:"postgres_dsn"`
	MongoURI       string   `yaml:"mongo_uri"`
	MongoDB        string   `yaml:"mongo_db"`
	RedisAddr      string   `yaml:"redis_addr"`
	RedisPassword  string   `yaml:"redis_password"`
	MinioEndpoint  string   `yaml:"minio_endpoint"`
	MinioAccessKey string   `yaml:"minio_access_key"`
	MinioSecretKey string   `yaml:"minio_secret_key"`
	MinioBucket    string   `yaml:"minio_bucket"`
	MinioUseSSL    bool     `yaml:"minio_use_ssl"`
	JWTSecret      string   `yaml:"jwt_secret"`
	TokenTTL       Duration `yaml:"token_ttl"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Duration lets yaml files say "100h" instead of nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	v, err := time.ParseDuration(n.Value)
	if err != nil {
		return fmt.Errorf("duration %q: %w", n.Value, err)
	}
	*d = Duration(v)
	return nil
}

func defaults() *Config {
	return &Config{
		Port:           "5000",
		MongoDB:        "devconnector",
		RedisAddr:      "redis:6379",
		MinioEndpoint:  "minio:9000",
		MinioBucket:    "avatars",
		TokenTTL:       Duration(100 * time.Hour),
		AllowedOrigins: []string{"http://localhost:3000"},
	}
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE (if
// set), then environment variables, each layer overriding the previous one.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Port = getenv("PORT", cfg.Port)
	cfg.PostgresDSN = getenv("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.MongoURI = getenv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDB = getenv("MONGO_DB", cfg.MongoDB)
	cfg.RedisAddr = getenv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getenv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.MinioEndpoint = getenv("MINIO_ENDPOINT", cfg.MinioEndpoint)
	cfg.MinioAccessKey = getenv("MINIO_ACCESS_KEY", cfg.MinioAccessKey)
	cfg.MinioSecretKey = getenv("MINIO_SECRET_KEY", cfg.MinioSecretKey)
	cfg.MinioBucket = getenv("MINIO_BUCKET", cfg.MinioBucket)
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		cfg.MinioUseSSL = v == "true"
	}
	cfg.JWTSecret = getenv("JWT_SECRET", cfg.JWTSecret)
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = Duration(ttl)
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
