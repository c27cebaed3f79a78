// Package config reads the server configuration from the environment. A
// .env file in the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/handsomefox/reelscout/internal/chat"
	"github.com/handsomefox/reelscout/internal/env"
	"github.com/handsomefox/reelscout/internal/kv"
)

const (
	defaultPort   = "8080"
	defaultDBPath = "./data/reelscout.db"
)

type Config struct {
	Env  env.Environment
	Port string

	TMDB TMDBConfig
	KV   kv.Config
	Chat chat.Config

	CORSOrigins []string
	StaticDir   string
	LogLevel    string
	LogFile     string
}

type TMDBConfig struct {
	APIKey    string
	ReadToken string
	BaseURL   string
	ImageBase string
	Language  string
}

// Load reads the configuration using os.Getenv.
func Load() (*Config, error) {
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Env:  env.Parse(get(env.Key, string(env.Local))),
		Port: get("PORT", defaultPort),
		TMDB: TMDBConfig{
			APIKey:    get("TMDB_API_KEY", ""),
			ReadToken: get("TMDB_API_READ_TOKEN", ""),
			BaseURL:   get("TMDB_BASE_URL", ""),
			ImageBase: get("TMDB_IMAGE_BASE", ""),
			Language:  get("TMDB_LANGUAGE", ""),
		},
		KV: kv.Config{
			Backend:       strings.ToLower(get("STORE_BACKEND", kv.BackendSQLite)),
			DBPath:        get("DB_PATH", defaultDBPath),
			RedisAddr:     get("REDIS_ADDR", "127.0.0.1:6379"),
			RedisPassword: get("REDIS_PASSWORD", ""),
		},
		StaticDir: get("STATIC_DIR", ""),
		LogLevel:  get("LOG_LEVEL", "info"),
		LogFile:   get("LOG_FILE", ""),
	}

	if cfg.TMDB.APIKey == "" && cfg.TMDB.ReadToken == "" {
		return nil, errors.New("TMDB_API_KEY or TMDB_API_READ_TOKEN is required")
	}

	var err error
	if cfg.KV.RedisDB, err = strconv.Atoi(get("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	switch cfg.KV.Backend {
	case kv.BackendSQLite, kv.BackendRedis:
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", kv.BackendSQLite, kv.BackendRedis, cfg.KV.Backend)
	}

	provider, apiKey := chat.ResolveCredentials(get("CHAT_PROVIDER", ""), getenv)
	cfg.Chat = chat.Config{
		Provider: provider,
		APIKey:   apiKey,
		BaseURL:  get("CHAT_BASE_URL", ""),
		Model:    get("CHAT_MODEL", ""),
		SiteURL:  get("CHAT_SITE_URL", ""),
		SiteName: get("CHAT_SITE_NAME", "ReelScout"),
	}
	if cfg.Chat.Timeout, err = time.ParseDuration(get("CHAT_TIMEOUT", chat.DefaultTimeout.String())); err != nil {
		return nil, fmt.Errorf("CHAT_TIMEOUT: %w", err)
	}
	if cfg.Chat.MirrorLanguage, err = strconv.ParseBool(get("CHAT_MIRROR_LANGUAGE", "true")); err != nil {
		return nil, fmt.Errorf("CHAT_MIRROR_LANGUAGE: %w", err)
	}

	for _, origin := range strings.Split(get("CORS_ORIGINS", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	return cfg, nil
}
