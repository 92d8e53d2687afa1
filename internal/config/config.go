package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPAddr string
	WSAddr   string

	RedisURL    string
	DatabaseURL string

	SessionTTL time.Duration

	MessagesLang string
	MessagesDir  string

	RenderSquareSize int

	// 0이면 무제한
	MaxBodyBytes int
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:         ":8080",
		WSAddr:           ":8081",
		SessionTTL:       24 * time.Hour,
		MessagesLang:     "en",
		RenderSquareSize: 64,
		MaxBodyBytes:     1 << 16,
	}

	if v := strings.TrimSpace(os.Getenv("DARKCHESS_HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("DARKCHESS_WS_ADDR")); v != "" {
		cfg.WSAddr = v
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("SESSION_TTL_SEC")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("SESSION_TTL_SEC must be a positive integer, got %q", v)
		}
		cfg.SessionTTL = time.Duration(n) * time.Second
	}

	if v := strings.TrimSpace(os.Getenv("MESSAGES_LANG")); v != "" {
		cfg.MessagesLang = strings.ToLower(v)
	}
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	if v := strings.TrimSpace(os.Getenv("RENDER_SQUARE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 16 && n <= 256 {
			cfg.RenderSquareSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("DARKCHESS_MAX_BODY_BYTES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxBodyBytes = n
		}
	}

	if cfg.HTTPAddr == cfg.WSAddr {
		return nil, errors.New("DARKCHESS_HTTP_ADDR and DARKCHESS_WS_ADDR must differ")
	}
	if cfg.RedisURL != "" && !strings.HasPrefix(cfg.RedisURL, "redis://") && !strings.HasPrefix(cfg.RedisURL, "rediss://") {
		return nil, errors.New("REDIS_URL must use the redis:// or rediss:// scheme")
	}

	return cfg, nil
}
