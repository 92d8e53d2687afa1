// Package darkbuilder assembles the service from configuration.
package darkbuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/dark-chess/internal/config"
	"github.com/park285/dark-chess/internal/httpapi"
	"github.com/park285/dark-chess/internal/msgcat"
	"github.com/park285/dark-chess/internal/notify"
	"github.com/park285/dark-chess/internal/render"
	"github.com/park285/dark-chess/internal/session"
	"github.com/park285/dark-chess/internal/wspush"
)

type Deps struct {
	Manager  *session.Manager
	Hub      notify.Hub
	Catalog  *msgcat.Catalog
	Renderer *render.Renderer
	Repo     *session.Repository // nil without DATABASE_URL

	HTTP *httpapi.Server
	WS   *wspush.Server
}

// New wires stores and servers. Redis and Postgres are optional: without REDIS_URL
// sessions live in memory and notifications stay in-process.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cat, err := msgcat.New(cfg.MessagesLang, cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	var (
		store session.Store
		hub   notify.Hub
	)
	if strings.TrimSpace(cfg.RedisURL) != "" {
		rdb, err := session.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		store = session.NewRedisStore(rdb, cfg.SessionTTL)
		hub = notify.NewRedis(rdb)
		logger.Info("session_store", zap.String("kind", "redis"))
	} else {
		store = session.NewMemoryStore()
		hub = notify.NewLocal()
		logger.Info("session_store", zap.String("kind", "memory"))
	}

	opts := []session.Option{session.WithNotifier(hub)}

	var repo *session.Repository
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		repo, err = session.NewRepository(cfg.DatabaseURL)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("init repository: %w", err)
		}
		opts = append(opts, session.WithRecorder(repo))
	}

	mgr := session.NewManager(store, opts...)
	renderer := render.New(cfg.RenderSquareSize)

	return &Deps{
		Manager:  mgr,
		Hub:      hub,
		Catalog:  cat,
		Renderer: renderer,
		Repo:     repo,
		HTTP:     httpapi.New(mgr, cat, httpapi.WithRenderer(renderer), httpapi.WithMaxBodyBytes(cfg.MaxBodyBytes)),
		WS:       wspush.NewServer(wspush.NewHandler(mgr, hub)),
	}, nil
}

// Close releases the hub, the store and the repository.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	if d.Hub != nil {
		errs = append(errs, d.Hub.Close())
	}
	if d.Manager != nil {
		errs = append(errs, d.Manager.Close())
	}
	if d.Repo != nil {
		errs = append(errs, d.Repo.Close())
	}
	return errors.Join(errs...)
}
