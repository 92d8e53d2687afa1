package darkbuilder

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/park285/dark-chess/internal/config"
	"github.com/park285/dark-chess/internal/notify"
)

func baseConfig() *config.AppConfig {
	return &config.AppConfig{HTTPAddr: ":0", WSAddr: ":1", MessagesLang: "en", RenderSquareSize: 32}
}

func TestNewInMemory(t *testing.T) {
	deps, err := New(context.Background(), baseConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer deps.Close()

	if _, ok := deps.Hub.(*notify.Local); !ok {
		t.Errorf("hub = %T, want *notify.Local", deps.Hub)
	}
	if deps.Repo != nil {
		t.Errorf("repository wired without DATABASE_URL")
	}
	if deps.Renderer.SquareSize() != 32 {
		t.Errorf("square size = %d", deps.Renderer.SquareSize())
	}
	if _, err := deps.Manager.Create(context.Background()); err != nil {
		t.Errorf("Create: %v", err)
	}
}

func TestNewWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"

	deps, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer deps.Close()

	if _, ok := deps.Hub.(*notify.Redis); !ok {
		t.Errorf("hub = %T, want *notify.Redis", deps.Hub)
	}
	created, err := deps.Manager.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !mr.Exists("darkchess:session:" + created.SessionID) {
		t.Errorf("session not stored in redis")
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(context.Background(), nil, nil); err == nil {
		t.Errorf("nil config accepted")
	}
	cfg := baseConfig()
	cfg.MessagesLang = "zz"
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Errorf("unknown language accepted")
	}
	cfg = baseConfig()
	cfg.RedisURL = "redis://127.0.0.1:1/0"
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Errorf("unreachable redis accepted")
	}
}
