package apiclient

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/park285/dark-chess/internal/notify"
	"github.com/park285/dark-chess/internal/session"
	"github.com/park285/dark-chess/internal/wspush"
	"github.com/park285/dark-chess/pkg/darkdto"
)

func TestWatchReceivesViews(t *testing.T) {
	hub := notify.NewLocal()
	mgr := session.NewManager(session.NewMemoryStore(), session.WithNotifier(hub))
	srv := httptest.NewServer(wspush.NewServer(wspush.NewHandler(mgr, hub)).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	created, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	views := make(chan darkdto.PlayerViewAndStats, 4)
	done := make(chan error, 1)
	wctx, stop := context.WithCancel(ctx)
	go func() {
		done <- Watch(wctx, "ws"+strings.TrimPrefix(srv.URL, "http"), created.WhiteSecret, func(v darkdto.PlayerViewAndStats) { views <- v })
	}()

	first := <-views
	if first.Us != "white" || first.OpponentJoined {
		t.Errorf("first = %+v", first)
	}
	join, _ := mgr.JoinSecret(ctx, created.WhiteSecret)
	if _, err := mgr.Join(ctx, join); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if v := <-views; !v.OpponentJoined {
		t.Errorf("after join = %+v", v)
	}

	stop()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Watch err = %v, want context.Canceled", err)
	}
}
