package apiclient

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/park285/dark-chess/internal/httpapi"
	"github.com/park285/dark-chess/internal/msgcat"
	"github.com/park285/dark-chess/internal/render"
	"github.com/park285/dark-chess/internal/session"
)

func serve(t *testing.T, h fasthttp.RequestHandler) *fasthttputil.InmemoryListener {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: h}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Shutdown() })
	return ln
}

func newAPIClient(t *testing.T) *Client {
	t.Helper()
	cat, err := msgcat.New("en", "")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	mgr := session.NewManager(session.NewMemoryStore())
	t.Cleanup(func() { _ = mgr.Close() })
	api := httpapi.New(mgr, cat, httpapi.WithRenderer(render.New(16)))
	ln := serve(t, api.Handler())
	return New("http://darkchess", WithDial(func(string) (net.Conn, error) { return ln.Dial() }), WithTimeout(5*time.Second))
}

func TestClientGameFlow(t *testing.T) {
	ctx := context.Background()
	c := newAPIClient(t)

	if err := c.Health(ctx); err != nil {
		t.Fatalf("Health: %v", err)
	}
	created, err := c.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	join, err := c.JoinSecret(ctx, created.WhiteSecret)
	if err != nil {
		t.Fatalf("JoinSecret: %v", err)
	}
	joined, err := c.Join(ctx, join)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := c.Join(ctx, join); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Join err = %v, want ErrNotFound", err)
	}
	if _, err := c.JoinSecret(ctx, created.WhiteSecret); !errors.Is(err, ErrNotFound) {
		t.Errorf("JoinSecret after join err = %v", err)
	}

	ok, err := c.ValidateMove(ctx, created.WhiteSecret, 3, 1, 3, 3)
	if err != nil || !ok {
		t.Fatalf("ValidateMove = %v, %v", ok, err)
	}
	view, err := c.Move(ctx, created.WhiteSecret, 3, 1, 3, 3)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if view.WhosTurn != "black" {
		t.Errorf("turn = %s", view.WhosTurn)
	}

	_, err = c.Move(ctx, created.WhiteSecret, 4, 1, 4, 3)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != fasthttp.StatusConflict || apiErr.Problem.Code != "not_your_turn" {
		t.Errorf("out-of-turn err = %v", err)
	}

	moves, err := c.Reachable(ctx, *joined.BlackSecret, 1, 7)
	if err != nil || len(moves) != 2 {
		t.Errorf("Reachable = %v, %v", moves, err)
	}
	if _, err := c.Promote(ctx, *joined.BlackSecret, 1, 7, "queen"); !errors.As(err, &apiErr) || apiErr.Problem.Code != "invalid_promotion" {
		t.Errorf("Promote err = %v", err)
	}
	png, err := c.BoardPNG(ctx, *joined.BlackSecret)
	if err != nil || len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Errorf("BoardPNG = %d bytes, %v", len(png), err)
	}
	if _, err := c.State(ctx, "missing"); !errors.As(err, &apiErr) || apiErr.Status != fasthttp.StatusNotFound {
		t.Errorf("State(missing) err = %v", err)
	}
}

func TestClientRetriesIdempotentCalls(t *testing.T) {
	var hits atomic.Int32
	ln := serve(t, func(ctx *fasthttp.RequestCtx) {
		if hits.Add(1) < 3 {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			ctx.SetBodyString(`{"problem":"busy"}`)
			return
		}
		ctx.SetBodyString(`{"valid":true}`)
	})
	c := New("http://x", WithDial(func(string) (net.Conn, error) { return ln.Dial() }), WithRetry(3))

	ok, err := c.ValidateMove(context.Background(), "s", 0, 1, 0, 2)
	if err != nil || !ok {
		t.Fatalf("ValidateMove = %v, %v", ok, err)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("hits = %d, want 3", got)
	}

	// mutations are sent once
	hits.Store(0)
	if _, err := c.Move(context.Background(), "s", 0, 1, 0, 2); err == nil {
		t.Errorf("Move succeeded on 503")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("Move hits = %d, want 1", got)
	}
}

func TestGamePathEscapes(t *testing.T) {
	if got := gamePath("a/b", "move", 1, 2, 3, 4); got != "/game/a%2Fb/move/1/2/3/4" {
		t.Errorf("gamePath = %s", got)
	}
}

func TestBackoffDuration(t *testing.T) {
	if backoffDuration(0) != 100*time.Millisecond || backoffDuration(2) != 200*time.Millisecond || backoffDuration(99) != 3200*time.Millisecond {
		t.Errorf("backoff = %v %v %v", backoffDuration(0), backoffDuration(2), backoffDuration(99))
	}
}
