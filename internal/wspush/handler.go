// Package wspush streams a player's view over a websocket whenever their game changes.
package wspush

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/dark-chess/internal/notify"
	"github.com/park285/dark-chess/internal/obslog"
	"github.com/park285/dark-chess/internal/session"
)

const (
	pathPrefix   = "/ws/"
	writeTimeout = 5 * time.Second
)

// Handler serves GET /ws/{secret}. The current view is sent on connect and again
// after each change notification for the session.
type Handler struct {
	mgr *session.Manager
	hub notify.Hub

	pingInterval time.Duration
}

func NewHandler(mgr *session.Manager, hub notify.Hub) *Handler {
	return &Handler{mgr: mgr, hub: hub, pingInterval: 30 * time.Second}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	secret := strings.Trim(strings.TrimPrefix(r.URL.Path, pathPrefix), "/")
	if secret == "" || strings.Contains(secret, "/") {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	sessionID, err := h.mgr.SessionID(ctx, secret)
	if err != nil {
		if session.IsClientError(err) {
			http.Error(w, "session not found by secret", http.StatusNotFound)
			return
		}
		obslog.L().Error("ws_lookup_error", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// 업그레이드 전에 구독해야 첫 뷰 이후의 변경을 놓치지 않는다
	sub, err := h.hub.Subscribe(ctx, sessionID)
	if err != nil {
		obslog.L().Error("ws_subscribe_error", zap.String("session_id", sessionID), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer sub.Close()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{CompressionMode: websocket.CompressionNoContextTakeover})
	if err != nil {
		obslog.L().Warn("ws_accept_error", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	obslog.L().Info("ws_connected", zap.String("session_id", sessionID))
	err = h.stream(conn.CloseRead(ctx), conn, secret, sub)
	switch {
	case err == nil:
		_ = conn.Close(websocket.StatusNormalClosure, "game over")
	case websocket.CloseStatus(err) != -1, errors.Is(err, context.Canceled):
		// client went away
	default:
		obslog.L().Warn("ws_stream_error", zap.String("session_id", sessionID), zap.Error(err))
		_ = conn.Close(websocket.StatusInternalError, "stream error")
	}
	obslog.L().Info("ws_disconnected", zap.String("session_id", sessionID))
}

// stream writes views until the game ends (nil) or the connection fails.
func (h *Handler) stream(ctx context.Context, conn *websocket.Conn, secret string, sub *notify.Subscription) error {
	type stamp struct {
		moves  int
		joined bool
	}
	last := stamp{moves: -1}
	send := func() (bool, error) {
		view, err := h.mgr.View(ctx, secret)
		if err != nil {
			return false, err
		}
		done := view.Status != session.StatusActive
		// 같은 상태를 두 번 보내지 않는다
		cur := stamp{moves: view.MoveCount, joined: view.OpponentJoined}
		if cur == last && !done {
			return false, nil
		}
		last = cur
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		defer cancel()
		return done, wsjson.Write(wctx, conn, view.DTO())
	}

	if done, err := send(); err != nil || done {
		return err
	}

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return err
			}
		case <-sub.C:
			if done, err := send(); err != nil || done {
				return err
			}
		}
	}
}

// Server is the websocket listener.
type Server struct {
	handler http.Handler

	srvMu sync.Mutex
	srv   *http.Server
}

func NewServer(h *Handler) *Server {
	mux := http.NewServeMux()
	mux.Handle(pathPrefix, h)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &Server{handler: mux}
}

// Handler exposes the routes for tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Listen serves on addr until Close.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	obslog.L().Info("ws_listen", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close attempts a graceful shutdown of the websocket server.
func (s *Server) Close(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
