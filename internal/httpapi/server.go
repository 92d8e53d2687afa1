// Package httpapi serves the dark chess game API over fasthttp.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/dark-chess/internal/darkchess"
	"github.com/park285/dark-chess/internal/msgcat"
	"github.com/park285/dark-chess/internal/obslog"
	"github.com/park285/dark-chess/internal/render"
	"github.com/park285/dark-chess/internal/session"
	"github.com/park285/dark-chess/pkg/darkdto"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypePNG  = "image/png"
	apiCSP          = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
)

// Server wires HTTP routes to the session manager.
type Server struct {
	mgr      *session.Manager
	cat      *msgcat.Catalog
	renderer render.BoardRenderer
	maxBody  int

	srvMu sync.Mutex
	srv   *fasthttp.Server
}

type Option func(*Server)

// WithMaxBodyBytes caps request bodies; 0 keeps the fasthttp default.
func WithMaxBodyBytes(n int) Option {
	return func(s *Server) { s.maxBody = n }
}

// WithRenderer enables GET /game/{secret}/board.png.
func WithRenderer(r render.BoardRenderer) Option {
	return func(s *Server) { s.renderer = r }
}

func New(mgr *session.Manager, cat *msgcat.Catalog, opts ...Option) *Server {
	s := &Server{mgr: mgr, cat: cat}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve accepts connections on ln until Close.
func (s *Server) Serve(ln net.Listener) error {
	srv := &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "darkchess",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       10 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxRequestBodySize: s.maxBody,
		Logger:             fasthttpLogger{},
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()

	obslog.L().Info("http_listen", zap.String("addr", ln.Addr().String()))
	return srv.Serve(ln)
}

// ListenAndServe listens on addr and serves until Close.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Close attempts a graceful shutdown of the HTTP server.
func (s *Server) Close(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.ShutdownWithContext(ctx)
}

// Handler returns the API routes wrapped with the response security headers.
func (s *Server) Handler() fasthttp.RequestHandler {
	r := router.New()
	r.POST("/game/new", s.handleCreate)
	r.GET("/game/{secret}/join_secret", s.handleJoinSecret)
	r.POST("/game/{secret}/join", s.handleJoin)
	r.GET("/game/{secret}/move-validity/{xf}/{yf}/{xt}/{yt}", s.handleValidity)
	r.POST("/game/{secret}/move/{xf}/{yf}/{xt}/{yt}", s.handleMove)
	r.POST("/game/{secret}/promote/{x}/{y}/{kind}", s.handlePromote)
	r.GET("/game/{secret}/state", s.handleState)
	r.GET("/game/{secret}/board.png", s.handleBoardPNG)
	r.GET("/game/{secret}/reachable/{x}/{y}", s.handleReachable)
	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})

	// Allow 헤더는 router가 채운다
	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		s.writeProblem(ctx, fasthttp.StatusNotFound, "not_found", nil)
	}
	r.MethodNotAllowed = func(ctx *fasthttp.RequestCtx) {
		s.writeProblem(ctx, fasthttp.StatusMethodNotAllowed, "bad_request", map[string]any{"Detail": "method not allowed"})
	}

	h := r.Handler
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.Set("Content-Security-Policy", apiCSP)
		ctx.Response.Header.Set("Cross-Origin-Opener-Policy", "same-origin")
		h(ctx)
	}
}

func param(ctx *fasthttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}

// ---- handlers ----

func (s *Server) handleCreate(ctx *fasthttp.RequestCtx) {
	created, err := s.mgr.Create(ctx)
	if err != nil {
		s.writeError(ctx, "", err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, darkdto.CreateResponse{
		WhiteSecret:    created.WhiteSecret,
		BoardViewWhite: session.BoardDTO(created.View.Board),
	})
}

func (s *Server) handleJoinSecret(ctx *fasthttp.RequestCtx) {
	white := param(ctx, "secret")
	join, err := s.mgr.JoinSecret(ctx, white)
	switch {
	case err == nil:
		writeJSON(ctx, fasthttp.StatusOK, darkdto.JoinSecretResponse{JoinSecret: &join})
	case session.IsClientError(err):
		// 모르는 비밀키나 이미 사용된 조인 키는 null
		writeJSON(ctx, fasthttp.StatusOK, darkdto.JoinSecretResponse{})
	default:
		s.writeError(ctx, white, err)
	}
}

func (s *Server) handleJoin(ctx *fasthttp.RequestCtx) {
	join := param(ctx, "secret")
	joined, err := s.mgr.Join(ctx, join)
	switch {
	case err == nil:
		board := session.BoardDTO(joined.View.Board)
		writeJSON(ctx, fasthttp.StatusOK, darkdto.JoinResponse{BlackSecret: &joined.BlackSecret, BoardViewBlack: &board})
	case session.IsClientError(err):
		writeJSON(ctx, fasthttp.StatusNotFound, darkdto.JoinResponse{})
	default:
		s.writeError(ctx, join, err)
	}
}

func (s *Server) handleValidity(ctx *fasthttp.RequestCtx) {
	secret := param(ctx, "secret")
	c, ok := s.coords(ctx, "xf", "yf", "xt", "yt")
	if !ok {
		return
	}
	valid, err := s.mgr.ValidateMove(ctx, secret, c[0], c[1], c[2], c[3])
	if err != nil && !session.IsClientError(err) {
		s.writeError(ctx, secret, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, darkdto.ValidityResponse{Valid: valid && err == nil})
}

func (s *Server) handleMove(ctx *fasthttp.RequestCtx) {
	secret := param(ctx, "secret")
	c, ok := s.coords(ctx, "xf", "yf", "xt", "yt")
	if !ok {
		return
	}
	view, err := s.mgr.MakeMove(ctx, secret, c[0], c[1], c[2], c[3])
	if err != nil {
		s.writeError(ctx, secret, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, view.DTO())
}

func (s *Server) handlePromote(ctx *fasthttp.RequestCtx) {
	secret := param(ctx, "secret")
	c, ok := s.coords(ctx, "x", "y")
	if !ok {
		return
	}
	raw := param(ctx, "kind")
	kind, ok := darkchess.ParsePieceKind(strings.ToLower(raw))
	if !ok || !kind.Promotable() {
		s.writeProblem(ctx, fasthttp.StatusBadRequest, "invalid_promotion", map[string]any{"X": c[0], "Y": c[1], "Kind": raw})
		return
	}
	view, err := s.mgr.Promote(ctx, secret, c[0], c[1], kind)
	if errors.Is(err, session.ErrInvalidPromote) {
		s.writeProblem(ctx, fasthttp.StatusBadRequest, "invalid_promotion", map[string]any{"X": c[0], "Y": c[1], "Kind": kind})
		return
	}
	if err != nil {
		s.writeError(ctx, secret, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, view.DTO())
}

func (s *Server) handleState(ctx *fasthttp.RequestCtx) {
	secret := param(ctx, "secret")
	view, err := s.mgr.View(ctx, secret)
	if err != nil {
		s.writeError(ctx, secret, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, view.DTO())
}

func (s *Server) handleReachable(ctx *fasthttp.RequestCtx) {
	secret := param(ctx, "secret")
	c, ok := s.coords(ctx, "x", "y")
	if !ok {
		return
	}
	moves, err := s.mgr.Reachable(ctx, secret, c[0], c[1])
	if err != nil {
		s.writeError(ctx, secret, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, darkdto.ReachableResponse{Moves: session.MovesDTO(moves)})
}

func (s *Server) handleBoardPNG(ctx *fasthttp.RequestCtx) {
	secret := param(ctx, "secret")
	if s.renderer == nil {
		s.writeProblem(ctx, fasthttp.StatusNotFound, "not_found", nil)
		return
	}
	view, err := s.mgr.View(ctx, secret)
	if err != nil {
		s.writeError(ctx, secret, err)
		return
	}
	opts := render.Options{
		HUDHeader: s.cat.Text("check.view", map[string]any{"Us": view.Us, "Visible": view.Board.VisibleCount(), "Turn": view.WhosTurn}, "Dark Chess"),
		HUDTurn:   string(view.Status),
	}
	png, err := s.renderer.RenderPNG(ctx, view.Board, opts)
	if err != nil {
		s.writeError(ctx, secret, err)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType(contentTypePNG)
	ctx.Response.Header.Set("Cache-Control", "no-store")
	ctx.SetBody(png)
}

// ---- helpers ----

// coords parses the named path params as integers.
func (s *Server) coords(ctx *fasthttp.RequestCtx, names ...string) ([]int, bool) {
	out := make([]int, len(names))
	for i, name := range names {
		n, err := strconv.Atoi(param(ctx, name))
		if err != nil {
			s.writeProblem(ctx, fasthttp.StatusBadRequest, "bad_request", map[string]any{"Detail": "coordinates must be integers"})
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// writeError maps manager errors onto status codes and catalog texts.
func (s *Server) writeError(ctx *fasthttp.RequestCtx, secret string, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrJoinConsumed):
		s.writeProblem(ctx, fasthttp.StatusNotFound, "not_found", nil)
	case errors.Is(err, session.ErrNotYourTurn):
		var data map[string]any
		if view, verr := s.mgr.View(ctx, secret); verr == nil {
			data = map[string]any{"Turn": view.WhosTurn}
		}
		s.writeProblem(ctx, fasthttp.StatusConflict, "not_your_turn", data)
	case errors.Is(err, session.ErrInvalidMove):
		s.writeProblem(ctx, fasthttp.StatusBadRequest, "invalid_move", nil)
	case errors.Is(err, session.ErrGameOver):
		s.writeProblem(ctx, fasthttp.StatusConflict, "game_over", nil)
	case errors.Is(err, session.ErrConflict):
		s.writeProblem(ctx, fasthttp.StatusConflict, "conflict", nil)
	case errors.Is(err, session.ErrInvalidArgs):
		s.writeProblem(ctx, fasthttp.StatusBadRequest, "bad_request", map[string]any{"Detail": err.Error()})
	default:
		obslog.L().Error("http_internal_error", zap.ByteString("path", ctx.Path()), zap.Error(err))
		s.writeProblem(ctx, fasthttp.StatusInternalServerError, "internal", nil)
	}
}

func (s *Server) writeProblem(ctx *fasthttp.RequestCtx, status int, code string, data map[string]any) {
	fallback := strings.ReplaceAll(code, "_", " ")
	writeJSON(ctx, status, darkdto.Problem{
		Problem: s.cat.Text("problem."+code, data, fallback),
		Code:    code,
	})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		obslog.L().Error("http_encode_error", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType(contentTypeJSON)
	ctx.SetBody(payload)
}

type fasthttpLogger struct{}

func (fasthttpLogger) Printf(format string, args ...any) {
	obslog.L().Sugar().Warnf(format, args...)
}
