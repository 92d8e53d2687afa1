package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/dark-chess/internal/darkchess"
	"github.com/park285/dark-chess/internal/obslog"
)

// ResultRecorder persists finished games.
type ResultRecorder interface {
	SaveResult(ctx context.Context, s *Session) error
}

// Notifier announces that a session changed.
type Notifier interface {
	Publish(ctx context.Context, sessionID string) error
}

// Manager exposes the application operations on sessions: creating, joining,
// moving, promoting and viewing. Secrets are the only credentials.
type Manager struct {
	store    Store
	recorder ResultRecorder
	notifier Notifier
	now      func() time.Time
}

type Option func(*Manager)

// WithRecorder wires a repository for finished game results.
func WithRecorder(r ResultRecorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithNotifier wires change notifications.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewManager(store Store, opts ...Option) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	m := &Manager{store: store, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Close() error {
	if m == nil || m.store == nil {
		return nil
	}
	return m.store.Close()
}

// Create starts a new session; the creator plays white and invites black.
func (m *Manager) Create(ctx context.Context) (*Created, error) {
	now := m.now()
	s := &Session{
		ID:          uuid.NewString(),
		WhiteSecret: uuid.NewString(),
		JoinSecret:  uuid.NewString(),
		BlackSecret: uuid.NewString(),
		Game:        darkchess.NewGameState().Snapshot(),
		Moves:       []MoveRecord{},
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.store.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	view, err := buildView(s, darkchess.White)
	if err != nil {
		return nil, err
	}
	obslog.L().Info("darkchess_session_create", zap.String("session_id", s.ID))
	return &Created{SessionID: s.ID, WhiteSecret: s.WhiteSecret, View: view}, nil
}

// JoinSecret returns the join secret to white only.
func (m *Manager) JoinSecret(ctx context.Context, whiteSecret string) (string, error) {
	s, err := m.find(ctx, whiteSecret)
	if err != nil {
		return "", err
	}
	if s.WhiteSecret != whiteSecret {
		return "", ErrNotFound
	}
	if s.JoinSecret == "" {
		return "", ErrJoinConsumed
	}
	return s.JoinSecret, nil
}

// Join hands black its secret in exchange for the one-shot join secret.
// Player secrets are refused, so white cannot pass its own secret on.
func (m *Manager) Join(ctx context.Context, joinSecret string) (*Joined, error) {
	s, err := m.find(ctx, joinSecret)
	if err != nil {
		return nil, err
	}
	if s.JoinSecret != joinSecret {
		return nil, ErrNotFound
	}
	updated, err := m.store.Update(ctx, s.ID, func(cur *Session) error {
		// 동시에 두 명이 조인하면 먼저 반영된 쪽만 성공
		if cur.JoinSecret != joinSecret {
			return ErrJoinConsumed
		}
		cur.JoinSecret = ""
		cur.UpdatedAt = m.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	view, err := buildView(updated, darkchess.Black)
	if err != nil {
		return nil, err
	}
	obslog.L().Info("darkchess_session_join", zap.String("session_id", updated.ID))
	m.publish(ctx, updated.ID)
	return &Joined{SessionID: updated.ID, BlackSecret: updated.BlackSecret, View: view}, nil
}

// ValidateMove reports whether the secret's holder may make the move now.
func (m *Manager) ValidateMove(ctx context.Context, secret string, xFrom, yFrom, xTo, yTo int) (bool, error) {
	s, player, err := m.findPlayer(ctx, secret)
	if err != nil {
		return false, err
	}
	if s.Status != StatusActive {
		return false, nil
	}
	state, err := darkchess.Restore(s.Game)
	if err != nil {
		return false, err
	}
	if state.WhosTurn() != player {
		return false, nil
	}
	return state.IsMoveValid(player, xFrom, yFrom, xTo, yTo, false), nil
}

// MakeMove validates and applies a move, then returns the mover's view.
func (m *Manager) MakeMove(ctx context.Context, secret string, xFrom, yFrom, xTo, yTo int) (*PlayerView, error) {
	s, player, err := m.findPlayer(ctx, secret)
	if err != nil {
		return nil, err
	}
	mv := darkchess.Move{FromX: xFrom, FromY: yFrom, ToX: xTo, ToY: yTo}

	updated, err := m.store.Update(ctx, s.ID, func(cur *Session) error {
		state, err := m.activeState(cur, player)
		if err != nil {
			return err
		}
		if !state.IsMoveValid(player, xFrom, yFrom, xTo, yTo, false) {
			return ErrInvalidMove
		}
		if !state.MakeMove(xFrom, yFrom, xTo, yTo) {
			return ErrInvalidMove
		}
		cur.Moves = append(cur.Moves, MoveRecord{Player: player, Move: mv, At: m.now()})
		m.settle(cur, state)
		return nil
	})
	if err != nil {
		return nil, err
	}

	obslog.L().Info("darkchess_move",
		zap.String("session_id", updated.ID),
		zap.String("player", string(player)),
		zap.String("move", MoveText(mv, "")),
		zap.String("turn", string(updated.Game.Turn)),
		zap.Bool("awaiting_promotion", updated.Game.AwaitingPromotion),
		zap.String("status", string(updated.Status)),
	)
	m.afterChange(ctx, updated)
	return buildView(updated, player)
}

// Promote replaces the mover's pawn on the last rank while a promotion is pending.
func (m *Manager) Promote(ctx context.Context, secret string, x, y int, kind darkchess.PieceKind) (*PlayerView, error) {
	s, player, err := m.findPlayer(ctx, secret)
	if err != nil {
		return nil, err
	}

	updated, err := m.store.Update(ctx, s.ID, func(cur *Session) error {
		state, err := m.activeState(cur, player)
		if err != nil {
			return err
		}
		if !state.AwaitingPromotion() || !state.Promote(player, x, y, kind) {
			return ErrInvalidPromote
		}
		cur.Moves = append(cur.Moves, MoveRecord{
			Player:    player,
			Move:      darkchess.Move{FromX: x, FromY: y, ToX: x, ToY: y},
			Promotion: kind,
			At:        m.now(),
		})
		m.settle(cur, state)
		return nil
	})
	if err != nil {
		return nil, err
	}

	obslog.L().Info("darkchess_promote",
		zap.String("session_id", updated.ID),
		zap.String("player", string(player)),
		zap.String("square", SquareName(x, y)),
		zap.String("kind", string(kind)),
		zap.String("status", string(updated.Status)),
	)
	m.afterChange(ctx, updated)
	return buildView(updated, player)
}

// View returns everything the secret's holder is allowed to know.
func (m *Manager) View(ctx context.Context, secret string) (*PlayerView, error) {
	s, player, err := m.findPlayer(ctx, secret)
	if err != nil {
		return nil, err
	}
	return buildView(s, player)
}

// Reachable lists legal destinations of the holder's piece on (x, y).
func (m *Manager) Reachable(ctx context.Context, secret string, x, y int) ([]darkchess.Move, error) {
	s, player, err := m.findPlayer(ctx, secret)
	if err != nil {
		return nil, err
	}
	if s.Status != StatusActive {
		return []darkchess.Move{}, nil
	}
	state, err := darkchess.Restore(s.Game)
	if err != nil {
		return nil, err
	}
	moves := state.LegalDestinations(player, x, y)
	if moves == nil {
		moves = []darkchess.Move{}
	}
	return moves, nil
}

// SessionID resolves a player secret to its session id.
func (m *Manager) SessionID(ctx context.Context, secret string) (string, error) {
	s, _, err := m.findPlayer(ctx, secret)
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

func (m *Manager) find(ctx context.Context, secret string) (*Session, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrNotFound
	}
	s, err := m.store.FindBySecret(ctx, secret)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Manager) findPlayer(ctx context.Context, secret string) (*Session, darkchess.Player, error) {
	s, err := m.find(ctx, secret)
	if err != nil {
		return nil, "", err
	}
	player, ok := s.playerFor(strings.TrimSpace(secret))
	if !ok {
		return nil, "", ErrNotFound
	}
	return s, player, nil
}

// activeState restores cur's game and checks that player is the one to act.
func (m *Manager) activeState(cur *Session, player darkchess.Player) (*darkchess.GameState, error) {
	if cur.Status != StatusActive {
		return nil, ErrGameOver
	}
	state, err := darkchess.Restore(cur.Game)
	if err != nil {
		return nil, err
	}
	if state.WhosTurn() != player {
		return nil, ErrNotYourTurn
	}
	return state, nil
}

// settle stores the new position on cur and closes the session on checkmate or
// stalemate.
func (m *Manager) settle(cur *Session, state *darkchess.GameState) {
	cur.Game = state.Snapshot()
	cur.UpdatedAt = m.now()

	switch {
	case state.IsCheckmated(darkchess.White):
		cur.Status = StatusFinished
		cur.Winner = darkchess.Black
		cur.Outcome = OutcomeCheckmate
	case state.IsCheckmated(darkchess.Black):
		cur.Status = StatusFinished
		cur.Winner = darkchess.White
		cur.Outcome = OutcomeCheckmate
	case !state.AwaitingPromotion() && state.IsStalemated(state.WhosTurn()):
		cur.Status = StatusDraw
		cur.Outcome = OutcomeStalemate
	}
}

func (m *Manager) afterChange(ctx context.Context, s *Session) {
	if s.Status != StatusActive {
		_ = m.persistIfFinal(ctx, s)
	}
	m.publish(ctx, s.ID)
}

// persistIfFinal saves the final game result to the recorder if available.
func (m *Manager) persistIfFinal(ctx context.Context, s *Session) error {
	if m.recorder == nil || s == nil || s.Status == StatusActive {
		return nil
	}
	if err := m.recorder.SaveResult(ctx, s); err != nil {
		obslog.L().Error("darkchess_result_persist_error", zap.String("session_id", s.ID), zap.String("outcome", s.Outcome), zap.Error(err))
		return err
	}
	obslog.L().Info("darkchess_result_persist",
		zap.String("session_id", s.ID),
		zap.String("outcome", s.Outcome),
		zap.String("winner", string(s.Winner)),
	)
	return nil
}

func (m *Manager) publish(ctx context.Context, sessionID string) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Publish(ctx, sessionID); err != nil {
		obslog.L().Warn("darkchess_notify_error", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func buildView(s *Session, us darkchess.Player) (*PlayerView, error) {
	state, err := darkchess.Restore(s.Game)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", s.ID, err)
	}
	return &PlayerView{
		SessionID:            s.ID,
		Us:                   us,
		Board:                state.BoardView(us),
		WhosTurn:             state.WhosTurn(),
		WaitingForPromotion:  state.AwaitingPromotion(),
		OurKingUnderAttack:   state.IsKingUnderAttack(us),
		TheirKingUnderAttack: state.IsKingUnderAttack(us.Opponent()),
		Winner:               s.Winner,
		Draw:                 s.Status == StatusDraw,
		Status:               s.Status,
		MoveCount:            len(s.Moves),
		OpponentJoined:       s.JoinSecret == "",
	}, nil
}

// IsClientError reports whether err stems from the request rather than the system.
func IsClientError(err error) bool {
	for _, target := range []error{ErrNotFound, ErrNotYourTurn, ErrInvalidMove, ErrInvalidPromote, ErrGameOver, ErrJoinConsumed, ErrInvalidArgs} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
