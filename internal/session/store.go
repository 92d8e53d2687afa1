package session

import (
	"context"
	"time"
)

// Errors
var (
	ErrInvalidArgs    = errf("invalid arguments")
	ErrNotFound       = errf("session not found by secret")
	ErrNotYourTurn    = errf("not your turn")
	ErrInvalidMove    = errf("invalid move")
	ErrInvalidPromote = errf("invalid promotion")
	ErrGameOver       = errf("game is over")
	// 조인 비밀키는 한 번만 사용 가능
	ErrJoinConsumed = errf("join secret already used")
	ErrConflict     = errf("session changed concurrently")
	ErrDuplicate    = errf("session already exists")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error         { return staticErr(s) }

// DefaultTTL bounds how long an idle session is kept.
const DefaultTTL = 24 * time.Hour

// Store persists sessions and resolves them by any of their secrets.
//
// Update runs fn against the current copy under the store's serialization and
// writes the result back; when fn returns an error nothing is written. Secrets that
// disappear from the session (the consumed join secret) stop resolving.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	FindBySecret(ctx context.Context, secret string) (*Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
	Close() error
}
