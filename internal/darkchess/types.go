// Package darkchess implements the rules of dark chess: a chess variant where each
// player sees only the cells their own pieces occupy or can reach.
package darkchess

import (
	"errors"
	"fmt"
)

// Player identifies a side.
type Player string

const (
	White Player = "white"
	Black Player = "black"
)

// Opponent returns the other side.
func (p Player) Opponent() Player {
	if p == White {
		return Black
	}
	return White
}

// Valid reports whether p is one of the two sides.
func (p Player) Valid() bool { return p == White || p == Black }

// ParsePlayer maps "white"/"w" and "black"/"b" to a Player.
func ParsePlayer(s string) (Player, bool) {
	switch s {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	}
	return "", false
}

// PieceKind is the closed set of chess piece types.
type PieceKind string

const (
	Pawn   PieceKind = "pawn"
	Rook   PieceKind = "rook"
	Bishop PieceKind = "bishop"
	Knight PieceKind = "knight"
	Queen  PieceKind = "queen"
	King   PieceKind = "king"
)

// Valid reports whether k is a known piece kind.
func (k PieceKind) Valid() bool {
	switch k {
	case Pawn, Rook, Bishop, Knight, Queen, King:
		return true
	}
	return false
}

// Promotable reports whether a pawn may be promoted into k.
func (k PieceKind) Promotable() bool {
	switch k {
	case Rook, Bishop, Knight, Queen:
		return true
	}
	return false
}

// ParsePieceKind accepts the lower-case kind names.
func ParsePieceKind(s string) (PieceKind, bool) {
	k := PieceKind(s)
	return k, k.Valid()
}

// Occupant is a single piece standing on a cell.
type Occupant struct {
	Player Player    `json:"player"`
	Kind   PieceKind `json:"piece"`
}

// IsZero reports whether o describes no piece.
func (o Occupant) IsZero() bool { return o.Kind == "" }

// Placement is the (player, kind, x, y) tuple a board is built from.
type Placement struct {
	Player Player    `json:"player"`
	Kind   PieceKind `json:"piece"`
	X      int       `json:"x"`
	Y      int       `json:"y"`
}

const (
	BoardSize = 8
	MaxPieces = 32
)

var (
	ErrTooManyPieces    = errors.New("no more than 32 pieces are expected")
	ErrInvalidPlacement = errors.New("invalid piece placement")
)

func (p Placement) validate() error {
	if !p.Player.Valid() {
		return fmt.Errorf("%w: unknown player %q", ErrInvalidPlacement, p.Player)
	}
	if !p.Kind.Valid() {
		return fmt.Errorf("%w: unknown piece %q", ErrInvalidPlacement, p.Kind)
	}
	if !inBounds(p.X, p.Y) {
		return fmt.Errorf("%w: cell (%d,%d) is off the board", ErrInvalidPlacement, p.X, p.Y)
	}
	return nil
}

func inBounds(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

// pawnDirection is the y step of a forward pawn move.
func pawnDirection(p Player) int {
	if p == White {
		return 1
	}
	return -1
}

func pawnStartRank(p Player) int {
	if p == White {
		return 1
	}
	return BoardSize - 2
}

// PromotionRank is the opponent's back rank, where p's pawns promote.
func PromotionRank(p Player) int {
	if p == White {
		return BoardSize - 1
	}
	return 0
}
