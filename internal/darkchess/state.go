package darkchess

import "fmt"

// GameState owns one board, the side to move and the promotion latch.
// It is not safe for concurrent use; callers serialize access per game.
type GameState struct {
	board             Board
	turn              Player
	awaitingPromotion bool
}

// Option customizes a new GameState.
type Option func(*GameState)

// WithBoard starts the game from a copy of b instead of the default layout.
func WithBoard(b *Board) Option {
	return func(s *GameState) {
		if b != nil {
			s.board = *b
		}
	}
}

// WithTurn sets the side to move.
func WithTurn(p Player) Option {
	return func(s *GameState) {
		if p.Valid() {
			s.turn = p
		}
	}
}

// NewGameState returns a game with the default layout and white to move.
func NewGameState(opts ...Option) *GameState {
	s := &GameState{board: *NewDefaultBoard(), turn: White}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Board returns a copy of the current board.
func (s *GameState) Board() *Board { return s.board.Clone() }

// WhosTurn returns the side to move.
func (s *GameState) WhosTurn() Player { return s.turn }

// AwaitingPromotion reports whether a pawn on the far rank must be promoted first.
func (s *GameState) AwaitingPromotion() bool { return s.awaitingPromotion }

// virtual returns a deep copy for a single hypothetical query.
func (s *GameState) virtual() *GameState {
	c := *s
	return &c
}

// Snapshot is the lossless external form of a GameState.
type Snapshot struct {
	Pieces            []Placement `json:"pieces"`
	Turn              Player      `json:"turn"`
	AwaitingPromotion bool        `json:"awaiting_promotion"`
}

// Snapshot captures the current state.
func (s *GameState) Snapshot() Snapshot {
	return Snapshot{
		Pieces:            s.board.Placements(),
		Turn:              s.turn,
		AwaitingPromotion: s.awaitingPromotion,
	}
}

// Restore rebuilds a GameState from a snapshot.
func Restore(snap Snapshot) (*GameState, error) {
	if !snap.Turn.Valid() {
		return nil, fmt.Errorf("restore game state: unknown turn %q", snap.Turn)
	}
	b, err := NewBoard(snap.Pieces)
	if err != nil {
		return nil, fmt.Errorf("restore game state: %w", err)
	}
	return &GameState{board: *b, turn: snap.Turn, awaitingPromotion: snap.AwaitingPromotion}, nil
}
