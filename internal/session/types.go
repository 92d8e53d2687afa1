package session

import (
	"time"

	"github.com/park285/dark-chess/internal/darkchess"
)

// Status represents a dark chess session lifecycle state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusFinished Status = "FINISHED"
	StatusDraw     Status = "DRAW"
)

// Outcome tokens stored on finished sessions.
const (
	OutcomeCheckmate = "checkmate"
	OutcomeStalemate = "stalemate"
)

// MoveRecord is one applied move or promotion in a session's log.
type MoveRecord struct {
	Player    darkchess.Player    `json:"player"`
	Move      darkchess.Move      `json:"move"`
	Promotion darkchess.PieceKind `json:"promotion,omitempty"`
	At        time.Time           `json:"at"`
}

// Session is the persisted state of one game between two secret holders.
// The join secret is cleared once black has joined.
type Session struct {
	ID          string             `json:"id"`
	WhiteSecret string             `json:"white_secret"`
	JoinSecret  string             `json:"join_secret,omitempty"`
	BlackSecret string             `json:"black_secret"`
	Game        darkchess.Snapshot `json:"game"`
	Moves       []MoveRecord       `json:"moves"`
	Status      Status             `json:"status"`
	Winner      darkchess.Player   `json:"winner,omitempty"`
	Outcome     string             `json:"outcome,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Game.Pieces != nil {
		c.Game.Pieces = make([]darkchess.Placement, len(s.Game.Pieces))
		copy(c.Game.Pieces, s.Game.Pieces)
	}
	if s.Moves != nil {
		c.Moves = make([]MoveRecord, len(s.Moves))
		copy(c.Moves, s.Moves)
	}
	return &c
}

// Secrets returns every secret currently indexing the session.
func (s *Session) Secrets() []string {
	out := make([]string, 0, 3)
	for _, v := range []string{s.WhiteSecret, s.JoinSecret, s.BlackSecret} {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// playerFor maps a player secret to its side. Join secrets are not player secrets.
func (s *Session) playerFor(secret string) (darkchess.Player, bool) {
	switch {
	case secret == "":
		return "", false
	case secret == s.WhiteSecret:
		return darkchess.White, true
	case secret == s.BlackSecret:
		return darkchess.Black, true
	}
	return "", false
}

// PlayerView tells one player what is going on in their game.
type PlayerView struct {
	SessionID            string              `json:"session_id"`
	Us                   darkchess.Player    `json:"us"`
	Board                darkchess.BoardView `json:"board"`
	WhosTurn             darkchess.Player    `json:"whos_turn"`
	WaitingForPromotion  bool                `json:"is_waiting_for_promotion"`
	OurKingUnderAttack   bool                `json:"is_our_king_under_attack"`
	TheirKingUnderAttack bool                `json:"is_their_king_under_attack"`
	Winner               darkchess.Player    `json:"winner,omitempty"`
	Draw                 bool                `json:"draw"`
	Status               Status              `json:"status"`
	MoveCount            int                 `json:"move_count"`
	OpponentJoined       bool                `json:"opponent_joined"`
}

// Created is returned to the creator of a session.
type Created struct {
	SessionID   string
	WhiteSecret string
	View        *PlayerView
}

// Joined is returned to the player joining with the join secret.
type Joined struct {
	SessionID   string
	BlackSecret string
	View        *PlayerView
}
