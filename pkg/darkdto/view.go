// Package darkdto holds the JSON shapes exchanged with dark chess clients.
package darkdto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// HiddenMarker is the JSON value of a cell outside the player's visibility.
const HiddenMarker = "is_dark"

// Piece is an occupant of a visible cell.
type Piece struct {
	Player string `json:"player"`
	Kind   string `json:"piece"`
}

// Cell encodes as null (visible and empty), "is_dark" (hidden) or a Piece.
type Cell struct {
	Hidden bool
	Piece  *Piece
}

func (c Cell) MarshalJSON() ([]byte, error) {
	switch {
	case c.Hidden:
		return json.Marshal(HiddenMarker)
	case c.Piece == nil:
		return []byte("null"), nil
	default:
		return json.Marshal(c.Piece)
	}
}

func (c *Cell) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*c = Cell{}
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s != HiddenMarker {
			return fmt.Errorf("unknown cell marker %q", s)
		}
		*c = Cell{Hidden: true}
		return nil
	default:
		var p Piece
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		*c = Cell{Piece: &p}
		return nil
	}
}

// BoardView is indexed [x][y].
type BoardView [8][8]Cell

// PlayerViewAndStats tells one player what is going on.
type PlayerViewAndStats struct {
	PlayerView             BoardView `json:"player_view"`
	Us                     string    `json:"us"`
	WhosTurn               string    `json:"whos_turn"`
	IsWaitingForPromotion  bool      `json:"is_waiting_for_promotion"`
	IsOurKingUnderAttack   bool      `json:"is_our_king_under_attack"`
	IsTheirKingUnderAttack bool      `json:"is_their_king_under_attack"`
	Winner                 *string   `json:"winner"`
	Draw                   bool      `json:"draw"`
	Status                 string    `json:"status"`
	MoveCount              int       `json:"move_count"`
	OpponentJoined         bool      `json:"opponent_joined"`
}
