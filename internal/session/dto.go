package session

import (
	"github.com/park285/dark-chess/internal/darkchess"
	"github.com/park285/dark-chess/pkg/darkdto"
)

// BoardDTO converts a fogged view into its wire shape.
func BoardDTO(v darkchess.BoardView) darkdto.BoardView {
	var out darkdto.BoardView
	for x := 0; x < darkchess.BoardSize; x++ {
		for y := 0; y < darkchess.BoardSize; y++ {
			switch c := v.Cells[x][y]; c.State {
			case darkchess.CellHidden:
				out[x][y] = darkdto.Cell{Hidden: true}
			case darkchess.CellOccupied:
				out[x][y] = darkdto.Cell{Piece: &darkdto.Piece{Player: string(c.Occupant.Player), Kind: string(c.Occupant.Kind)}}
			}
		}
	}
	return out
}

// DTO converts the view into the payload served to clients.
func (v *PlayerView) DTO() darkdto.PlayerViewAndStats {
	out := darkdto.PlayerViewAndStats{
		PlayerView:             BoardDTO(v.Board),
		Us:                     string(v.Us),
		WhosTurn:               string(v.WhosTurn),
		IsWaitingForPromotion:  v.WaitingForPromotion,
		IsOurKingUnderAttack:   v.OurKingUnderAttack,
		IsTheirKingUnderAttack: v.TheirKingUnderAttack,
		Draw:                   v.Draw,
		Status:                 string(v.Status),
		MoveCount:              v.MoveCount,
		OpponentJoined:         v.OpponentJoined,
	}
	if v.Winner != "" {
		w := string(v.Winner)
		out.Winner = &w
	}
	return out
}

// MovesDTO converts legal moves for the reachable endpoint.
func MovesDTO(moves []darkchess.Move) []darkdto.Move {
	out := make([]darkdto.Move, 0, len(moves))
	for _, m := range moves {
		out = append(out, darkdto.Move{XFrom: m.FromX, YFrom: m.FromY, XTo: m.ToX, YTo: m.ToY})
	}
	return out
}
