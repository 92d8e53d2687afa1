package session

import (
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/dark-chess/internal/darkchess"
)

// Board coordinates map onto algebraic squares with x running from the h-file
// (x=0) to the a-file (x=7) and y as the rank, so the default layout is the
// standard starting position.
func toSquare(x, y int) nchess.Square {
	return nchess.NewSquare(nchess.File(darkchess.BoardSize-1-x), nchess.Rank(y))
}

// SquareName returns the algebraic name of (x, y), e.g. "e1" for (3, 0).
func SquareName(x, y int) string {
	if x < 0 || y < 0 || x >= darkchess.BoardSize || y >= darkchess.BoardSize {
		return "-"
	}
	return toSquare(x, y).String()
}

// MoveText renders a move in coordinate notation ("e2e4"); promotions append the
// new piece letter ("a7a8q").
func MoveText(m darkchess.Move, promotion darkchess.PieceKind) string {
	var b strings.Builder
	b.WriteString(SquareName(m.FromX, m.FromY))
	b.WriteString(SquareName(m.ToX, m.ToY))
	if promotion != "" {
		b.WriteString(strings.ToLower(toPiece(darkchess.Occupant{Player: darkchess.White, Kind: promotion}).Type().String()))
	}
	return b.String()
}

// PositionFEN returns the piece placement and side to move of snap in FEN form.
func PositionFEN(snap darkchess.Snapshot) string {
	pieces := make(map[nchess.Square]nchess.Piece, len(snap.Pieces))
	for _, p := range snap.Pieces {
		pieces[toSquare(p.X, p.Y)] = toPiece(darkchess.Occupant{Player: p.Player, Kind: p.Kind})
	}
	side := "w"
	if snap.Turn == darkchess.Black {
		side = "b"
	}
	return nchess.NewBoard(pieces).String() + " " + side
}

func toPiece(o darkchess.Occupant) nchess.Piece {
	c := nchess.White
	if o.Player == darkchess.Black {
		c = nchess.Black
	}
	var t nchess.PieceType
	switch o.Kind {
	case darkchess.King:
		t = nchess.King
	case darkchess.Queen:
		t = nchess.Queen
	case darkchess.Rook:
		t = nchess.Rook
	case darkchess.Bishop:
		t = nchess.Bishop
	case darkchess.Knight:
		t = nchess.Knight
	case darkchess.Pawn:
		t = nchess.Pawn
	default:
		return nchess.NoPiece
	}
	return nchess.NewPiece(t, c)
}
