package darkchess

// MakeMove applies a move without re-validating it; callers route through
// IsMoveValid first. It is a no-op (returning false) when a coordinate is off the
// board, the source is empty, or a promotion is pending.
func (s *GameState) MakeMove(xFrom, yFrom, xTo, yTo int) bool {
	if !inBounds(xFrom, yFrom) || !inBounds(xTo, yTo) {
		return false
	}
	if s.awaitingPromotion || s.board.empty(xFrom, yFrom) {
		return false
	}
	s.applyMove(xFrom, yFrom, xTo, yTo)
	return true
}

// applyMove moves the occupant and updates the latch or the turn.
func (s *GameState) applyMove(xFrom, yFrom, xTo, yTo int) {
	piece := s.board.cells[xFrom][yFrom]
	s.board.cells[xTo][yTo] = piece
	s.board.cells[xFrom][yFrom] = Occupant{}

	if piece.Kind == Pawn && yTo == PromotionRank(piece.Player) {
		s.awaitingPromotion = true
		return
	}
	s.turn = s.turn.Opponent()
}

// Promote replaces player's pawn on its promotion rank with kind. It fails for
// any other cell content, rank, or for kind pawn/king.
func (s *GameState) Promote(player Player, x, y int, kind PieceKind) bool {
	if !kind.Promotable() {
		return false
	}
	piece, ok := s.board.At(x, y)
	if !ok || piece.Kind != Pawn || piece.Player != player {
		return false
	}
	if y != PromotionRank(player) {
		return false
	}
	s.board.cells[x][y] = Occupant{Player: player, Kind: kind}
	s.awaitingPromotion = false
	s.turn = s.turn.Opponent()
	return true
}
