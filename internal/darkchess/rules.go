package darkchess

// IsMoveValid reports whether mover may move the piece on (xFrom, yFrom) to (xTo, yTo).
// With ignoreSelfCheck the move is judged on geometry and position alone, which is
// what attack scans and visibility need; otherwise a move that leaves the mover's own
// king attacked is rejected as well. Invalid input yields false, never a panic.
func (s *GameState) IsMoveValid(mover Player, xFrom, yFrom, xTo, yTo int, ignoreSelfCheck bool) bool {
	if !inBounds(xFrom, yFrom) || !inBounds(xTo, yTo) {
		return false
	}
	if xFrom == xTo && yFrom == yTo {
		return false
	}
	piece, ok := s.board.At(xFrom, yFrom)
	if !ok || piece.Player != mover {
		return false
	}
	if target, ok := s.board.At(xTo, yTo); ok && target.Player == mover {
		return false
	}
	// 승격 대기 중에는 실제 수만 막는다. 공격/시야 스캔은 가상 판정이므로 통과.
	if !ignoreSelfCheck && s.awaitingPromotion {
		return false
	}
	if !pieceAllows(&s.board, piece, xFrom, yFrom, xTo, yTo) {
		return false
	}
	if ignoreSelfCheck {
		return true
	}
	v := s.virtual()
	v.applyMove(xFrom, yFrom, xTo, yTo)
	return !v.IsKingUnderAttack(mover)
}

// pieceAllows applies the per-kind movement rule. Shared preconditions (ownership,
// bounds, distinct cells, no own piece on the target) are already checked.
func pieceAllows(b *Board, piece Occupant, xFrom, yFrom, xTo, yTo int) bool {
	dx := xTo - xFrom
	dy := yTo - yFrom
	adx, ady := abs(dx), abs(dy)

	switch piece.Kind {
	case Knight:
		return (adx == 2 && ady == 1) || (adx == 1 && ady == 2)
	case Rook:
		return straightLine(adx, ady) && pathClear(b, xFrom, yFrom, xTo, yTo)
	case Bishop:
		return adx == ady && pathClear(b, xFrom, yFrom, xTo, yTo)
	case Queen:
		return (straightLine(adx, ady) || adx == ady) && pathClear(b, xFrom, yFrom, xTo, yTo)
	case King:
		// castling is not part of this variant
		return adx <= 1 && ady <= 1
	case Pawn:
		return pawnAllows(b, piece.Player, xFrom, yFrom, xTo, yTo)
	}
	return false
}

func pawnAllows(b *Board, owner Player, xFrom, yFrom, xTo, yTo int) bool {
	dir := pawnDirection(owner)
	dx := xTo - xFrom
	dy := yTo - yFrom

	switch {
	case dx == 0 && dy == dir:
		return b.empty(xTo, yTo)
	case dx == 0 && dy == 2*dir:
		return yFrom == pawnStartRank(owner) &&
			b.empty(xTo, yTo) &&
			pathClear(b, xFrom, yFrom, xTo, yTo)
	case abs(dx) == 1 && dy == dir:
		// capture only; en passant is never legal
		return !b.empty(xTo, yTo)
	}
	return false
}

// straightLine reports a move along exactly one axis.
func straightLine(adx, ady int) bool {
	return (adx == 0) != (ady == 0)
}

// pathClear checks the cells strictly between source and destination on a straight
// or diagonal line.
func pathClear(b *Board, xFrom, yFrom, xTo, yTo int) bool {
	stepX := sign(xTo - xFrom)
	stepY := sign(yTo - yFrom)
	x, y := xFrom+stepX, yFrom+stepY
	for x != xTo || y != yTo {
		if !b.empty(x, y) {
			return false
		}
		x += stepX
		y += stepY
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
