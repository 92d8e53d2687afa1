package darkchess

// Move is a from/to pair on the board.
type Move struct {
	FromX int `json:"x_from"`
	FromY int `json:"y_from"`
	ToX   int `json:"x_to"`
	ToY   int `json:"y_to"`
}

// IsKingUnderAttack reports whether any opponent piece can reach owner's king.
// A board without owner's king is never under attack.
func (s *GameState) IsKingUnderAttack(owner Player) bool {
	kx, ky, ok := s.board.findKing(owner)
	if !ok {
		return false
	}
	attacker := owner.Opponent()
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			if o, ok := s.board.At(x, y); !ok || o.Player != attacker {
				continue
			}
			// self-check must stay off here, it is built on this very scan
			if s.IsMoveValid(attacker, x, y, kx, ky, true) {
				return true
			}
		}
	}
	return false
}

// IsCheckmated reports whether player's king is attacked and no legal move clears
// the attack. While a promotion is pending the position is unresolved and nobody is
// checkmated.
func (s *GameState) IsCheckmated(player Player) bool {
	if !s.IsKingUnderAttack(player) {
		return false
	}
	if s.awaitingPromotion {
		return false
	}
	return !s.hasEscape(player)
}

// hasEscape searches every own piece and destination (at most 32x64 trials) for a
// legal move after which the king is safe.
func (s *GameState) hasEscape(player Player) bool {
	found := false
	s.eachLegalMove(player, func(m Move) bool {
		v := s.virtual()
		v.applyMove(m.FromX, m.FromY, m.ToX, m.ToY)
		if !v.IsKingUnderAttack(player) {
			found = true
			return false
		}
		return true
	})
	return found
}

// HasLegalMove reports whether player has any move that passes the legality engine.
func (s *GameState) HasLegalMove(player Player) bool {
	found := false
	s.eachLegalMove(player, func(Move) bool {
		found = true
		return false
	})
	return found
}

// IsStalemated reports a position where player is not in check but cannot move.
func (s *GameState) IsStalemated(player Player) bool {
	if s.awaitingPromotion || s.IsKingUnderAttack(player) {
		return false
	}
	return !s.HasLegalMove(player)
}

// LegalMoves lists every legal move of player, self-check rule included.
func (s *GameState) LegalMoves(player Player) []Move {
	var out []Move
	s.eachLegalMove(player, func(m Move) bool {
		out = append(out, m)
		return true
	})
	return out
}

// LegalDestinations lists the cells the piece on (x, y) may legally move to.
func (s *GameState) LegalDestinations(player Player, x, y int) []Move {
	var out []Move
	for tx := 0; tx < BoardSize; tx++ {
		for ty := 0; ty < BoardSize; ty++ {
			if s.IsMoveValid(player, x, y, tx, ty, false) {
				out = append(out, Move{FromX: x, FromY: y, ToX: tx, ToY: ty})
			}
		}
	}
	return out
}

// eachLegalMove calls fn for each legal move until fn returns false.
func (s *GameState) eachLegalMove(player Player, fn func(Move) bool) {
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			if o, ok := s.board.At(x, y); !ok || o.Player != player {
				continue
			}
			for tx := 0; tx < BoardSize; tx++ {
				for ty := 0; ty < BoardSize; ty++ {
					if !s.IsMoveValid(player, x, y, tx, ty, false) {
						continue
					}
					if !fn(Move{FromX: x, FromY: y, ToX: tx, ToY: ty}) {
						return
					}
				}
			}
		}
	}
}
