package darkchess

// Board is the shared 8x8 grid, indexed [x][y]. Cells hold values, so copying a
// Board copies every occupant.
type Board struct {
	cells [BoardSize][BoardSize]Occupant
}

// DefaultPlacements returns the starting layout: white's back rank on y=0, black's on y=7.
func DefaultPlacements() []Placement {
	backRank := []PieceKind{Rook, Knight, Bishop, King, Queen, Bishop, Knight, Rook}
	out := make([]Placement, 0, MaxPieces)
	for x, kind := range backRank {
		out = append(out, Placement{Player: White, Kind: kind, X: x, Y: 0})
	}
	for x := 0; x < BoardSize; x++ {
		out = append(out, Placement{Player: White, Kind: Pawn, X: x, Y: 1})
	}
	for x := 0; x < BoardSize; x++ {
		out = append(out, Placement{Player: Black, Kind: Pawn, X: x, Y: 6})
	}
	for x, kind := range backRank {
		out = append(out, Placement{Player: Black, Kind: kind, X: x, Y: 7})
	}
	return out
}

// NewBoard builds a board from placements. A later placement on the same cell
// replaces an earlier one.
func NewBoard(placements []Placement) (*Board, error) {
	if len(placements) > MaxPieces {
		return nil, ErrTooManyPieces
	}
	b := &Board{}
	for _, p := range placements {
		if err := p.validate(); err != nil {
			return nil, err
		}
		b.cells[p.X][p.Y] = Occupant{Player: p.Player, Kind: p.Kind}
	}
	return b, nil
}

// NewDefaultBoard returns a board with the starting layout.
func NewDefaultBoard() *Board {
	b, err := NewBoard(DefaultPlacements())
	if err != nil {
		panic(err)
	}
	return b
}

// At returns the occupant of (x, y). ok is false for empty or off-board cells.
func (b *Board) At(x, y int) (Occupant, bool) {
	if !inBounds(x, y) {
		return Occupant{}, false
	}
	o := b.cells[x][y]
	return o, !o.IsZero()
}

// Clone returns an independent copy.
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// Placements lists every occupant in x-major order.
func (b *Board) Placements() []Placement {
	var out []Placement
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			if o := b.cells[x][y]; !o.IsZero() {
				out = append(out, Placement{Player: o.Player, Kind: o.Kind, X: x, Y: y})
			}
		}
	}
	return out
}

// Count returns the number of occupied cells.
func (b *Board) Count() int {
	n := 0
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			if !b.cells[x][y].IsZero() {
				n++
			}
		}
	}
	return n
}

func (b *Board) empty(x, y int) bool { return b.cells[x][y].IsZero() }

func (b *Board) findKing(owner Player) (int, int, bool) {
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			if o := b.cells[x][y]; o.Kind == King && o.Player == owner {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}
