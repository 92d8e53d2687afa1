package darkchess

// CellState distinguishes what a viewer knows about a cell.
type CellState uint8

const (
	// CellEmpty is visible and unoccupied.
	CellEmpty CellState = iota
	// CellOccupied is visible and holds a piece.
	CellOccupied
	// CellHidden is outside the viewer's visibility.
	CellHidden
)

func (c CellState) String() string {
	switch c {
	case CellEmpty:
		return "empty"
	case CellOccupied:
		return "occupied"
	case CellHidden:
		return "hidden"
	}
	return "unknown"
}

// ViewCell is one cell of a BoardView. Occupant is set only for CellOccupied.
type ViewCell struct {
	State    CellState
	Occupant Occupant
}

// BoardView is one player's fogged snapshot of the board, indexed [x][y].
type BoardView struct {
	Viewer Player
	Cells  [BoardSize][BoardSize]ViewCell
}

// At returns the cell at (x, y); off-board coordinates read as hidden.
func (v BoardView) At(x, y int) ViewCell {
	if !inBounds(x, y) {
		return ViewCell{State: CellHidden}
	}
	return v.Cells[x][y]
}

// Hidden reports whether (x, y) is outside the viewer's visibility.
func (v BoardView) Hidden(x, y int) bool { return v.At(x, y).State == CellHidden }

// VisibleCount returns the number of cells the viewer can see.
func (v BoardView) VisibleCount() int {
	n := 0
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			if v.Cells[x][y].State != CellHidden {
				n++
			}
		}
	}
	return n
}

// BoardView derives player's view: cells holding player's pieces, plus cells any of
// them could reach ignoring self-check. The state is only read.
func (s *GameState) BoardView(player Player) BoardView {
	var visible [BoardSize][BoardSize]bool
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			o, ok := s.board.At(x, y)
			if !ok || o.Player != player {
				continue
			}
			visible[x][y] = true
			for tx := 0; tx < BoardSize; tx++ {
				for ty := 0; ty < BoardSize; ty++ {
					if !visible[tx][ty] && s.IsMoveValid(player, x, y, tx, ty, true) {
						visible[tx][ty] = true
					}
				}
			}
		}
	}

	view := BoardView{Viewer: player}
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			switch o, ok := s.board.At(x, y); {
			case !visible[x][y]:
				view.Cells[x][y] = ViewCell{State: CellHidden}
			case ok:
				view.Cells[x][y] = ViewCell{State: CellOccupied, Occupant: o}
			default:
				view.Cells[x][y] = ViewCell{State: CellEmpty}
			}
		}
	}
	return view
}
