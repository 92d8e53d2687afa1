package session

import (
	"database/sql"
	"testing"
	"time"

	"github.com/park285/dark-chess/internal/darkchess"
)

func TestSquareName(t *testing.T) {
	cases := []struct {
		x, y int
		want string
	}{
		{0, 0, "h1"},
		{7, 0, "a1"},
		{3, 0, "e1"},
		{4, 7, "d8"},
		{0, 7, "h8"},
		{8, 0, "-"},
		{0, -1, "-"},
	}
	for _, tc := range cases {
		if got := SquareName(tc.x, tc.y); got != tc.want {
			t.Errorf("SquareName(%d,%d) = %q, want %q", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestMoveText(t *testing.T) {
	if got := MoveText(darkchess.Move{FromX: 3, FromY: 1, ToX: 3, ToY: 3}, ""); got != "e2e4" {
		t.Errorf("MoveText = %q, want e2e4", got)
	}
	if got := MoveText(darkchess.Move{FromX: 7, FromY: 7, ToX: 7, ToY: 7}, darkchess.Knight); got != "a8a8n" {
		t.Errorf("MoveText(promotion) = %q, want a8a8n", got)
	}
}

func TestPositionFENOfDefaultLayout(t *testing.T) {
	got := PositionFEN(darkchess.NewGameState().Snapshot())
	if want := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w"; got != want {
		t.Errorf("PositionFEN(start) = %q, want %q", got, want)
	}
}

func TestResultRow(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{
		ID:     "g1",
		Game:   darkchess.Snapshot{Turn: darkchess.White},
		Status: StatusFinished,
		Winner: darkchess.Black,
		Moves: []MoveRecord{
			{Player: darkchess.White, Move: darkchess.Move{FromX: 2, FromY: 1, ToX: 2, ToY: 2}},
			{Player: darkchess.Black, Move: darkchess.Move{FromX: 3, FromY: 6, ToX: 3, ToY: 4}},
		},
		Outcome:   OutcomeCheckmate,
		CreatedAt: start,
		UpdatedAt: start.Add(90 * time.Second),
	}
	row, err := resultRow(s)
	if err != nil {
		t.Fatalf("resultRow: %v", err)
	}
	if row.Result != "0-1" || row.Method != OutcomeCheckmate {
		t.Errorf("result %q method %q", row.Result, row.Method)
	}
	if row.Winner != (sql.NullString{String: "black", Valid: true}) {
		t.Errorf("winner = %+v", row.Winner)
	}
	if row.MovesText != "f2f3 e7e5" {
		t.Errorf("MovesText = %q", row.MovesText)
	}
	if row.DurationMS != 90000 {
		t.Errorf("DurationMS = %d", row.DurationMS)
	}
	if row.FinalFEN != "8/8/8/8/8/8/8/8 w" {
		t.Errorf("FinalFEN = %q", row.FinalFEN)
	}

	s.Status, s.Winner = StatusDraw, ""
	if got := mapResult(s); got != "1/2-1/2" {
		t.Errorf("mapResult(draw) = %q", got)
	}
}

func TestPlayerViewDTO(t *testing.T) {
	st := darkchess.NewGameState()
	v := &PlayerView{Us: darkchess.Black, Board: st.BoardView(darkchess.Black), WhosTurn: darkchess.White, Status: StatusFinished, Winner: darkchess.Black}
	dto := v.DTO()
	if dto.Winner == nil || *dto.Winner != "black" {
		t.Fatalf("winner = %v", dto.Winner)
	}
	// e8 king at (3,7) visible to black, (3,0) hidden
	if p := dto.PlayerView[3][7].Piece; p == nil || p.Kind != "king" || p.Player != "black" {
		t.Errorf("[3][7] = %+v", dto.PlayerView[3][7])
	}
	if !dto.PlayerView[3][0].Hidden {
		t.Errorf("[3][0] should be hidden for black")
	}
	if dto.PlayerView[3][4].Hidden || dto.PlayerView[3][4].Piece != nil {
		t.Errorf("[3][4] should be visible and empty")
	}
	if got := MovesDTO(nil); got == nil || len(got) != 0 {
		t.Errorf("MovesDTO(nil) = %#v, want empty slice", got)
	}
}
