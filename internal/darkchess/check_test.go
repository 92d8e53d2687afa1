package darkchess

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNobodyInCheckOnStart(t *testing.T) {
	s := NewGameState()
	for _, p := range []Player{White, Black} {
		if s.IsKingUnderAttack(p) {
			t.Errorf("IsKingUnderAttack(%s) = true on start", p)
		}
		if s.IsCheckmated(p) {
			t.Errorf("IsCheckmated(%s) = true on start", p)
		}
		if s.IsStalemated(p) {
			t.Errorf("IsStalemated(%s) = true on start", p)
		}
	}
}

func TestMissingKingIsNeverAttacked(t *testing.T) {
	s := mustState(t, White,
		Placement{White, Rook, 0, 0},
		Placement{Black, Queen, 0, 7},
	)
	if s.IsKingUnderAttack(White) {
		t.Errorf("board without a white king reported it under attack")
	}
	if s.IsCheckmated(White) {
		t.Errorf("board without a white king reported checkmate")
	}
}

// Diagram (white upper case):
//
//	rr k
//
//	K
func TestIsCheckmated(t *testing.T) {
	king := Placement{White, King, 0, 0}
	blackKing := Placement{Black, King, 3, 2}
	rookA := Placement{Black, Rook, 0, 2}
	rookB := Placement{Black, Rook, 1, 2}

	cases := []struct {
		name   string
		pieces []Placement
		want   bool
	}{
		{"two rooks", []Placement{king, blackKing, rookA, rookB}, true},
		{"rook on the king's file only", []Placement{king, blackKing, rookA}, false},
		{"rook beside the file only", []Placement{king, blackKing, rookB}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := mustState(t, White, tc.pieces...)
			if got := s.IsCheckmated(White); got != tc.want {
				t.Errorf("IsCheckmated(white) = %v, want %v", got, tc.want)
			}
			if s.IsCheckmated(Black) {
				t.Errorf("IsCheckmated(black) = true")
			}
		})
	}
}

func TestCheckEscapes(t *testing.T) {
	// the knight can capture the checking rook
	s := mustState(t, White,
		Placement{White, King, 0, 0},
		Placement{White, Knight, 2, 1},
		Placement{Black, King, 3, 2},
		Placement{Black, Rook, 0, 2},
		Placement{Black, Rook, 1, 2},
	)
	if !s.IsKingUnderAttack(White) {
		t.Fatalf("expected check")
	}
	if s.IsCheckmated(White) {
		t.Errorf("capture of the checking rook should escape")
	}
	if !s.IsMoveValid(White, 2, 1, 0, 2, false) {
		t.Errorf("knight capture of the checking rook should be legal")
	}
}

func TestIsStalemated(t *testing.T) {
	s := mustState(t, Black,
		Placement{Black, King, 7, 7},
		Placement{White, Queen, 6, 5},
		Placement{White, King, 0, 0},
	)
	if s.IsKingUnderAttack(Black) {
		t.Fatalf("black king should not be in check")
	}
	if !s.IsStalemated(Black) {
		t.Errorf("IsStalemated(black) = false, want true")
	}
	if s.IsCheckmated(Black) {
		t.Errorf("stalemate reported as checkmate")
	}
	if s.HasLegalMove(Black) {
		t.Errorf("HasLegalMove(black) = true")
	}
}

func TestLegalDestinations(t *testing.T) {
	s := NewGameState()
	got := s.LegalDestinations(White, 1, 0)
	want := []Move{
		{FromX: 1, FromY: 0, ToX: 0, ToY: 2},
		{FromX: 1, FromY: 0, ToX: 2, ToY: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LegalDestinations(knight) mismatch (-want +got):\n%s", diff)
	}
	// 16 pawn moves + 4 knight moves
	if n := len(s.LegalMoves(White)); n != 20 {
		t.Errorf("len(LegalMoves(white)) = %d, want 20", n)
	}
}

func TestQueriesDoNotMutateState(t *testing.T) {
	s := mustState(t, White,
		Placement{White, King, 4, 0},
		Placement{White, Bishop, 2, 2},
		Placement{White, Pawn, 6, 6},
		Placement{Black, Rook, 4, 7},
		Placement{Black, Bishop, 0, 4},
		Placement{Black, King, 7, 7},
	)
	before := s.Snapshot()

	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			s.LegalDestinations(White, x, y)
			s.LegalDestinations(Black, x, y)
		}
	}
	s.IsCheckmated(White)
	s.IsCheckmated(Black)
	s.IsStalemated(Black)
	s.BoardView(White)
	s.BoardView(Black)

	if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
		t.Errorf("hypothetical evaluation leaked into the real state (-before +after):\n%s", diff)
	}
}
