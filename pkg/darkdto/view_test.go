package darkdto

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCellJSON(t *testing.T) {
	cases := []struct {
		name string
		cell Cell
		want string
	}{
		{"empty", Cell{}, `null`},
		{"hidden", Cell{Hidden: true}, `"is_dark"`},
		{"piece", Cell{Piece: &Piece{Player: "white", Kind: "rook"}}, `{"player":"white","piece":"rook"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := json.Marshal(tc.cell)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(raw) != tc.want {
				t.Errorf("Marshal = %s, want %s", raw, tc.want)
			}
			var back Cell
			if err := json.Unmarshal(raw, &back); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if diff := cmp.Diff(tc.cell, back); diff != "" {
				t.Errorf("decoded cell mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCellRejectsUnknownMarker(t *testing.T) {
	var c Cell
	if err := json.Unmarshal([]byte(`"foggy"`), &c); err == nil {
		t.Errorf("unknown marker accepted")
	}
}

func TestBoardViewShape(t *testing.T) {
	var v BoardView
	v[0][0] = Cell{Piece: &Piece{Player: "white", Kind: "rook"}}
	v[0][7] = Cell{Hidden: true}
	raw, err := json.Marshal(PlayerViewAndStats{PlayerView: v, WhosTurn: "white"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var generic struct {
		PlayerView [][]any `json:"player_view"`
		Winner     any     `json:"winner"`
	}
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(generic.PlayerView) != 8 || len(generic.PlayerView[0]) != 8 {
		t.Fatalf("player_view is not 8x8: %s", raw)
	}
	if generic.PlayerView[0][7] != HiddenMarker {
		t.Errorf("[0][7] = %v, want %q", generic.PlayerView[0][7], HiddenMarker)
	}
	if generic.PlayerView[1][1] != nil {
		t.Errorf("[1][1] = %v, want null", generic.PlayerView[1][1])
	}
	if generic.Winner != nil {
		t.Errorf("winner = %v, want null", generic.Winner)
	}
}
