package game2048

import (
	"testing"

	"github.com/lmazzoli/web2048-rl/types"
)

func TestMoveFromIndex(t *testing.T) {
	tests := []struct {
		index int
		move  Move
		ok    bool
	}{
		{0, Up, true},
		{1, Left, true},
		{2, Down, true},
		{3, Right, true},
		{-1, 0, false},
		{4, 0, false},
		{7, 0, false},
	}

	for _, tt := range tests {
		move, ok := MoveFromIndex(tt.index)
		if ok != tt.ok || (ok && move != tt.move) {
			t.Errorf("MoveFromIndex(%d) = %v,%v, want %v,%v", tt.index, move, ok, tt.move, tt.ok)
		}
	}
}

func TestMoveHash(t *testing.T) {
	seen := map[string]bool{}
	for _, action := range AllMoves {
		hash := action.Hash()
		if seen[hash] {
			t.Errorf("duplicate move hash %q", hash)
		}
		seen[hash] = true
	}
	if Up.Hash() != "UP" || Right.Hash() != "RIGHT" {
		t.Errorf("move hashes = %q %q", Up.Hash(), Right.Hash())
	}
}

func TestBoardStateHash(t *testing.T) {
	state := NewBoardState(Board{
		{2, 0, 0, 4},
		{0, 0, 0, 0},
		{0, 16, 0, 0},
		{0, 0, 0, 2},
	}, false)
	expected := "2,0,0,4/0,0,0,0/0,16,0,0/0,0,0,2"
	if got := state.Hash(); got != expected {
		t.Errorf("Hash = %q, want %q", got, expected)
	}

	other := NewBoardState(Board{}, false)
	if other.Hash() == state.Hash() {
		t.Errorf("distinct boards share a hash")
	}
}

func TestBoardStateActions(t *testing.T) {
	running := NewBoardState(Board{{2}}, false)
	if got := len(running.Actions()); got != 4 {
		t.Errorf("running state exposes %d actions, want 4", got)
	}

	terminal := NewBoardState(Board{{2}}, true)
	if got := len(terminal.Actions()); got != 0 {
		t.Errorf("terminal state exposes %d actions, want 0", got)
	}
}

func TestTileMilestone(t *testing.T) {
	before := NewBoardState(Board{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, false)
	after := NewBoardState(Board{
		{4, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, false)

	trace := types.NewTrace()
	trace.Append(0, before, Left, 4, after)

	if _, ok := TileMilestone(4).Check(trace); !ok {
		t.Errorf("trace reaching tile 4 did not satisfy TileMilestone(4)")
	}
	if _, ok := TileMilestone(8).Check(trace); ok {
		t.Errorf("trace without tile 8 satisfied TileMilestone(8)")
	}
}
