package game2048

import (
	"fmt"
	"strings"

	"github.com/lmazzoli/web2048-rl/types"
)

// Move is one of the four discrete actions, externally indexed 0-3.
type Move int

const (
	Up Move = iota
	Left
	Down
	Right
)

var _ types.Action = Up

func (m Move) Hash() string {
	switch m {
	case Up:
		return "UP"
	case Left:
		return "LEFT"
	case Down:
		return "DOWN"
	case Right:
		return "RIGHT"
	}
	return fmt.Sprintf("MOVE(%d)", int(m))
}

// AllMoves in index order.
var AllMoves = []types.Action{Up, Left, Down, Right}

// MoveFromIndex maps an external action index to a Move.
func MoveFromIndex(i int) (Move, bool) {
	if i < 0 || i >= len(AllMoves) {
		return 0, false
	}
	return Move(i), true
}

// BoardState is the observation exposed to RL policies: the board snapshot
// plus the terminal flag of the episode.
type BoardState struct {
	Board    Board
	Terminal bool
}

var _ types.State = &BoardState{}

func NewBoardState(b Board, terminal bool) *BoardState {
	return &BoardState{Board: b, Terminal: terminal}
}

func (s *BoardState) Hash() string {
	var sb strings.Builder
	for r := 0; r < Size; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		for c := 0; c < Size; c++ {
			if c > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%d", s.Board[r][c])
		}
	}
	return sb.String()
}

// Actions returns all four moves. A move that changes nothing is a legal
// no-op on the rendered game, so the policy always sees the full set
// unless the state is terminal.
func (s *BoardState) Actions() []types.Action {
	if s.Terminal {
		return nil
	}
	return AllMoves
}
