// Package sim2048 is an in-process rendition of the game used for fast
// policy benchmarking and as the reference model in tests. It implements
// the same environment contract as the browser-backed package without any
// session underneath.
package sim2048

import (
	"math/rand"

	"github.com/lmazzoli/web2048-rl/game2048"
	"github.com/lmazzoli/web2048-rl/types"
)

// FourProb is the spawn probability of a 4 tile, matching the hosted game.
const FourProb = 0.1

type Environment struct {
	rng   *rand.Rand
	board game2048.Board
	score int
	done  bool
}

var _ types.Environment = &Environment{}

func NewEnvironment(seed int64) *Environment {
	return &Environment{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Reset deals a fresh board with two starting tiles.
func (e *Environment) Reset(_ *types.EpisodeContext) (types.State, error) {
	e.board = game2048.Board{}
	e.board = e.board.Spawn(e.rng, FourProb)
	e.board = e.board.Spawn(e.rng, FourProb)
	e.score = 0
	e.done = false
	return game2048.NewBoardState(e.board, false), nil
}

// Step applies the move; a move that changes nothing spawns no tile and
// yields reward 0, like a blocked move on the rendered game.
func (e *Environment) Step(a types.Action, sCtx *types.StepContext) (types.State, error) {
	move := a.(game2048.Move)
	next, gained, changed := e.board.Apply(move)
	if changed {
		next = next.Spawn(e.rng, FourProb)
	}
	e.board = next
	e.score += gained
	e.done = !next.CanMove()

	sCtx.Reward = float64(gained)
	sCtx.Done = e.done
	sCtx.Info["score"] = e.score
	return game2048.NewBoardState(e.board, e.done), nil
}

// Score is the cumulative score of the current episode.
func (e *Environment) Score() int {
	return e.score
}

// Board is the current board snapshot.
func (e *Environment) Board() game2048.Board {
	return e.board
}
