package web2048

import (
	"time"

	"github.com/lmazzoli/web2048-rl/game2048"
	"github.com/lmazzoli/web2048-rl/types"
)

// RLEnvironment adapts Env to the generic environment contract so the
// agent, policies and experiment machinery can drive the live game.
type RLEnvironment struct {
	env    *Env
	settle time.Duration
}

var _ types.Environment = &RLEnvironment{}

func NewRLEnvironment(env *Env, settle time.Duration) *RLEnvironment {
	return &RLEnvironment{env: env, settle: settle}
}

func (r *RLEnvironment) Reset(eCtx *types.EpisodeContext) (types.State, error) {
	board, err := r.env.Reset(eCtx.Context, r.settle)
	if err != nil {
		return nil, err
	}
	return game2048.NewBoardState(board, false), nil
}

func (r *RLEnvironment) Step(a types.Action, sCtx *types.StepContext) (types.State, error) {
	move := a.(game2048.Move)
	result, err := r.env.Step(sCtx.Context, int(move), r.settle)
	if err != nil {
		return nil, err
	}
	sCtx.Reward = float64(result.Reward)
	sCtx.Done = result.Done
	for k, v := range result.Info {
		sCtx.Info[k] = v
	}
	sCtx.Info["score"] = r.env.Score()
	return game2048.NewBoardState(result.Board, result.Done), nil
}
