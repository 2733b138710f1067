package types

import (
	"context"
	"time"
)

// EpisodeContext carries the timeout context and the accounting of one
// episode run. An episode with Timeout 0 never times out.
type EpisodeContext struct {
	Context context.Context
	cancel  context.CancelFunc

	Episode        int
	ExperimentName string

	Trace       *Trace
	Timesteps   int
	RunDuration time.Duration

	// outcome flags
	TimedOut   bool
	Terminal   bool // environment reported done before the horizon
	HorizonEnd bool
	Err        error
}

func NewEpisodeContext(episode int, experimentName string, timeout time.Duration) *EpisodeContext {
	ctx := context.Background()
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	return &EpisodeContext{
		Context:        ctx,
		cancel:         cancel,
		Episode:        episode,
		ExperimentName: experimentName,
		Trace:          NewTrace(),
	}
}

// Cancel releases the episode context. Safe to call more than once.
func (e *EpisodeContext) Cancel() {
	e.cancel()
}

func (e *EpisodeContext) SetError(err error) {
	e.Err = err
}

func (e *EpisodeContext) SetTimedOut() {
	e.TimedOut = true
}

// StepContext scopes a single environment step. The environment fills in
// Reward, Done and Info while producing the next observation.
type StepContext struct {
	Context context.Context

	Episode int
	Step    int

	Reward float64
	Done   bool
	Info   map[string]any
}

func NewStepContext(eCtx *EpisodeContext, step int) *StepContext {
	return &StepContext{
		Context: eCtx.Context,
		Episode: eCtx.Episode,
		Step:    step,
		Info:    map[string]any{},
	}
}
