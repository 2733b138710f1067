package types

type AgentConfig struct {
	Episodes    int
	Horizon     int
	Policy      Policy
	Environment Environment
}

// RL Agent configured with the corresponding
// policy and environment
type Agent struct {
	config      *AgentConfig
	policy      Policy
	environment Environment
}

// Instantiates a new Agent
func NewAgent(config *AgentConfig) *Agent {
	return &Agent{
		config:      config,
		policy:      config.Policy,
		environment: config.Environment,
	}
}

// RunEpisode runs a single episode up to the horizon or the first terminal
// observation, recording the trace and accounting on the episode context.
func (a *Agent) RunEpisode(eCtx *EpisodeContext) {
	state, err := a.environment.Reset(eCtx)
	if err != nil {
		eCtx.SetError(err)
		return
	}

	for i := 0; i < a.config.Horizon; i++ {
		actions := state.Actions()
		if len(actions) == 0 {
			eCtx.Terminal = true
			break
		}
		nextAction, ok := a.policy.NextAction(i, state, actions)
		if !ok {
			break
		}

		sCtx := NewStepContext(eCtx, i)
		nextState, err := a.environment.Step(nextAction, sCtx)
		if err != nil {
			eCtx.SetError(err)
			return
		}

		a.policy.Update(sCtx, state, nextAction, nextState)
		eCtx.Trace.Append(i, state, nextAction, sCtx.Reward, nextState)
		eCtx.Timesteps += 1

		if sCtx.Done {
			eCtx.Terminal = true
			break
		}
		state = nextState
	}
	if !eCtx.Terminal {
		eCtx.HorizonEnd = true
	}
	a.policy.UpdateIteration(eCtx.Episode, eCtx.Trace)
}

// Horizon of the agent configuration
func (a *Agent) Horizon() int {
	return a.config.Horizon
}
