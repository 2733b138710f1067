package types

// Environment is the step/reset contract that RL policies drive.
// Both calls block until the underlying system has produced a stable
// observation; the contexts carry the episode timeout and cancellation.
type Environment interface {
	// Reset starts a new episode and returns its initial observation
	Reset(*EpisodeContext) (State, error)
	// Step applies an action and returns the resulting observation.
	// Reward, termination and diagnostics are reported on the StepContext.
	Step(Action, *StepContext) (State, error)
}

// State of the system that RL policies observe
type State interface {
	// Indexed by the Hash
	// Should be deterministic
	Hash() string
	// Actions possible from the state
	// Empty for terminal states
	Actions() []Action
}

// An Action that RL policy can take
type Action interface {
	// Index of the action
	// Should be deterministic
	Hash() string
}
