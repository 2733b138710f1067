package policies

import (
	"time"

	"golang.org/x/exp/rand"

	"github.com/lmazzoli/web2048-rl/types"
)

// EpsilonGreedyPolicy is tabular Q-learning with epsilon-greedy action
// selection over the step rewards reported by the environment.
type EpsilonGreedyPolicy struct {
	qTable   *QTable
	alpha    float64
	discount float64
	epsilon  float64
	visits   *QTable
	rand     *rand.Rand
}

var _ types.Policy = &EpsilonGreedyPolicy{}

func NewEpsilonGreedyPolicy(alpha, discount, epsilon float64) *EpsilonGreedyPolicy {
	return &EpsilonGreedyPolicy{
		qTable:   NewQTable(),
		alpha:    alpha,
		discount: discount,
		epsilon:  epsilon,
		visits:   NewQTable(),
		rand:     rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
}

func (p *EpsilonGreedyPolicy) Reset() {
	p.qTable = NewQTable()
	p.visits = NewQTable()
}

func (p *EpsilonGreedyPolicy) NextAction(step int, state types.State, actions []types.Action) (types.Action, bool) {
	if p.rand.Float64() < p.epsilon {
		i := p.rand.Intn(len(actions))
		return actions[i], true
	}

	actionsMap := make(map[string]types.Action)
	availableActions := make([]string, len(actions))
	for i, a := range actions {
		aHash := a.Hash()
		actionsMap[aHash] = a
		availableActions[i] = aHash
	}
	maxAction, _ := p.qTable.MaxAmong(state.Hash(), availableActions, 0)
	if maxAction == "" {
		return nil, false
	}
	return actionsMap[maxAction], true
}

func (p *EpsilonGreedyPolicy) Update(sCtx *types.StepContext, state types.State, action types.Action, nextState types.State) {
	stateHash := state.Hash()
	actionHash := action.Hash()
	nextStateHash := nextState.Hash()

	t := p.visits.Get(stateHash, actionHash, 0) + 1
	p.visits.Set(stateHash, actionHash, t)

	nextStateVal := 0.0
	if !sCtx.Done {
		_, nextStateVal = p.qTable.Max(nextStateHash, 0)
	}

	curVal := p.qTable.Get(stateHash, actionHash, 0)
	p.qTable.Set(stateHash, actionHash,
		(1-p.alpha)*curVal+p.alpha*(sCtx.Reward+p.discount*nextStateVal))
}

func (p *EpsilonGreedyPolicy) UpdateIteration(_ int, _ *types.Trace) {

}

// Record dumps the learned Q table to the given path.
func (p *EpsilonGreedyPolicy) Record(path string) {
	p.qTable.Record(path)
}
