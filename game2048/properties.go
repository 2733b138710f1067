package game2048

import "github.com/lmazzoli/web2048-rl/types"

// TileReached holds once a transition produces a board with a tile of at
// least the given magnitude.
func TileReached(value int) types.MonitorCondition {
	return func(_ types.State, _ types.Action, ns types.State) bool {
		state, ok := ns.(*BoardState)
		if !ok {
			return false
		}
		return state.Board.MaxTile() >= value
	}
}

// TileMilestone is a monitor satisfied by any episode reaching the tile.
func TileMilestone(value int) *types.Monitor {
	monitor := types.NewMonitor()
	monitor.Build().On(TileReached(value), "TileReached").MarkSuccess()
	return monitor
}
