package web2048

import "fmt"

// Selector vocabulary of the hosted game markup. This is a version-pinned
// external contract: an upstream markup change breaks extraction and is
// out of this package's control.
const (
	// DefaultGameURL is the hosted game this package was built against.
	DefaultGameURL = "https://2048game.com/"

	// boardSelector frames the whole playing surface, used for the
	// visual observation capture.
	boardSelector = ".game-container"

	// tileContainerSelector holds one child node per live tile.
	tileContainerSelector = ".tile-container"

	// mergedTileClass flags the node representing the final value of two
	// tiles that combined during one move.
	mergedTileClass = "tile-merged"

	// scoreSelector is the cumulative score container. During animation
	// it transiently holds a child annotating the score increase.
	scoreSelector         = ".score-container"
	scoreAdditionSelector = ".score-container .score-addition"

	// gameOverSelector is present exactly when no legal moves remain.
	gameOverSelector = ".game-message.game-over"

	// restartSelector triggers a new game.
	restartSelector = ".restart-button"
)

// tileSelector addresses the rendered node(s) bound to one board position.
// The markup indexes positions column-first and 1-based.
func tileSelector(row, col int) string {
	return fmt.Sprintf("%s .tile-position-%d-%d", tileContainerSelector, col+1, row+1)
}
