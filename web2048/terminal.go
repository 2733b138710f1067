package web2048

import "context"

// TerminalDetector reports whether the game reached its no-more-moves
// state. A single presence check: the rendered game keeps the marker up
// until the next restart, so no extra bookkeeping is needed here.
type TerminalDetector struct {
	session Session
}

func NewTerminalDetector(session Session) *TerminalDetector {
	return &TerminalDetector{session: session}
}

func (t *TerminalDetector) Done(ctx context.Context) (bool, error) {
	nodes, err := t.session.Find(ctx, gameOverSelector)
	if err != nil {
		return false, err
	}
	return len(nodes) > 0, nil
}
