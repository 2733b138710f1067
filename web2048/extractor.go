package web2048

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lmazzoli/web2048-rl/game2048"
)

// BoardExtractor reads the 16-cell board into a matrix, waiting out
// transient animation state per cell. A cell resolves to 0 when no node is
// bound to its position, to the displayed value when exactly one node is,
// and to the merge-result value when several nodes overlap mid-animation.
// Lookup and parse failures during animation are retried per cell up to
// the configured budget; a cell that never stabilizes yields a
// CellTimeoutError rather than a guessed value.
type BoardExtractor struct {
	session       Session
	retryInterval time.Duration
	cellTimeout   time.Duration
	logger        *zap.Logger
}

func NewBoardExtractor(session Session, retryInterval, cellTimeout time.Duration, logger *zap.Logger) *BoardExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardExtractor{
		session:       session,
		retryInterval: retryInterval,
		cellTimeout:   cellTimeout,
		logger:        logger,
	}
}

// Extract returns a fully populated board. It only returns once all 16
// cells have resolved, or fails with the first cell that exceeded its
// retry budget.
func (e *BoardExtractor) Extract(ctx context.Context) (game2048.Board, error) {
	var board game2048.Board
	for row := 0; row < game2048.Size; row++ {
		for col := 0; col < game2048.Size; col++ {
			value, err := e.resolveCell(ctx, row, col)
			if err != nil {
				return game2048.Board{}, err
			}
			board[row][col] = value
		}
	}
	return board, nil
}

// resolveCell blocks until the cell yields a consistent value or the
// retry budget runs out.
func (e *BoardExtractor) resolveCell(ctx context.Context, row, col int) (int, error) {
	cellCtx := ctx
	if e.cellTimeout > 0 {
		var cancel context.CancelFunc
		cellCtx, cancel = context.WithTimeout(ctx, e.cellTimeout)
		defer cancel()
	}

	start := time.Now()
	for {
		value, ok := e.tryCell(cellCtx, row, col)
		if ok {
			return value, nil
		}

		select {
		case <-cellCtx.Done():
			if ctx.Err() != nil {
				// the caller was cancelled, not the per-cell budget
				return 0, ctx.Err()
			}
			e.logger.Warn("board cell did not stabilize",
				zap.Int("row", row), zap.Int("col", col),
				zap.Duration("waited", time.Since(start)))
			return 0, &CellTimeoutError{Row: row, Col: col, Waited: time.Since(start)}
		case <-time.After(e.retryInterval):
		}
	}
}

// tryCell attempts one read of the cell. ok is false on any transient
// condition: lookup error, unparseable mid-animation text, or overlapping
// nodes with no merge result yet.
func (e *BoardExtractor) tryCell(ctx context.Context, row, col int) (int, bool) {
	nodes, err := e.session.Find(ctx, tileSelector(row, col))
	if err != nil {
		// stale lookups during a re-render are transient
		return 0, false
	}

	switch len(nodes) {
	case 0:
		return 0, true
	case 1:
		return parseTile(nodes[0].Text)
	default:
		// overlapping nodes mid-merge: only the merge result is the truth
		for _, n := range nodes {
			if n.HasClass(mergedTileClass) {
				return parseTile(n.Text)
			}
		}
		return 0, false
	}
}

func parseTile(text string) (int, bool) {
	value, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}
