package web2048

import (
	"fmt"
	"time"
)

// InvalidActionError reports an action index outside 0-3. Raised before
// any session interaction.
type InvalidActionError struct {
	Index int
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action index %d, want 0-3", e.Index)
}

// HardLookupError reports a structural node (score container, restart
// control) entirely absent from the page. Not retried: absence here is a
// contract violation of the hosted markup, not an animation artifact.
type HardLookupError struct {
	Selector string
	Err      error
}

func (e *HardLookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("required node %q not found: %v", e.Selector, e.Err)
	}
	return fmt.Sprintf("required node %q not found", e.Selector)
}

func (e *HardLookupError) Unwrap() error {
	return e.Err
}

// CellTimeoutError reports a board cell that did not resolve to a stable
// value within the retry budget.
type CellTimeoutError struct {
	Row, Col int
	Waited   time.Duration
}

func (e *CellTimeoutError) Error() string {
	return fmt.Sprintf("cell (%d,%d) did not stabilize within %s", e.Row, e.Col, e.Waited)
}
