// Package web2048 turns the browser-hosted tile-merging game into a
// step-based RL environment: discrete moves in, board observations and
// score-delta rewards out. The environment composes a Session capability
// and re-reads the rendered surface on every call; nothing is cached
// across calls except the prior score needed for the reward delta.
package web2048

import "context"

// Node is a snapshot of one rendered element: its visible text and class
// list at lookup time. Snapshots avoid holding live element references
// that a re-render would invalidate.
type Node struct {
	Text    string   `json:"text"`
	Classes []string `json:"classes"`
}

// HasClass reports whether the node carries the given class.
func (n Node) HasClass(class string) bool {
	for _, c := range n.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Session is the capability surface the environment needs from a live
// browser. Implementations own the automation technology; the
// environment never extends a driver type.
type Session interface {
	// Navigate loads the given URL.
	Navigate(ctx context.Context, url string) error
	// Find returns a snapshot of zero or more nodes matching the selector.
	Find(ctx context.Context, selector string) ([]Node, error)
	// Text returns the full visible text of the first node matching the
	// selector; an error if no node matches.
	Text(ctx context.Context, selector string) (string, error)
	// Click clicks the first node matching the selector.
	Click(ctx context.Context, selector string) error
	// SendKeys dispatches a key sequence to the page body.
	SendKeys(ctx context.Context, keys string) error
	// Screenshot captures the region of the first node matching the
	// selector as PNG bytes.
	Screenshot(ctx context.Context, selector string) ([]byte, error)
	// Close releases the session.
	Close() error
}
