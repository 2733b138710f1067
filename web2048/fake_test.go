package web2048

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lmazzoli/web2048-rl/game2048"
)

// fakeSession serves canned markup snapshots so the extraction and step
// logic can be exercised without a browser.
type fakeSession struct {
	nodes map[string][]Node
	texts map[string]string

	navigations []string
	keysSent    []string
	clicked     []string
	findCalls   int
	textCalls   int

	// findHook intercepts Find for a selector; handled=false falls
	// through to the canned nodes.
	findHook func(selector string) ([]Node, error, bool)
	onKeys   func(keys string)
	onClick  func(selector string) error
	image    []byte
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		nodes: map[string][]Node{},
		texts: map[string]string{},
		image: []byte("png"),
	}
}

func (f *fakeSession) setBoard(b game2048.Board) {
	for r := 0; r < game2048.Size; r++ {
		for c := 0; c < game2048.Size; c++ {
			sel := tileSelector(r, c)
			if b[r][c] == 0 {
				delete(f.nodes, sel)
				continue
			}
			f.nodes[sel] = []Node{{
				Text:    strconv.Itoa(b[r][c]),
				Classes: []string{"tile", fmt.Sprintf("tile-%d", b[r][c])},
			}}
		}
	}
}

// setScore renders the score container text the way the page does: the
// transient addition child's text is concatenated into the container text.
func (f *fakeSession) setScore(total int, addition string) {
	f.texts[scoreSelector] = strconv.Itoa(total) + addition
	if addition == "" {
		delete(f.nodes, scoreAdditionSelector)
		return
	}
	f.nodes[scoreAdditionSelector] = []Node{{Text: addition, Classes: []string{"score-addition"}}}
}

func (f *fakeSession) setGameOver(over bool) {
	if over {
		f.nodes[gameOverSelector] = []Node{{Text: "Game over!", Classes: []string{"game-message", "game-over"}}}
	} else {
		delete(f.nodes, gameOverSelector)
	}
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error {
	f.navigations = append(f.navigations, url)
	return nil
}

func (f *fakeSession) Find(ctx context.Context, selector string) ([]Node, error) {
	f.findCalls++
	if f.findHook != nil {
		if nodes, err, handled := f.findHook(selector); handled {
			return nodes, err
		}
	}
	return f.nodes[selector], nil
}

func (f *fakeSession) Text(ctx context.Context, selector string) (string, error) {
	f.textCalls++
	text, ok := f.texts[selector]
	if !ok {
		return "", fmt.Errorf("no node matches %q", selector)
	}
	return text, nil
}

func (f *fakeSession) Click(ctx context.Context, selector string) error {
	f.clicked = append(f.clicked, selector)
	if f.onClick != nil {
		return f.onClick(selector)
	}
	return nil
}

func (f *fakeSession) SendKeys(ctx context.Context, keys string) error {
	f.keysSent = append(f.keysSent, keys)
	if f.onKeys != nil {
		f.onKeys(keys)
	}
	return nil
}

func (f *fakeSession) Screenshot(ctx context.Context, selector string) ([]byte, error) {
	return f.image, nil
}

func (f *fakeSession) Close() error {
	return nil
}
