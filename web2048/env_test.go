package web2048

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/lmazzoli/web2048-rl/game2048"
)

func testEnvConfig() Config {
	return Config{
		URL:         "https://game.test/",
		SettleDelay: 0,
		// no quiescence sampling in unit tests unless a test opts in
		StableSamples:     0,
		MaxSettle:         50 * time.Millisecond,
		CellRetryInterval: time.Millisecond,
		CellTimeout:       20 * time.Millisecond,
	}
}

func openTestEnv(t *testing.T, session *fakeSession, board game2048.Board, score int) *Env {
	t.Helper()
	session.setBoard(board)
	session.setScore(score, "")
	env := New(session, testEnvConfig(), nil)
	if err := env.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return env
}

func TestOpenLoadsInitialObservation(t *testing.T) {
	session := newFakeSession()
	initial := game2048.Board{
		{2, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 2, 0},
		{0, 0, 0, 0},
	}
	env := openTestEnv(t, session, initial, 0)

	if len(session.navigations) != 1 || session.navigations[0] != "https://game.test/" {
		t.Errorf("navigations = %v", session.navigations)
	}
	if env.Board() != initial {
		t.Errorf("Board = %v, want %v", env.Board(), initial)
	}
	if env.Score() != 0 || env.Done() {
		t.Errorf("score = %d done = %v, want 0 false", env.Score(), env.Done())
	}
}

func TestStepInvalidAction(t *testing.T) {
	session := newFakeSession()
	env := New(session, testEnvConfig(), nil)

	for _, action := range []int{-1, 4, 7} {
		_, err := env.Step(context.Background(), action, 0)
		var invalid *InvalidActionError
		if !errors.As(err, &invalid) {
			t.Fatalf("Step(%d) error = %v, want InvalidActionError", action, err)
		}
		if invalid.Index != action {
			t.Errorf("Step(%d) reported index %d", action, invalid.Index)
		}
	}

	// rejection happens before any session interaction
	if session.findCalls != 0 || session.textCalls != 0 || len(session.keysSent) != 0 {
		t.Errorf("invalid action touched the session: finds=%d texts=%d keys=%v",
			session.findCalls, session.textCalls, session.keysSent)
	}
}

func TestStepKeyDispatch(t *testing.T) {
	session := newFakeSession()
	env := openTestEnv(t, session, game2048.Board{{2, 0, 0, 2}}, 0)

	for i := 0; i < 4; i++ {
		if _, err := env.Step(context.Background(), i, 0); err != nil {
			t.Fatalf("Step(%d): %v", i, err)
		}
	}
	want := []string{"ArrowUp", "ArrowLeft", "ArrowDown", "ArrowRight"}
	if len(session.keysSent) != len(want) {
		t.Fatalf("keysSent = %v, want %v", session.keysSent, want)
	}
	for i, keys := range want {
		if session.keysSent[i] != keys {
			t.Errorf("keysSent[%d] = %q, want %q", i, session.keysSent[i], keys)
		}
	}
}

func TestStepRewardIsScoreDelta(t *testing.T) {
	session := newFakeSession()
	env := openTestEnv(t, session, game2048.Board{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, 100)

	after := game2048.Board{
		{4, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 2, 0},
		{0, 0, 0, 0},
	}
	session.onKeys = func(keys string) {
		session.setBoard(after)
		// score bumps to 104 with the merge annotation still rendered
		session.setScore(104, "+4")
	}

	result, err := env.Step(context.Background(), int(game2048.Left), 0)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if result.Reward != 4 {
		t.Errorf("Reward = %d, want 4", result.Reward)
	}
	if result.Board != after {
		t.Errorf("Board = %v, want %v", result.Board, after)
	}
	if result.Done {
		t.Errorf("Done = true on a running game")
	}
	if env.Score() != 104 {
		t.Errorf("Score = %d, want 104", env.Score())
	}
}

func TestStepBlockedMove(t *testing.T) {
	session := newFakeSession()
	initial := game2048.Board{
		{2, 4, 8, 16},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	// the page ignores a blocked move: nothing re-renders
	env := openTestEnv(t, session, initial, 60)

	result, err := env.Step(context.Background(), int(game2048.Up), 0)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if result.Board != initial {
		t.Errorf("blocked move changed the board: %v", result.Board)
	}
	if result.Reward != 0 {
		t.Errorf("blocked move Reward = %d, want 0", result.Reward)
	}
	if result.Done {
		t.Errorf("blocked move reported terminal")
	}
}

func TestStepTerminal(t *testing.T) {
	session := newFakeSession()
	env := openTestEnv(t, session, game2048.Board{{2}}, 500)

	session.onKeys = func(keys string) {
		session.setGameOver(true)
	}

	result, err := env.Step(context.Background(), int(game2048.Down), 0)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !result.Done || !env.Done() {
		t.Errorf("game-over marker present but Done = %v / %v", result.Done, env.Done())
	}
}

func TestReset(t *testing.T) {
	session := newFakeSession()
	env := openTestEnv(t, session, game2048.Board{{1024}}, 9000)
	session.setGameOver(true)

	fresh := game2048.Board{
		{0, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 2},
		{0, 0, 0, 0},
	}
	session.onClick = func(selector string) error {
		session.setGameOver(false)
		session.setBoard(game2048.Board{})
		session.setBoard(fresh)
		session.setScore(0, "")
		return nil
	}

	board, err := env.Reset(context.Background(), 0)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(session.clicked) != 1 || session.clicked[0] != restartSelector {
		t.Errorf("clicked = %v, want [%s]", session.clicked, restartSelector)
	}
	if board != fresh {
		t.Errorf("Reset board = %v, want %v", board, fresh)
	}
	if env.Done() || env.Score() != 0 {
		t.Errorf("after reset: done = %v score = %d", env.Done(), env.Score())
	}

	// the reward base restarts with the episode
	session.onKeys = func(keys string) {
		session.setScore(4, "")
	}
	result, err := env.Step(context.Background(), int(game2048.Left), 0)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if result.Reward != 4 {
		t.Errorf("first reward of new episode = %d, want 4", result.Reward)
	}
}

func TestResetClickFailure(t *testing.T) {
	session := newFakeSession()
	env := openTestEnv(t, session, game2048.Board{{2}}, 0)
	session.onClick = func(selector string) error {
		return errors.New("node not found")
	}

	_, err := env.Reset(context.Background(), 0)
	var hard *HardLookupError
	if !errors.As(err, &hard) {
		t.Fatalf("Reset error = %v, want HardLookupError", err)
	}
	if hard.Selector != restartSelector {
		t.Errorf("failed selector = %q, want %q", hard.Selector, restartSelector)
	}
}

func TestSettleQuiescence(t *testing.T) {
	session := newFakeSession()
	session.setBoard(game2048.Board{{2, 0, 0, 2}})
	session.setScore(0, "")

	cfg := testEnvConfig()
	cfg.StableSamples = 2
	cfg.MaxSettle = 200 * time.Millisecond
	env := New(session, cfg, nil)
	if err := env.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}

	result, err := env.Step(context.Background(), int(game2048.Right), 0)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if _, truncated := result.Info["settle_truncated"]; truncated {
		t.Errorf("static board reported a truncated settle wait")
	}
}

func TestSettleTruncated(t *testing.T) {
	session := newFakeSession()
	session.setBoard(game2048.Board{{2}})
	session.setScore(0, "")

	// the cell flaps on every read, so quiescence is never observed
	flap := 0
	target := tileSelector(0, 0)
	session.findHook = func(selector string) ([]Node, error, bool) {
		if selector != target {
			return nil, nil, false
		}
		flap++
		return []Node{{Text: strconv.Itoa(2 << (flap % 2)), Classes: []string{"tile"}}}, nil, true
	}

	cfg := testEnvConfig()
	cfg.StableSamples = 2
	cfg.MaxSettle = 20 * time.Millisecond
	env := New(session, cfg, nil)
	if err := env.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}

	result, err := env.Step(context.Background(), int(game2048.Up), 0)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if truncated, _ := result.Info["settle_truncated"].(bool); !truncated {
		t.Errorf("flapping board did not report settle_truncated, info = %v", result.Info)
	}
}

func TestSettleRespectsCap(t *testing.T) {
	session := newFakeSession()
	session.setBoard(game2048.Board{{2}})
	session.setScore(0, "")

	cfg := testEnvConfig()
	cfg.StableSamples = 2
	cfg.MaxSettle = 30 * time.Millisecond
	// a per-cell budget far beyond the settle cap; the cap must still hold
	cfg.CellTimeout = 50 * time.Millisecond
	env := New(session, cfg, nil)
	if err := env.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}

	// every tile lookup turns transient, so each full extraction would
	// otherwise burn 16 cell budgets
	session.findHook = func(selector string) ([]Node, error, bool) {
		if strings.Contains(selector, "tile-position") {
			return nil, errors.New("stale element"), true
		}
		return nil, nil, false
	}

	start := time.Now()
	_, err := env.Step(context.Background(), int(game2048.Up), 0)
	elapsed := time.Since(start)

	// the settle wait ends at the cap; the post-settle extraction then
	// fails within one cell budget
	var timeout *CellTimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("Step error = %v, want CellTimeoutError", err)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("step took %v, settle wait overran its %v cap", elapsed, cfg.MaxSettle)
	}
}

func TestResetCancelledContext(t *testing.T) {
	session := newFakeSession()
	env := openTestEnv(t, session, game2048.Board{{2}}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	session.onClick = func(selector string) error {
		return ctx.Err()
	}

	_, err := env.Reset(ctx, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Reset error = %v, want context.Canceled", err)
	}
	var hard *HardLookupError
	if errors.As(err, &hard) {
		t.Errorf("cancellation was wrapped as a markup violation: %v", err)
	}
}

func TestScreenshot(t *testing.T) {
	session := newFakeSession()
	env := openTestEnv(t, session, game2048.Board{{2}}, 0)

	png, err := env.Screenshot(context.Background())
	if err != nil {
		t.Fatalf("Screenshot: %v", err)
	}
	if !bytes.Equal(png, session.image) {
		t.Errorf("Screenshot bytes do not match the captured image")
	}
}
