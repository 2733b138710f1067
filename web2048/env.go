package web2048

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lmazzoli/web2048-rl/game2048"
)

// Config tunes the observation side of the environment. All waits are
// bounded: the per-cell retry budget and the settle wait both have hard
// caps so a rendering regression surfaces as an error instead of a hang.
type Config struct {
	URL string

	// SettleDelay is the fixed wait after every action before sampling.
	SettleDelay time.Duration
	// StableSamples consecutive identical board samples count as
	// quiescent; MaxSettle caps the whole wait.
	StableSamples int
	MaxSettle     time.Duration

	// CellRetryInterval and CellTimeout bound the per-cell retry loop of
	// the board extractor.
	CellRetryInterval time.Duration
	CellTimeout       time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:               DefaultGameURL,
		SettleDelay:       100 * time.Millisecond,
		StableSamples:     2,
		MaxSettle:         2 * time.Second,
		CellRetryInterval: 20 * time.Millisecond,
		CellTimeout:       3 * time.Second,
	}
}

// moveKeys maps each discrete action to its key command sequence.
var moveKeys = map[game2048.Move]string{
	game2048.Up:    "ArrowUp",
	game2048.Left:  "ArrowLeft",
	game2048.Down:  "ArrowDown",
	game2048.Right: "ArrowRight",
}

// StepResult is the full observation of one step.
type StepResult struct {
	Board  game2048.Board
	Reward int
	Done   bool
	// Info is an open side channel for diagnostics, empty by default.
	Info map[string]any
}

// Env drives one live game through a Session. It owns the session
// exclusively for its lifetime and is not safe for concurrent use: the
// protocol is strictly synchronous (action, settle, read).
type Env struct {
	session  Session
	cfg      Config
	board    *BoardExtractor
	score    *ScoreTracker
	terminal *TerminalDetector
	logger   *zap.Logger

	// the only state carried across calls: the prior score for the
	// reward delta, the last observation and the terminal flag
	prevScore int
	last      game2048.Board
	done      bool
}

func New(session Session, cfg Config, logger *zap.Logger) *Env {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Env{
		session:  session,
		cfg:      cfg,
		board:    NewBoardExtractor(session, cfg.CellRetryInterval, cfg.CellTimeout, logger),
		score:    NewScoreTracker(session),
		terminal: NewTerminalDetector(session),
		logger:   logger,
	}
}

// Open navigates to the game and loads the initial observation. The
// environment starts ready, with a board already dealt by the page.
func (e *Env) Open(ctx context.Context) error {
	if err := e.session.Navigate(ctx, e.cfg.URL); err != nil {
		return err
	}
	board, err := e.board.Extract(ctx)
	if err != nil {
		return err
	}
	score, err := e.score.Read(ctx)
	if err != nil {
		return err
	}
	e.last = board
	e.prevScore = score
	e.done = false
	e.logger.Info("game loaded", zap.String("url", e.cfg.URL), zap.Int("score", score))
	return nil
}

// Step applies one of the four discrete actions and returns the settled
// observation. The ordering is strict: key dispatch, settle wait, then
// board/score/termination reads; it is the only mechanism ensuring the
// observed board reflects the just-applied action. A blocked move that
// changes nothing is a legal outcome with reward 0.
func (e *Env) Step(ctx context.Context, action int, settle time.Duration) (*StepResult, error) {
	move, ok := game2048.MoveFromIndex(action)
	if !ok {
		return nil, &InvalidActionError{Index: action}
	}

	prev := e.prevScore
	if err := e.session.SendKeys(ctx, moveKeys[move]); err != nil {
		return nil, err
	}

	info := map[string]any{}
	if quiesced, err := e.settle(ctx, settle); err != nil {
		return nil, err
	} else if !quiesced {
		info["settle_truncated"] = true
	}

	board, err := e.board.Extract(ctx)
	if err != nil {
		return nil, err
	}
	score, err := e.score.Read(ctx)
	if err != nil {
		return nil, err
	}
	done, err := e.terminal.Done(ctx)
	if err != nil {
		return nil, err
	}

	e.last = board
	e.prevScore = score
	e.done = done

	return &StepResult{
		Board:  board,
		Reward: score - prev,
		Done:   done,
		Info:   info,
	}, nil
}

// Reset triggers the game's restart control and returns the new
// episode's initial observation.
func (e *Env) Reset(ctx context.Context, settle time.Duration) (game2048.Board, error) {
	if err := e.session.Click(ctx, restartSelector); err != nil {
		if ctx.Err() != nil {
			return game2048.Board{}, ctx.Err()
		}
		return game2048.Board{}, &HardLookupError{Selector: restartSelector, Err: err}
	}
	if _, err := e.settle(ctx, settle); err != nil {
		return game2048.Board{}, err
	}
	board, err := e.board.Extract(ctx)
	if err != nil {
		return game2048.Board{}, err
	}
	score, err := e.score.Read(ctx)
	if err != nil {
		return game2048.Board{}, err
	}
	e.last = board
	e.prevScore = score
	e.done = false
	return board, nil
}

// settle sleeps the fixed delay, then samples the board until
// StableSamples consecutive samples agree or MaxSettle elapses.
// Reports whether quiescence was actually observed.
func (e *Env) settle(ctx context.Context, delay time.Duration) (bool, error) {
	if delay > 0 {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(delay):
		}
	}
	if e.cfg.StableSamples < 2 {
		return true, nil
	}

	// the cap covers the sampling extractions too, so a cell retrying
	// inside Extract cannot stretch the wait past MaxSettle
	settleCtx, cancel := context.WithTimeout(ctx, e.cfg.MaxSettle)
	defer cancel()

	var prev game2048.Board
	stable := 0
	first := true
	for {
		sample, err := e.board.Extract(settleCtx)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			if settleCtx.Err() != nil {
				break
			}
			// mid-animation extraction trouble just means not settled yet
			stable = 0
			first = true
		} else if !first && sample == prev {
			stable++
			if stable >= e.cfg.StableSamples-1 {
				return true, nil
			}
		} else {
			stable = 0
		}
		if err == nil {
			prev = sample
			first = false
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-settleCtx.Done():
			e.logger.Debug("settle wait truncated", zap.Duration("max", e.cfg.MaxSettle))
			return false, nil
		case <-time.After(e.cfg.CellRetryInterval):
		}
	}
	e.logger.Debug("settle wait truncated", zap.Duration("max", e.cfg.MaxSettle))
	return false, nil
}

// Board returns the last settled observation.
func (e *Env) Board() game2048.Board {
	return e.last
}

// Done reports whether the last observation was terminal.
func (e *Env) Done() bool {
	return e.done
}

// Score returns the cumulative score as of the last observation.
func (e *Env) Score() int {
	return e.prevScore
}

// Screenshot captures the board surface as PNG bytes for
// visual-observation agents, independent of the numeric board.
func (e *Env) Screenshot(ctx context.Context) ([]byte, error) {
	return e.session.Screenshot(ctx, boardSelector)
}

// Close releases the underlying session.
func (e *Env) Close() error {
	return e.session.Close()
}
