package web2048

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"
)

// ChromeConfig configures the headless browser backing a ChromeSession.
type ChromeConfig struct {
	Headless  bool
	Width     int
	Height    int
	UserAgent string
	// Timeout bounds every single session operation.
	Timeout time.Duration
}

func DefaultChromeConfig() ChromeConfig {
	return ChromeConfig{
		Headless: true,
		Width:    1280,
		Height:   900,
		Timeout:  15 * time.Second,
	}
}

// ChromeSession implements Session on top of chromedp. The environment
// composes this type; nothing game-specific lives here.
type ChromeSession struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	config      ChromeConfig
	logger      *zap.Logger
	mu          sync.Mutex
}

var _ Session = &ChromeSession{}

// chromeKeys maps the semantic key names used by the environment to the
// key runes chromedp dispatches.
var chromeKeys = map[string]string{
	"ArrowUp":    kb.ArrowUp,
	"ArrowLeft":  kb.ArrowLeft,
	"ArrowDown":  kb.ArrowDown,
	"ArrowRight": kb.ArrowRight,
}

func NewChromeSession(config ChromeConfig, logger *zap.Logger) (*ChromeSession, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", config.Headless),
		chromedp.WindowSize(config.Width, config.Height),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(config.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		}),
	)

	// always fetch the page fresh; a cached copy can carry stale game state
	if err := chromedp.Run(ctx, network.Enable(), network.SetCacheDisabled(true)); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	logger.Info("browser started",
		zap.Bool("headless", config.Headless),
		zap.Int("width", config.Width),
		zap.Int("height", config.Height))

	return &ChromeSession{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		ctx:         ctx,
		cancel:      cancel,
		config:      config,
		logger:      logger.With(zap.String("component", "chrome_session")),
	}, nil
}

// run executes the actions on the browser context, bounded by the
// session timeout and the caller's context.
func (s *ChromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx := s.ctx
	var cancel context.CancelFunc = func() {}
	if s.config.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, s.config.Timeout)
	}
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(runCtx, actions...)
	}()
	select {
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("navigating", zap.String("url", url))
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *ChromeSession) Find(ctx context.Context, selector string) ([]Node, error) {
	script := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(function (el) {
			return {text: el.textContent, classes: Array.from(el.classList)};
		})`, selector)
	nodes := []Node{}
	if err := s.run(ctx, chromedp.Evaluate(script, &nodes)); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (s *ChromeSession) Text(ctx context.Context, selector string) (string, error) {
	script := fmt.Sprintf(
		`(function () {
			var el = document.querySelector(%q);
			return el === null ? null : el.textContent;
		})()`, selector)
	var text *string
	if err := s.run(ctx, chromedp.Evaluate(script, &text)); err != nil {
		return "", err
	}
	if text == nil {
		return "", fmt.Errorf("no node matches %q", selector)
	}
	return *text, nil
}

func (s *ChromeSession) Click(ctx context.Context, selector string) error {
	s.logger.Debug("clicking", zap.String("selector", selector))
	return s.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (s *ChromeSession) SendKeys(ctx context.Context, keys string) error {
	seq, ok := chromeKeys[keys]
	if !ok {
		seq = keys
	}
	s.logger.Debug("sending keys", zap.String("keys", keys))
	return s.run(ctx, chromedp.KeyEvent(seq))
}

func (s *ChromeSession) Screenshot(ctx context.Context, selector string) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.Screenshot(selector, &buf, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *ChromeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Info("closing browser")
	s.cancel()
	s.allocCancel()
	return nil
}
