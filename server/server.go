// Package server exposes the environment over HTTP so out-of-process
// agents (e.g. Python trainers) can drive the step/reset protocol.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lmazzoli/web2048-rl/game2048"
	"github.com/lmazzoli/web2048-rl/web2048"
)

// Environment is the surface the bridge needs from the game environment.
type Environment interface {
	Reset(ctx context.Context, settle time.Duration) (game2048.Board, error)
	Step(ctx context.Context, action int, settle time.Duration) (*web2048.StepResult, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Board() game2048.Board
	Done() bool
	Score() int
}

// Server serializes HTTP access onto the single-caller environment.
type Server struct {
	env    Environment
	logger *zap.Logger
	mu     sync.Mutex
}

func New(env Environment, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{env: env, logger: logger}
}

// Handler builds the HTTP routes.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.POST("/reset", s.handleReset)
	r.POST("/step", s.handleStep)
	r.GET("/board", s.handleBoard)
	r.GET("/status", s.handleStatus)
	r.GET("/screenshot", s.handleScreenshot)
	return r
}

// Run serves the bridge until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("serving environment bridge", zap.String("addr", addr))
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	return srv.ListenAndServe()
}

type stepRequest struct {
	Action   int `json:"action"`
	SettleMs int `json:"settle_ms"`
}

type resetRequest struct {
	SettleMs int `json:"settle_ms"`
}

func (s *Server) handleReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	board, err := s.env.Reset(c.Request.Context(), time.Duration(req.SettleMs)*time.Millisecond)
	if err != nil {
		s.logger.Error("reset failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"board": board})
}

func (s *Server) handleStep(c *gin.Context) {
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := s.env.Step(c.Request.Context(), req.Action, time.Duration(req.SettleMs)*time.Millisecond)
	if err != nil {
		var invalid *web2048.InvalidActionError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error("step failed", zap.Int("action", req.Action), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"board":  result.Board,
		"reward": result.Reward,
		"done":   result.Done,
		"info":   result.Info,
	})
}

func (s *Server) handleBoard(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"board": s.env.Board(),
		"done":  s.env.Done(),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"score": s.env.Score(),
		"done":  s.env.Done(),
	})
}

func (s *Server) handleScreenshot(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, err := s.env.Screenshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}
