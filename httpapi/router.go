// Package httpapi serves read-only operational endpoints next to the bot.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func NewRouter(h *QuizHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", h.HealthCheck)

	v1 := r.Group("/v1")
	{
		v1.GET("/leaderboard/:metric", h.Leaderboard)
		v1.GET("/users/:id/rank/:metric", h.UserRank)
		v1.GET("/users/:id/stats", h.UserStats)
	}
	return r
}

type Server struct {
	srv *http.Server
}

func NewServer(addr string, h *QuizHandler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           NewRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Run blocks until the server stops; a graceful Shutdown is not an error.
func (s *Server) Run() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
