// Package api exposes the HTTP surface: authentication, the metrics
// dashboard, report builds and PDF download. Every data route sits behind
// the session middleware.
package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	"equity_research/pkg/auth"
	"equity_research/pkg/model"
)

// Server wraps the gin engine with graceful shutdown.
type Server struct {
	router *gin.Engine
	srv    *http.Server
}

func NewServer(port string, env string) *Server {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	return &Server{
		router: router,
		srv: &http.Server{
			Addr:    ":" + port,
			Handler: router,
		},
	}
}

// SetupRoutes wires the handlers. Everything under /api/v1 except login
// requires an authenticated session; the auth check runs before any
// provider or database work.
func (s *Server) SetupRoutes(h *Handlers, sessions auth.SessionStore) {
	s.router.GET("/health", h.Health)

	v1 := s.router.Group("/api/v1")
	v1.POST("/auth/login", h.Login)

	authed := v1.Group("")
	authed.Use(auth.RequireRole(sessions, model.RoleUser))
	{
		authed.GET("/search", h.Search)
		authed.GET("/dashboard/:symbol", h.Dashboard)
		authed.GET("/chart/:symbol", h.Chart)
		authed.GET("/report/:symbol", h.GetReport)
		authed.POST("/report/:symbol", h.BuildReport)
		authed.GET("/report/:symbol/pdf", h.DownloadPDF)
		authed.GET("/votes/:symbol", h.GetVotes)
		authed.POST("/votes/:symbol", h.CastVote)
	}
}

// Start serves until SIGINT/SIGTERM, then drains connections.
func (s *Server) Start() {
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("api server listening")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("shutdown failed")
	}
	log.Info().Msg("server stopped")
}
