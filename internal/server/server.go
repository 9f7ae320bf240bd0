package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"tickerbot/internal/config"
	"tickerbot/internal/server/handlers"
	"tickerbot/internal/server/middleware"
)

// Server is the ops HTTP server: health probes and pipeline statistics. It
// does not own its dependencies; the caller wires in whatever components
// the running command actually has.
type Server struct {
	config     *config.Config
	router     *gin.Engine
	httpServer *http.Server
}

// Components are the probed dependencies, keyed by the name they report
// under in the health response.
type Components struct {
	Checkers map[string]handlers.HealthChecker
	Stats    handlers.StatsSource
}

// New creates a new server instance
func New(cfg *config.Config, components Components) *Server {
	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger(cfg.Logging))
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.HealthCheck(components.Checkers))
	if components.Stats != nil {
		router.GET("/stats", handlers.Stats(components.Stats))
	}

	return &Server{
		config: cfg,
		router: router,
	}
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// GetRouter returns the Gin router (useful for testing)
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
