// Package api serves the engine over HTTP for the dashboard.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"Springboard/internal/model"
	"Springboard/internal/strategy"
)

// Runner collects bars and evaluates a day on demand; the scheduler implements it.
type Runner interface {
	Last() *model.Evaluation
	Evaluate(trigger string, day time.Time) (*model.Evaluation, error)
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	ProductionMode bool
}

// Server is the HTTP API.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     ServerConfig
	engine     strategy.Config
	runner     Runner
	logger     zerolog.Logger
}

// NewServer creates a new API server. runner may be nil, which disables the
// run endpoints.
func NewServer(config ServerConfig, engine strategy.Config, runner Runner) *Server {
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	s := &Server{
		router: router,
		config: config,
		engine: engine,
		runner: runner,
		logger: log.With().Str("component", "api").Logger(),
	}

	router.Use(s.requestLogger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(config.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = config.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	router.Use(cors.New(corsConfig))

	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:              config.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/evaluate", s.handleEvaluate)
	api.POST("/lines/through", s.handleLineThrough)
	api.GET("/evaluations/latest", s.handleLatest)
	api.POST("/runs", s.handleRun)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.config.Addr).Msg("api server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

// errorResponse is a helper to send error responses
func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":   true,
		"message": message,
	})
}

// successResponse is a helper to send success responses
func successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
