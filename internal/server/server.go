// Package server exposes the log diagnosis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/yildizm/mclogsum/internal/ai"
	"github.com/yildizm/mclogsum/internal/ai/providers/gemini"
	"github.com/yildizm/mclogsum/internal/common"
	"github.com/yildizm/mclogsum/internal/config"
	"github.com/yildizm/mclogsum/internal/logger"
	"github.com/yildizm/mclogsum/internal/upload"
)

// Diagnoser runs field extraction and classification
type Diagnoser interface {
	Extract(log string) common.Fields
	Diagnose(log string) *common.Report
}

// Forwarder relays a raw Gemini request body upstream
type Forwarder interface {
	Forward(ctx context.Context, body []byte) (*gemini.ProxyResponse, error)
}

// Options wires the server's collaborators. Summarizer and Forwarder may
// be nil, in which case the AI routes answer 503.
type Options struct {
	Config     *config.Config
	Diagnoser  Diagnoser
	Uploads    *upload.Store
	Summarizer ai.Summarizer
	Forwarder  Forwarder
	Logger     *logger.Logger
	Version    string
}

// Server is the HTTP API
type Server struct {
	echo       *echo.Echo
	cfg        *config.Config
	diagnoser  Diagnoser
	uploads    *upload.Store
	summarizer ai.Summarizer
	forwarder  Forwarder
	log        *logger.Logger
	version    string
}

// New builds the echo instance with middleware and routes
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("server: config is required")
	}
	if opts.Diagnoser == nil {
		return nil, errors.New("server: diagnoser is required")
	}
	if opts.Uploads == nil {
		return nil, errors.New("server: upload store is required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.New("server", nil)
	}

	s := &Server{
		echo:       echo.New(),
		cfg:        opts.Config,
		diagnoser:  opts.Diagnoser,
		uploads:    opts.Uploads,
		summarizer: opts.Summarizer,
		forwarder:  opts.Forwarder,
		log:        opts.Logger,
		version:    opts.Version,
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = ErrorHandler(s.log)

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Handler returns the underlying http.Handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10,
	}))

	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health"
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []logger.Field{
				logger.F("method", v.Method),
				logger.F("uri", v.URI),
				logger.F("status", v.Status),
				logger.F("request_id", v.RequestID),
				logger.Duration(v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, logger.Error(v.Error))
			}
			s.log.InfoWithFields("request", fields)
			return nil
		},
	}))

	if limit := s.cfg.Server.BodyLimit; limit != "" {
		s.echo.Use(middleware.BodyLimit(limit))
	}

	origins := s.cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api")
	api.POST("/extract", s.handleExtract)
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/gemini", s.handleGemini)

	s.echo.POST("/proxy/gemini", s.handleProxy)

	if dir := s.cfg.Server.StaticDir; dir != "" {
		s.echo.Static("/", dir)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.cfg.Server.Address)
	}()

	s.log.InfoWithFields("server started", []logger.Field{
		logger.F("address", s.cfg.Server.Address),
		logger.F("ai", s.summarizer != nil),
	})

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}
