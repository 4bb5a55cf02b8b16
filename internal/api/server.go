// Package api provides the control-plane HTTP API for Shuttle.
// It uses Echo framework to serve REST endpoints for project lifecycle
// management, certificate uploads and container log streaming.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/shuttle-hq/shuttle-sub002/internal/auth"
	"github.com/shuttle-hq/shuttle-sub002/internal/backend"
	"github.com/shuttle-hq/shuttle-sub002/internal/config"
	"github.com/shuttle-hq/shuttle-sub002/internal/gateway"
	"github.com/shuttle-hq/shuttle-sub002/internal/proxy"
)

// Server represents the Shuttle control-plane API server.
type Server struct {
	echo       *echo.Echo
	projects   *gateway.Service
	backend    backend.Backend
	resolver   *proxy.CertResolver
	config     *config.Config
	authMiddle *auth.Middleware
	validate   *validator.Validate
}

// debugLog logs a message only if debug mode is enabled in config
func (s *Server) debugLog(format string, args ...interface{}) {
	if s.config.Server.Debug {
		log.Printf(format, args...)
	}
}

// New creates a new API server instance.
func New(cfg *config.Config, projects *gateway.Service, be backend.Backend, resolver *proxy.CertResolver) *Server {
	e := echo.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug

	// Set custom error handler
	e.HTTPErrorHandler = HTTPErrorHandler

	server := &Server{
		echo:       e,
		projects:   projects,
		backend:    be,
		resolver:   resolver,
		config:     cfg,
		authMiddle: auth.NewMiddleware(cfg),
		validate:   validator.New(),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	// Logger middleware
	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${time_rfc3339}] ${status} ${method} ${uri} (${latency_human})\n",
	}))

	// Recover middleware
	s.echo.Use(middleware.Recover())

	// CORS middleware
	if len(s.config.Security.AllowedOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.config.Security.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Rate limiting
	if s.config.Security.RateLimit > 0 {
		s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
			rate.Limit(s.config.Security.RateLimit),
		)))
	}

	// Content-Type validation middleware for API routes
	s.echo.Use(ValidateContentType)
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/", s.healthCheck)

	// API v1 group
	v1 := s.echo.Group("/api/v1")

	// Project routes
	projects := v1.Group("/projects")
	projects.GET("", s.listProjects, s.authMiddle.RequireAuth)
	projects.POST("", s.createProject, s.authMiddle.RequireAuth)
	projects.GET("/:name", s.getProject, ValidateProjectName, s.authMiddle.RequireAuth)
	projects.DELETE("/:name", s.deleteProject, ValidateProjectName, s.authMiddle.RequireAuth)
	projects.POST("/:name/wake", s.wakeProject, ValidateProjectName, s.authMiddle.RequireAuth)
	projects.GET("/:name/status", s.projectStatus, ValidateProjectName, s.authMiddle.RequireAuth)
	projects.GET("/:name/logs", s.projectLogs, ValidateProjectName, s.authMiddle.RequireAuth)

	// Certificate routes (operator only)
	v1.POST("/certificates", s.uploadCertificate, s.authMiddle.RequireAdmin)
}

// healthCheck handles GET /health
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"projects": len(s.projects.List()),
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	log.Printf("starting control-plane API on http://%s", addr)

	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout

	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
