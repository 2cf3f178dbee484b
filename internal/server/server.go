// Package server exposes the data-provider HTTP API consumed by the
// dashboard: alerts and their lifecycle transitions, reference data, the ML
// model registry, dashboard metrics, and a websocket stream of push events.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/njnj03/homewatch/internal/config"
	"github.com/njnj03/homewatch/internal/eventbus"
	"github.com/njnj03/homewatch/internal/sqlite"
)

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app     *fiber.App
	config  *config.Config
	sqlite  *sqlite.DB
	bus     *eventbus.Bus
	log     *slog.Logger
	version string
}

// Options contains the dependencies needed to construct a Server.
type Options struct {
	Config  *config.Config
	SQLite  *sqlite.DB
	Bus     *eventbus.Bus
	Logger  *slog.Logger
	Version string
}

// New builds the server and registers all routes.
func New(opts Options) *Server {
	s := &Server{
		config:  opts.Config,
		sqlite:  opts.SQLite,
		bus:     opts.Bus,
		log:     opts.Logger.With("component", "server"),
		version: opts.Version,
	}

	s.app = fiber.New(fiber.Config{
		ReadTimeout:           opts.Config.Server.HTTPServerTimeout,
		WriteTimeout:          opts.Config.Server.HTTPServerTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	s.app.Use(s.requestMetrics)
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/metrics", s.handlePrometheusMetrics)

	api := s.app.Group("/api/v1")
	api.Get("/meta", s.handleGetMeta)
	api.Get("/metrics", s.handleGetDashboardMetrics)

	api.Get("/alerts", s.handleListAlerts)
	api.Get("/alerts/stream", s.upgradeStream, websocket.New(s.handleAlertStream))
	api.Get("/alerts/:alertID", s.handleGetAlert)
	api.Post("/alerts/:alertID/acknowledge", s.handleAcknowledgeAlert)
	api.Post("/alerts/:alertID/resolve", s.handleResolveAlert)
	api.Post("/alerts/:alertID/dismiss", s.handleDismissAlert)

	api.Get("/houses", s.handleListHouses)
	api.Get("/devices", s.handleListDevices)

	api.Get("/models", s.handleListModels)
	api.Get("/models/active", s.handleGetActiveModel)
	api.Post("/models", s.handleCreateModel)
	api.Get("/models/:modelID", s.handleGetModel)
	api.Put("/models/:modelID", s.handleUpdateModel)
	api.Delete("/models/:modelID", s.handleDeleteModel)
	api.Post("/models/:modelID/activate", s.handleActivateModel)
}

// Start begins listening for HTTP connections. It blocks until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.log.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		return s.app.Shutdown()
	}
	return s.app.ShutdownWithTimeout(time.Until(deadline))
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	return SendError(c, code, err.Error())
}

func (s *Server) requestMetrics(c *fiber.Ctx) error {
	err := c.Next()
	name := fmt.Sprintf("homewatch_http_requests_total{method=%q,path=%q,status=\"%d\"}",
		c.Method(), c.Route().Path, c.Response().StatusCode())
	metrics.GetOrCreateCounter(name).Inc()
	return err
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return SendSuccess(c, fiber.StatusOK, fiber.Map{"status": "healthy"})
}

func (s *Server) handlePrometheusMetrics(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	metrics.WritePrometheus(c.Response().BodyWriter(), true)
	return nil
}
