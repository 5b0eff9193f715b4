package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appconfig "github.com/agentdesk/deepresearch/config"
	agentcore "github.com/agentdesk/deepresearch/internal/agent/core"
	"github.com/agentdesk/deepresearch/internal/agent/runtime"
	agenttele "github.com/agentdesk/deepresearch/internal/agent/telemetry"
	"github.com/agentdesk/deepresearch/provider"
)

// Server exposes the pipeline over HTTP.
type Server struct {
	manager   *agentcore.Manager
	telemetry *agenttele.Telemetry
}

type researchRequest struct {
	Query string `json:"query"`
}

// New assembles the echo routes for an already-wired pipeline.
func New(manager *agentcore.Manager, tele *agenttele.Telemetry) (*Server, *echo.Echo) {
	s := &Server{manager: manager, telemetry: tele}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(tele.Registry(), promhttp.HandlerOpts{})))

	api := e.Group("/api")
	api.POST("/research", s.handleResearch)
	api.GET("/agents", s.handleAgents)
	api.GET("/runs/:id/trace", s.handleTrace)

	return s, e
}

// Run wires configuration, provider, telemetry and registry together
// and serves until the process is signalled.
func Run(cfg *appconfig.Config) error {
	prov, err := provider.NewProvider(cfg.LLM)
	if err != nil {
		return err
	}
	tele := agenttele.NewTelemetry(cfg.Telemetry)
	registry := runtime.NewRegistry()
	manager := agentcore.NewManager(cfg, prov, tele, registry)

	_, e := New(manager, tele)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		_ = e.Shutdown(context.Background())
	}()

	if err := e.Start(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleResearch(c echo.Context) error {
	var req researchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	report, err := s.manager.Run(c.Request().Context(), req.Query)
	if err != nil {
		var perr *agentcore.PipelineError
		if errors.As(err, &perr) {
			return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("pipeline stage %s failed", perr.Stage))
		}
		return err
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) handleAgents(c echo.Context) error {
	return c.JSON(http.StatusOK, s.manager.Agents())
}

func (s *Server) handleTrace(c echo.Context) error {
	events := s.telemetry.Events(c.Param("id"))
	if len(events) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no trace for run")
	}
	return c.JSON(http.StatusOK, events)
}
