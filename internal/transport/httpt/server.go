// Package httpt implements the HTTP transport: an Echo router exposing the
// MCP JSON-RPC endpoint, a ping-only SSE liveness stream, health, metrics,
// and a small JSON dashboard, wrapped in the auth/rate-limit/logging/
// metrics middleware chain.
package httpt

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nexuslabs/nexus/internal/config"
	"github.com/nexuslabs/nexus/internal/logging"
	"github.com/nexuslabs/nexus/internal/middleware"
	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/router"
	"github.com/nexuslabs/nexus/internal/runtime"
	"github.com/nexuslabs/nexus/internal/scheduler"
)

// Server is the HTTP transport's Echo-based server, built the way the
// teacher builds its own HTTP server: Echo instance, standard middleware,
// registered routes, context-aware graceful Start/Shutdown.
type Server struct {
	config  *config.Config
	echo    *echo.Echo
	metrics *middleware.Metrics
}

// NewServer builds the HTTP transport, wiring route handlers against the
// given router and shared runtime state.
func NewServer(cfg *config.Config, logger *logging.Logger, rt *router.Router, state *runtime.State) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	metrics := middleware.NewMetrics()

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"*"},
	}))
	e.Use(middleware.Logging(logger))
	e.Use(metrics.EchoMetrics())
	e.Use(middleware.RateLimit(cfg.RateLimit))
	e.Use(middleware.Auth(cfg.Auth))

	s := &Server{config: cfg, echo: e, metrics: metrics}
	s.registerRoutes(rt, state)
	return s
}

func (s *Server) registerRoutes(rt *router.Router, state *runtime.State) {
	s.echo.GET("/health", s.handleHealth)
	s.echo.POST("/mcp", s.handleMCP(rt, state))
	s.echo.GET("/sse", s.handleSSE)
	s.echo.GET("/metrics", s.handleMetricsJSON)
	s.echo.GET("/metrics/prometheus", echo.WrapHandler(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))
	s.echo.GET("/dashboard", s.handleDashboard(state))
	s.echo.GET("/dashboard/stats", s.handleDashboardStats(state))
	s.echo.GET("/dashboard/tools", s.handleDashboardTools(state))
	s.echo.GET("/dashboard/memory", s.handleDashboardMemory(state))
	s.echo.GET("/dashboard/secrets", s.handleDashboardSecrets(state))
	s.echo.GET("/dashboard/tasks", s.handleDashboardTasks(state))
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Service: s.config.ServerName,
		Version: s.config.ServerVersion,
	})
}

func (s *Server) handleMetricsJSON(c echo.Context) error {
	return c.JSON(http.StatusOK, s.metrics.Snapshot())
}

func (s *Server) handleMCP(rt *router.Router, state *runtime.State) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req protocol.Request
		if err := c.Bind(&req); err != nil {
			resp := protocol.Failure(protocol.NullID, protocol.ParseError(err.Error()))
			return c.JSON(http.StatusOK, resp)
		}

		if err := req.Validate(); err != nil {
			resp := protocol.Failure(req.ID, protocol.InvalidRequest(err.Error()))
			return c.JSON(http.StatusOK, resp)
		}

		resp := rt.Handle(c.Request().Context(), &req, state)
		return c.JSON(http.StatusOK, resp)
	}
}

// handleSSE streams a ping event every 30 seconds. This is a liveness
// signal, not a full bidirectional transport: MCP requests still go
// through POST /mcp.
func (s *Server) handleSSE(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	counter := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fmt.Fprintf(c.Response(), "event: ping\ndata: {\"count\": %d}\n\n", counter)
			c.Response().Flush()
			counter++
		}
	}
}

// handleDashboard is the combined overview the dashboard landing page
// reads on first load; /dashboard/{stats,tools,memory,secrets,tasks}
// below serve the same data split into the original's five distinct
// read-only JSON views.
func (s *Server) handleDashboard(state *runtime.State) echo.HandlerFunc {
	return func(c echo.Context) error {
		tools := []string{}
		if state.Registry != nil {
			for _, t := range state.Registry.List() {
				tools = append(tools, t.Name)
			}
		}
		return c.JSON(http.StatusOK, map[string]any{
			"server":  s.config.ServerName,
			"version": s.config.ServerVersion,
			"tools":   tools,
			"metrics": s.metrics.Snapshot(),
		})
	}
}

type dashboardStatsResponse struct {
	ServerName    string `json:"server_name"`
	ServerVersion string `json:"server_version"`
	ToolsCount    int    `json:"tools_count"`
	SecretsCount  int    `json:"secrets_count"`
	TasksCount    int    `json:"tasks_count"`
}

func (s *Server) handleDashboardStats(state *runtime.State) echo.HandlerFunc {
	return func(c echo.Context) error {
		toolsCount := 0
		if state.Registry != nil {
			toolsCount = len(state.Registry.List())
		}
		secretsCount := 0
		if state.Vault != nil {
			secretsCount = len(state.Vault.List())
		}
		tasksCount := 0
		if state.Scheduler != nil {
			tasksCount = len(state.Scheduler.ListTasks())
		}
		return c.JSON(http.StatusOK, dashboardStatsResponse{
			ServerName:    s.config.ServerName,
			ServerVersion: s.config.ServerVersion,
			ToolsCount:    toolsCount,
			SecretsCount:  secretsCount,
			TasksCount:    tasksCount,
		})
	}
}

type dashboardToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleDashboardTools(state *runtime.State) echo.HandlerFunc {
	return func(c echo.Context) error {
		infos := []dashboardToolInfo{}
		if state.Registry != nil {
			for _, t := range state.Registry.List() {
				infos = append(infos, dashboardToolInfo{Name: t.Name, Description: t.Description})
			}
		}
		return c.JSON(http.StatusOK, infos)
	}
}

// handleDashboardMemory reports the stored kv-memory key names, the same
// read-only view the original's /api/memory exposes. Values aren't
// included: this is a monitoring surface, not a data-export one.
func (s *Server) handleDashboardMemory(state *runtime.State) echo.HandlerFunc {
	return func(c echo.Context) error {
		keys := []string{}
		if state.Store != nil {
			stored, err := state.Store.KVList(c.Request().Context(), "")
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
			}
			keys = stored
		}
		return c.JSON(http.StatusOK, map[string]any{"kv_keys": keys})
	}
}

// handleDashboardSecrets reports secret names only, never values: the
// vault's List() already withholds values, so this handler can't leak
// them even by accident.
func (s *Server) handleDashboardSecrets(state *runtime.State) echo.HandlerFunc {
	return func(c echo.Context) error {
		names := []string{}
		if state.Vault != nil {
			names = state.Vault.List()
		}
		return c.JSON(http.StatusOK, map[string]any{"keys": names})
	}
}

func (s *Server) handleDashboardTasks(state *runtime.State) echo.HandlerFunc {
	return func(c echo.Context) error {
		tasks := []*scheduler.Task{}
		if state.Scheduler != nil {
			tasks = state.Scheduler.ListTasks()
		}
		return c.JSON(http.StatusOK, tasks)
	}
}

// Metrics exposes the server's metrics collector. Its RecordToolCall counts
// tool-call outcomes; the server itself does not call RecordToolCall.
func (s *Server) Metrics() *middleware.Metrics {
	return s.metrics
}

// Start runs the HTTP server and blocks until ctx is cancelled, then
// performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return http.ErrServerClosed
	}
}

// Echo returns the underlying Echo instance, for tests that want to drive
// requests directly against it.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
