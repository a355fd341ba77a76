// Package httpapi provides the HTTP surface of the ledger.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/elee1766/chatledger/src/chat"
	"github.com/elee1766/chatledger/src/ledger"
)

// ChatSender answers chat messages
type ChatSender interface {
	Send(ctx context.Context, content string) (*chat.Reply, error)
	Defaults() chat.Defaults
}

// Handler handles HTTP requests.
type Handler struct {
	ledger   *ledger.Ledger
	chat     ChatSender
	defaults chat.Defaults
	version  string
	logger   *slog.Logger
}

// HandlerConfig holds configuration for creating a new Handler
type HandlerConfig struct {
	Ledger *ledger.Ledger
	// Chat may be nil when no provider is configured; /chat then answers 503
	Chat ChatSender
	// Defaults fill session fields a request leaves out
	Defaults chat.Defaults
	Version  string
	Logger   *slog.Logger
}

// NewHandler creates a new handler.
func NewHandler(config HandlerConfig) *Handler {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	defaults := config.Defaults
	if config.Chat != nil && defaults.Provider == "" {
		defaults = config.Chat.Defaults()
	}
	return &Handler{
		ledger:   config.Ledger,
		chat:     config.Chat,
		defaults: defaults,
		version:  config.Version,
		logger:   config.Logger.With("component", "httpapi"),
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	e.POST("/chat", h.Chat)
	e.GET("/chat/history", h.History)
	e.POST("/chat/archive", h.Archive)

	e.POST("/sessions", h.StartSession)
	e.GET("/sessions", h.ListSessions)
	e.GET("/sessions/active", h.ActiveSession)

	admin := e.Group("/admin")
	admin.GET("/messages", h.SearchMessages)
	admin.GET("/stats", h.MessageStats)
	admin.POST("/archive", h.Archive)
	admin.POST("/sessions", h.StartSession)
	admin.GET("/sessions", h.ListSessions)

	e.GET("/traces", h.ListTraces)
	e.GET("/traces/stats", h.PerformanceStats)
	e.GET("/traces/rollups", h.ListRollups)
	e.GET("/traces/:id", h.GetTrace)
	e.POST("/traces/:id/rate", h.RateTrace)

	bench := e.Group("/bench")
	bench.POST("/runs", h.CreateBenchRun)
	bench.GET("/runs", h.ListBenchRuns)
	bench.GET("/runs/:id", h.GetBenchRun)
	bench.POST("/runs/:id/turns", h.AddBenchTurn)
	bench.POST("/runs/:id/probes", h.AddBenchProbe)
	bench.PUT("/runs/:id/scores", h.SetBenchScores)
	bench.POST("/runs/:id/finalize", h.FinalizeBenchRun)
	bench.GET("/summary", h.BenchSummary)
}

// HostInfo describes the machine serving the API
type HostInfo struct {
	Hostname      string `json:"hostname"`
	Platform      string `json:"platform"`
	UptimeSeconds uint64 `json:"uptime_seconds"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string    `json:"status"`
	Version string    `json:"version"`
	Time    time.Time `json:"time"`
	Host    *HostInfo `json:"host,omitempty"`
}

// Health returns health status.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	ctx := c.Request().Context()
	resp := HealthResponse{
		Status:  "healthy",
		Version: h.version,
		Time:    time.Now().UTC(),
	}

	if _, _, err := h.ledger.ActiveSessionID(ctx); err != nil {
		resp.Status = "degraded"
	}

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		h.logger.Debug("host info unavailable", "error", err)
	} else {
		resp.Host = &HostInfo{
			Hostname:      info.Hostname,
			Platform:      info.Platform,
			UptimeSeconds: info.Uptime,
		}
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, resp)
}
