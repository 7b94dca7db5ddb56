// Package httpapi serves scanner status and Prometheus metrics over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"emacross-go/internal/metrics"
	"emacross-go/internal/scanner"
	"emacross-go/internal/signal"
)

// StatusSource is the read-only view of the running scanner.
type StatusSource interface {
	State() scanner.State
	Universe() []signal.Symbol
	LastReport() (scanner.CycleReport, bool)
}

// Handler maps HTTP routes onto a StatusSource.
type Handler struct {
	src StatusSource
	log zerolog.Logger
}

// NewHandler wraps src for HTTP access.
func NewHandler(src StatusSource, log zerolog.Logger) *Handler {
	return &Handler{src: src, log: log}
}

// Router builds the gin engine with all routes registered.
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes attaches status and metrics endpoints.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/healthz", h.health)
	r.GET("/status", h.status)
	r.GET("/universe", h.universe)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "state": h.src.State().String()})
}

func (h *Handler) status(c *gin.Context) {
	report, ok := h.src.LastReport()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed scan yet", "state": h.src.State().String()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) universe(c *gin.Context) {
	symbols := h.src.Universe()
	c.JSON(http.StatusOK, gin.H{"count": len(symbols), "symbols": symbols})
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}

// Server owns the listener lifecycle for the status API.
type Server struct {
	srv *http.Server
	log zerolog.Logger
}

// NewServer binds the handler's router to addr.
func NewServer(addr string, h *Handler, log zerolog.Logger) *Server {
	return &Server{
		srv: &http.Server{Addr: addr, Handler: h.Router(), ReadHeaderTimeout: 5 * time.Second},
		log: log,
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.srv.Addr).Msg("status api up")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
