package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relaydesk/relaybot/core/buildinfo"
	"github.com/relaydesk/relaybot/core/logger"
	"log/slog"
)

// Pinger is the database liveness probe used by the readiness check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server exposes /healthz and /metrics over plain HTTP, off the bot's
// update path.
type Server struct {
	srv *http.Server
}

// NewServer builds the listener. db may be nil, in which case the
// readiness check reports only process liveness.
func NewServer(listen string, db Pinger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", healthzHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{
		srv: &http.Server{
			Addr:              listen,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func healthzHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"version": buildinfo.Version,
		}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				body["status"] = "degraded"
				body["db"] = "down"
				c.JSON(http.StatusServiceUnavailable, body)
				return
			}
			body["db"] = "up"
		}
		c.JSON(http.StatusOK, body)
	}
}

// Start begins serving in the background. Listen failures are logged, not
// fatal: the bot keeps running without the health endpoint.
func (s *Server) Start() {
	go func() {
		logger.Health.Info("health listener starting",
			slog.String("event", "health.start"),
			slog.String("addr", s.srv.Addr),
		)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Health.Error("health listener failed",
				slog.String("event", "health.error"),
				slog.String("err", err.Error()),
			)
		}
	}()
}

// Shutdown drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
