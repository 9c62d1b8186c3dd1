package system

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ReadinessChecker reports whether backing services are reachable.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// Controller serves liveness, readiness and the Prometheus scrape endpoint.
type Controller struct {
	checker ReadinessChecker
	metrics http.Handler
	logger  zerolog.Logger
}

// New creates the system controller. A nil metrics handler skips /metrics.
func New(checker ReadinessChecker, metrics http.Handler) *Controller {
	return &Controller{
		checker: checker,
		metrics: metrics,
		logger:  log.With().Str("component", "system_controller").Logger(),
	}
}

// RegisterRoutes implements web.Controller.
func (c *Controller) RegisterRoutes(r *gin.Engine) {
	r.GET("/liveness", c.live)
	r.GET("/readyness", c.ready)
	if c.metrics != nil {
		r.GET("/metrics", gin.WrapH(c.metrics))
	}
}

func (c *Controller) live(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (c *Controller) ready(ctx *gin.Context) {
	if err := c.checker.Ready(ctx.Request.Context()); err != nil {
		c.logger.Warn().Err(err).Msg("ready check failed")
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
