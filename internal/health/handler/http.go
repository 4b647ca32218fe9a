package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Pinger reports whether the backing store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthAPI serves liveness/readiness for Kubernetes, load balancers, and CI.
type HealthAPI struct {
	pinger Pinger
}

// NewHealthAPI returns a health handler. pinger may be nil, in which case
// readiness reports serving unconditionally.
func NewHealthAPI(pinger Pinger) *HealthAPI {
	return &HealthAPI{pinger: pinger}
}

func (a *HealthAPI) RegisterRoutes(r gin.IRouter) {
	r.GET("/healthz", a.Live)
	r.GET("/readyz", a.Ready)
}

func (a *HealthAPI) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *HealthAPI) Ready(c *gin.Context) {
	if a.pinger != nil {
		if err := a.pinger.PingContext(c.Request.Context()); err != nil {
			log.Warn().Err(err).Msg("readiness ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
