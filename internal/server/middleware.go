package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"poseidon-capital/backend/internal/audit"
)

// ActorHeader names the authenticated principal, set by the fronting auth
// proxy. Absent header means audit entries record the unknown actor.
const ActorHeader = "X-Remote-User"

const requestIDHeader = "X-Request-ID"

var tracer = otel.Tracer("poseidon-capital/backend/internal/server")

// RequestContext stamps every request with an id, a trace span, and the
// acting principal, then logs the outcome.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Writer.Header().Set(requestIDHeader, requestID)

		ctx := c.Request.Context()
		if actor := c.GetHeader(ActorHeader); actor != "" {
			ctx = audit.WithActor(ctx, actor)
		}
		ctx = audit.WithClientIP(ctx, c.ClientIP())
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+c.FullPath())
		defer span.End()
		span.SetAttributes(attribute.String("request.id", requestID))
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		log.Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
