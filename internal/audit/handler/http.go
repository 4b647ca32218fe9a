package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	auditrepo "poseidon-capital/backend/internal/audit/repository"
)

const defaultLimit = 50

// AuditAPI exposes the audit trail for one resource, newest first.
type AuditAPI struct {
	repo auditrepo.Repository
}

func NewAuditAPI(repo auditrepo.Repository) *AuditAPI {
	return &AuditAPI{repo: repo}
}

func (a *AuditAPI) RegisterRoutes(r gin.IRouter) {
	r.GET("/auditLogs", a.List)
}

type auditLogResponse struct {
	ID         string    `json:"id"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resourceId"`
	IP         string    `json:"ip"`
	Metadata   string    `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *AuditAPI) List(c *gin.Context) {
	resource := c.Query("resource")
	resourceID := c.Query("resourceId")
	if resource == "" || resourceID == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "resource and resourceId are required"})
		return
	}
	limit := int64(defaultLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	entries, err := a.repo.ListByResource(c.Request.Context(), resource, resourceID, int32(limit))
	if err != nil {
		log.Error().Err(err).Msg("list audit logs")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	out := make([]auditLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditLogResponse{
			ID:         e.ID,
			Actor:      e.Actor,
			Action:     e.Action,
			Resource:   e.Resource,
			ResourceID: e.ResourceID,
			IP:         e.IP,
			Metadata:   e.Metadata,
			CreatedAt:  e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}
