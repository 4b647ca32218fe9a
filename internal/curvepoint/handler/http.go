package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"poseidon-capital/backend/internal/audit"
	"poseidon-capital/backend/internal/curvepoint/domain"
	"poseidon-capital/backend/internal/curvepoint/repository"
)

type CurvePointAPI struct {
	repo     repository.Repository
	recorder audit.Recorder
}

func NewCurvePointAPI(repo repository.Repository, recorder audit.Recorder) *CurvePointAPI {
	return &CurvePointAPI{repo: repo, recorder: recorder}
}

func (a *CurvePointAPI) RegisterRoutes(r gin.IRouter) {
	r.GET("/curvePoints", a.List)
	r.POST("/curvePoints", a.Create)
	r.GET("/curvePoints/:id", a.Get)
	r.PUT("/curvePoints/:id", a.Update)
	r.DELETE("/curvePoints/:id", a.Delete)
}

type updateCurvePointRequest struct {
	CurveID *int32   `json:"curveId" binding:"required"`
	Term    *float64 `json:"term"`
	Value   *float64 `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *CurvePointAPI) List(c *gin.Context) {
	items, err := a.repo.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("list curve points")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if items == nil {
		items = []*domain.CurvePoint{}
	}
	c.JSON(http.StatusOK, items)
}

func (a *CurvePointAPI) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := a.lookup(c, id)
	if p == nil || err != nil {
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *CurvePointAPI) Create(c *gin.Context) {
	var p domain.CurvePoint
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	p.ID = 0
	if err := p.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	now := time.Now().UTC()
	p.CreationDate = &now
	if err := a.repo.Create(c.Request.Context(), &p); err != nil {
		log.Error().Err(err).Msg("create curve point")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	a.logEvent(c, "curve_point_created", p.ID)
	c.JSON(http.StatusCreated, &p)
}

func (a *CurvePointAPI) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateCurvePointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	p, err := a.lookup(c, id)
	if p == nil || err != nil {
		return
	}
	p.CurveID = req.CurveID
	p.Term = req.Term
	p.Value = req.Value
	if err := p.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := a.repo.Update(c.Request.Context(), p); err != nil {
		log.Error().Err(err).Msg("update curve point")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	a.logEvent(c, "curve_point_updated", id)
	c.JSON(http.StatusOK, p)
}

func (a *CurvePointAPI) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := a.lookup(c, id)
	if p == nil || err != nil {
		return
	}
	if err := a.repo.Delete(c.Request.Context(), id); err != nil {
		log.Error().Err(err).Msg("delete curve point")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	a.logEvent(c, "curve_point_deleted", id)
	c.Status(http.StatusNoContent)
}

func (a *CurvePointAPI) lookup(c *gin.Context, id int64) (*domain.CurvePoint, error) {
	p, err := a.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Msg("get curve point")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return nil, err
	}
	if p == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: fmt.Sprintf("curve point %d not found", id)})
		return nil, nil
	}
	return p, nil
}

func (a *CurvePointAPI) logEvent(c *gin.Context, action string, id int64) {
	if a.recorder == nil {
		return
	}
	ctx := c.Request.Context()
	a.recorder.LogEvent(ctx, audit.ActorFromContext(ctx), action, "curve_point", strconv.FormatInt(id, 10), "")
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}
