package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"poseidon-capital/backend/internal/audit"
	"poseidon-capital/backend/internal/trade/domain"
	"poseidon-capital/backend/internal/trade/repository"
)

type TradeAPI struct {
	repo     repository.Repository
	recorder audit.Recorder
}

func NewTradeAPI(repo repository.Repository, recorder audit.Recorder) *TradeAPI {
	return &TradeAPI{repo: repo, recorder: recorder}
}

func (a *TradeAPI) RegisterRoutes(r gin.IRouter) {
	r.GET("/trades", a.List)
	r.POST("/trades", a.Create)
	r.GET("/trades/:id", a.Get)
	r.PUT("/trades/:id", a.Update)
	r.DELETE("/trades/:id", a.Delete)
}

type updateTradeRequest struct {
	Account     string   `json:"account" binding:"required"`
	Type        string   `json:"type" binding:"required"`
	BuyQuantity *float64 `json:"buyQuantity"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *TradeAPI) List(c *gin.Context) {
	items, err := a.repo.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("list trades")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if items == nil {
		items = []*domain.Trade{}
	}
	c.JSON(http.StatusOK, items)
}

func (a *TradeAPI) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := a.lookup(c, id)
	if t == nil || err != nil {
		return
	}
	c.JSON(http.StatusOK, t)
}

func (a *TradeAPI) Create(c *gin.Context) {
	var t domain.Trade
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	t.ID = 0
	if err := t.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	now := time.Now().UTC()
	t.CreationDate = &now
	if err := a.repo.Create(c.Request.Context(), &t); err != nil {
		log.Error().Err(err).Msg("create trade")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	a.logEvent(c, "trade_created", t.ID)
	c.JSON(http.StatusCreated, &t)
}

func (a *TradeAPI) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	t, err := a.lookup(c, id)
	if t == nil || err != nil {
		return
	}
	t.Account = req.Account
	t.Type = req.Type
	t.BuyQuantity = req.BuyQuantity
	now := time.Now().UTC()
	t.RevisionDate = &now
	if err := t.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := a.repo.Update(c.Request.Context(), t); err != nil {
		log.Error().Err(err).Msg("update trade")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	a.logEvent(c, "trade_updated", id)
	c.JSON(http.StatusOK, t)
}

func (a *TradeAPI) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := a.lookup(c, id)
	if t == nil || err != nil {
		return
	}
	if err := a.repo.Delete(c.Request.Context(), id); err != nil {
		log.Error().Err(err).Msg("delete trade")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	a.logEvent(c, "trade_deleted", id)
	c.Status(http.StatusNoContent)
}

func (a *TradeAPI) lookup(c *gin.Context, id int64) (*domain.Trade, error) {
	t, err := a.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Msg("get trade")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return nil, err
	}
	if t == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: fmt.Sprintf("trade %d not found", id)})
		return nil, nil
	}
	return t, nil
}

func (a *TradeAPI) logEvent(c *gin.Context, action string, id int64) {
	if a.recorder == nil {
		return
	}
	ctx := c.Request.Context()
	a.recorder.LogEvent(ctx, audit.ActorFromContext(ctx), action, "trade", strconv.FormatInt(id, 10), "")
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}
