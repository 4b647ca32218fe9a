package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"poseidon-capital/backend/internal/audit"
	"poseidon-capital/backend/internal/bidlist/domain"
	"poseidon-capital/backend/internal/bidlist/repository"
)

// BidListAPI exposes CRUD over the bid_list table.
type BidListAPI struct {
	repo     repository.Repository
	recorder audit.Recorder
}

func NewBidListAPI(repo repository.Repository, recorder audit.Recorder) *BidListAPI {
	return &BidListAPI{repo: repo, recorder: recorder}
}

// RegisterRoutes registers the bid list routes.
func (a *BidListAPI) RegisterRoutes(r gin.IRouter) {
	r.GET("/bidLists", a.List)
	r.POST("/bidLists", a.Create)
	r.GET("/bidLists/:id", a.Get)
	r.PUT("/bidLists/:id", a.Update)
	r.DELETE("/bidLists/:id", a.Delete)
}

// updateBidListRequest carries the mutable columns. The other columns are
// descriptive data set at creation time.
type updateBidListRequest struct {
	Account     string   `json:"account" binding:"required"`
	Type        string   `json:"type" binding:"required"`
	BidQuantity *float64 `json:"bidQuantity"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *BidListAPI) List(c *gin.Context) {
	items, err := a.repo.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("list bid lists")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if items == nil {
		items = []*domain.BidList{}
	}
	c.JSON(http.StatusOK, items)
}

func (a *BidListAPI) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := a.lookup(c, id)
	if b == nil || err != nil {
		return
	}
	c.JSON(http.StatusOK, b)
}

func (a *BidListAPI) Create(c *gin.Context) {
	var b domain.BidList
	if err := c.ShouldBindJSON(&b); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	b.ID = 0
	if err := b.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	now := time.Now().UTC()
	b.CreationDate = &now
	if err := a.repo.Create(c.Request.Context(), &b); err != nil {
		log.Error().Err(err).Msg("create bid list")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	a.logEvent(c, "bid_list_created", b.ID)
	c.JSON(http.StatusCreated, &b)
}

func (a *BidListAPI) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateBidListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	b, err := a.lookup(c, id)
	if b == nil || err != nil {
		return
	}
	b.Account = req.Account
	b.Type = req.Type
	b.BidQuantity = req.BidQuantity
	now := time.Now().UTC()
	b.RevisionDate = &now
	if err := b.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := a.repo.Update(c.Request.Context(), b); err != nil {
		log.Error().Err(err).Msg("update bid list")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	a.logEvent(c, "bid_list_updated", id)
	c.JSON(http.StatusOK, b)
}

func (a *BidListAPI) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := a.lookup(c, id)
	if b == nil || err != nil {
		return
	}
	if err := a.repo.Delete(c.Request.Context(), id); err != nil {
		log.Error().Err(err).Msg("delete bid list")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	a.logEvent(c, "bid_list_deleted", id)
	c.Status(http.StatusNoContent)
}

// lookup fetches the row for id and writes the HTTP error itself when the row
// is missing or the query fails. Callers bail out on (nil, *) or (*, err).
func (a *BidListAPI) lookup(c *gin.Context, id int64) (*domain.BidList, error) {
	b, err := a.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Msg("get bid list")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return nil, err
	}
	if b == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: fmt.Sprintf("bid list %d not found", id)})
		return nil, nil
	}
	return b, nil
}

func (a *BidListAPI) logEvent(c *gin.Context, action string, id int64) {
	if a.recorder == nil {
		return
	}
	ctx := c.Request.Context()
	a.recorder.LogEvent(ctx, audit.ActorFromContext(ctx), action, "bid_list", strconv.FormatInt(id, 10), "")
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}
