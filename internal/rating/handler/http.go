package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"poseidon-capital/backend/internal/audit"
	"poseidon-capital/backend/internal/rating/domain"
	"poseidon-capital/backend/internal/rating/repository"
)

type RatingAPI struct {
	repo     repository.Repository
	recorder audit.Recorder
}

func NewRatingAPI(repo repository.Repository, recorder audit.Recorder) *RatingAPI {
	return &RatingAPI{repo: repo, recorder: recorder}
}

func (a *RatingAPI) RegisterRoutes(r gin.IRouter) {
	r.GET("/ratings", a.List)
	r.POST("/ratings", a.Create)
	r.GET("/ratings/:id", a.Get)
	r.PUT("/ratings/:id", a.Update)
	r.DELETE("/ratings/:id", a.Delete)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *RatingAPI) List(c *gin.Context) {
	items, err := a.repo.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("list ratings")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if items == nil {
		items = []*domain.Rating{}
	}
	c.JSON(http.StatusOK, items)
}

func (a *RatingAPI) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rt, err := a.lookup(c, id)
	if rt == nil || err != nil {
		return
	}
	c.JSON(http.StatusOK, rt)
}

func (a *RatingAPI) Create(c *gin.Context) {
	var rt domain.Rating
	if err := c.ShouldBindJSON(&rt); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	rt.ID = 0
	if err := rt.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := a.repo.Create(c.Request.Context(), &rt); err != nil {
		log.Error().Err(err).Msg("create rating")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	a.logEvent(c, "rating_created", rt.ID)
	c.JSON(http.StatusCreated, &rt)
}

// Update overwrites all rating fields; every column is mutable.
func (a *RatingAPI) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.Rating
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	rt, err := a.lookup(c, id)
	if rt == nil || err != nil {
		return
	}
	req.ID = rt.ID
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := a.repo.Update(c.Request.Context(), &req); err != nil {
		log.Error().Err(err).Msg("update rating")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	a.logEvent(c, "rating_updated", id)
	c.JSON(http.StatusOK, &req)
}

func (a *RatingAPI) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rt, err := a.lookup(c, id)
	if rt == nil || err != nil {
		return
	}
	if err := a.repo.Delete(c.Request.Context(), id); err != nil {
		log.Error().Err(err).Msg("delete rating")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	a.logEvent(c, "rating_deleted", id)
	c.Status(http.StatusNoContent)
}

func (a *RatingAPI) lookup(c *gin.Context, id int64) (*domain.Rating, error) {
	rt, err := a.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Msg("get rating")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return nil, err
	}
	if rt == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: fmt.Sprintf("rating %d not found", id)})
		return nil, nil
	}
	return rt, nil
}

func (a *RatingAPI) logEvent(c *gin.Context, action string, id int64) {
	if a.recorder == nil {
		return
	}
	ctx := c.Request.Context()
	a.recorder.LogEvent(ctx, audit.ActorFromContext(ctx), action, "rating", strconv.FormatInt(id, 10), "")
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}
