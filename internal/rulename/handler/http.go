package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"poseidon-capital/backend/internal/audit"
	"poseidon-capital/backend/internal/rulename/domain"
	"poseidon-capital/backend/internal/rulename/repository"
)

type RuleNameAPI struct {
	repo     repository.Repository
	recorder audit.Recorder
}

func NewRuleNameAPI(repo repository.Repository, recorder audit.Recorder) *RuleNameAPI {
	return &RuleNameAPI{repo: repo, recorder: recorder}
}

func (a *RuleNameAPI) RegisterRoutes(r gin.IRouter) {
	r.GET("/ruleNames", a.List)
	r.POST("/ruleNames", a.Create)
	r.GET("/ruleNames/:id", a.Get)
	r.PUT("/ruleNames/:id", a.Update)
	r.DELETE("/ruleNames/:id", a.Delete)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *RuleNameAPI) List(c *gin.Context) {
	items, err := a.repo.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("list rule names")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if items == nil {
		items = []*domain.RuleName{}
	}
	c.JSON(http.StatusOK, items)
}

func (a *RuleNameAPI) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rn, err := a.lookup(c, id)
	if rn == nil || err != nil {
		return
	}
	c.JSON(http.StatusOK, rn)
}

func (a *RuleNameAPI) Create(c *gin.Context) {
	var rn domain.RuleName
	if err := c.ShouldBindJSON(&rn); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	rn.ID = 0
	if err := rn.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := a.repo.Create(c.Request.Context(), &rn); err != nil {
		log.Error().Err(err).Msg("create rule name")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	a.logEvent(c, "rule_name_created", rn.ID)
	c.JSON(http.StatusCreated, &rn)
}

// Update overwrites all rule name fields; every column is mutable.
func (a *RuleNameAPI) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req domain.RuleName
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	rn, err := a.lookup(c, id)
	if rn == nil || err != nil {
		return
	}
	req.ID = rn.ID
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := a.repo.Update(c.Request.Context(), &req); err != nil {
		log.Error().Err(err).Msg("update rule name")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	a.logEvent(c, "rule_name_updated", id)
	c.JSON(http.StatusOK, &req)
}

func (a *RuleNameAPI) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rn, err := a.lookup(c, id)
	if rn == nil || err != nil {
		return
	}
	if err := a.repo.Delete(c.Request.Context(), id); err != nil {
		log.Error().Err(err).Msg("delete rule name")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	a.logEvent(c, "rule_name_deleted", id)
	c.Status(http.StatusNoContent)
}

func (a *RuleNameAPI) lookup(c *gin.Context, id int64) (*domain.RuleName, error) {
	rn, err := a.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Msg("get rule name")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return nil, err
	}
	if rn == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: fmt.Sprintf("rule name %d not found", id)})
		return nil, nil
	}
	return rn, nil
}

func (a *RuleNameAPI) logEvent(c *gin.Context, action string, id int64) {
	if a.recorder == nil {
		return
	}
	ctx := c.Request.Context()
	a.recorder.LogEvent(ctx, audit.ActorFromContext(ctx), action, "rule_name", strconv.FormatInt(id, 10), "")
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}
