package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"poseidon-capital/backend/internal/keycloak"
	"poseidon-capital/backend/internal/user/domain"
	"poseidon-capital/backend/internal/user/service"
)

// UserAPI exposes the user lifecycle over HTTP. All mutations go through the
// service so the provider account and the local record stay linked.
type UserAPI struct {
	svc *service.Service
}

func NewUserAPI(svc *service.Service) *UserAPI {
	return &UserAPI{svc: svc}
}

// RegisterRoutes registers the user routes.
func (a *UserAPI) RegisterRoutes(r gin.IRouter) {
	r.GET("/users", a.List)
	r.POST("/users", a.Create)
	r.GET("/users/:id", a.Get)
	r.PUT("/users/:id", a.Update)
	r.DELETE("/users/:id", a.Delete)
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Fullname string `json:"fullname" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type updateUserRequest struct {
	Fullname string `json:"fullname" binding:"required"`
	Role     string `json:"role" binding:"required"`
	// Password is optional; empty means "keep the current credential".
	Password string `json:"password"`
}

type userResponse struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Fullname   string `json:"fullname"`
	Role       string `json:"role"`
	KeycloakID string `json:"keycloakId"`
}

func toResponse(u *domain.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Username:   u.Username,
		Fullname:   u.Fullname,
		Role:       string(u.Role),
		KeycloakID: u.KeycloakID,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *UserAPI) List(c *gin.Context) {
	users, err := a.svc.ListUsers(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("list users")
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	c.JSON(http.StatusOK, out)
}

func (a *UserAPI) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := a.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, toResponse(u))
}

func (a *UserAPI) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	u := &domain.User{
		Username: req.Username,
		Password: req.Password,
		Fullname: req.Fullname,
		Role:     domain.Role(req.Role),
	}
	if err := u.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := a.svc.CreateUser(c.Request.Context(), u); err != nil {
		writeError(c, "create user", err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(u))
}

func (a *UserAPI) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	role := domain.Role(req.Role)
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "role must be one of ADMIN or USER"})
		return
	}
	if err := a.svc.UpdateUser(c.Request.Context(), id, req.Fullname, role, req.Password); err != nil {
		writeError(c, "update user", err)
		return
	}
	u, err := a.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, "get user after update", err)
		return
	}
	c.JSON(http.StatusOK, toResponse(u))
}

func (a *UserAPI) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.svc.DeleteUser(c.Request.Context(), id); err != nil {
		writeError(c, "delete user", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

// writeError maps lifecycle errors onto HTTP statuses. Known conditions keep
// their specific status; anything else is an opaque 500 with the detail logged
// server side only.
func writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "user not found"})
	case errors.Is(err, keycloak.ErrDuplicateAccount):
		c.JSON(http.StatusConflict, errorResponse{Error: "username already exists"})
	case errors.Is(err, keycloak.ErrInvalidPassword):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "password rejected by provider policy"})
	default:
		log.Error().Err(err).Msg(op)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
