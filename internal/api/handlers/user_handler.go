package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/havenhq/haven/backend/internal/models"
	"github.com/havenhq/haven/backend/internal/services"
)

// UserHandler covers administrator-only user management: provisioning,
// profile edits, status toggles, and password resets.
type UserHandler struct {
	auth       *services.AuthService
	production bool
}

func NewUserHandler(auth *services.AuthService, production bool) *UserHandler {
	return &UserHandler{auth: auth, production: production}
}

func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/users", h.List)
	r.POST("/users", h.Create)
	r.GET("/users/:id", h.Get)
	r.PUT("/users/:id", h.Update)
	r.PUT("/users/:id/status", h.ToggleStatus)
	r.POST("/users/:id/password", h.ResetPassword)
}

// List returns all accounts ordered by full name. The hash never serializes.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.auth.ListUsers()
	if err != nil {
		failWithError(c, err, h.production)
		return
	}
	c.JSON(http.StatusOK, users)
}

type CreateUserRequest struct {
	Username string      `form:"username" json:"username" binding:"required"`
	FullName string      `form:"full_name" json:"full_name" binding:"required"`
	Password string      `form:"password" json:"password" binding:"required,min=6"`
	Role     models.Role `form:"role" json:"role" binding:"required,oneof=agent administrator"`
}

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.CreateUser(currentUserID(c), req.Username, req.FullName, req.Password, req.Role, c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrDuplicateUsername) {
			c.JSON(http.StatusConflict, gin.H{"error": services.ErrDuplicateUsername.Error()})
			return
		}
		failWithError(c, err, h.production)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	user, err := h.auth.GetUser(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type UpdateUserRequest struct {
	FullName string      `form:"full_name" json:"full_name" binding:"required"`
	Role     models.Role `form:"role" json:"role" binding:"required,oneof=agent administrator"`
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.auth.UpdateProfile(currentUserID(c), id, req.FullName, req.Role, c.ClientIP()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user updated"})
}

type ToggleStatusRequest struct {
	Active *bool `form:"active" json:"active" binding:"required"`
}

// ToggleStatus activates or deactivates an account. Self-deactivation and
// any change to the root admin come back as 403.
func (h *UserHandler) ToggleStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req ToggleStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active flag is required"})
		return
	}
	if err := h.auth.ToggleStatus(currentUserID(c), id, *req.Active, c.ClientIP()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

type ResetPasswordRequest struct {
	Password string `form:"password" json:"password" binding:"required,min=6"`
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req ResetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters"})
		return
	}
	if err := h.auth.ResetPassword(currentUserID(c), id, req.Password, c.ClientIP()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password reset"})
}

func (h *UserHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": services.ErrNotFound.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": services.ErrForbidden.Error()})
	default:
		failWithError(c, err, h.production)
	}
}

// idParam parses the :id path segment, answering 400 itself on garbage.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
