package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/havenhq/haven/backend/internal/api/middleware"
	"github.com/havenhq/haven/backend/internal/services"
)

// AuthHandler owns the login surface: credential check, session cookie,
// logout, identity snapshot, flash retrieval, and self-service password
// change.
type AuthHandler struct {
	auth       *services.AuthService
	cookieName string
	production bool
}

func NewAuthHandler(auth *services.AuthService, cookieName string, production bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieName: cookieName, production: production}
}

// setSecureCookie sets the session cookie with security best practices:
// http-only, SameSite=Strict, Secure in production.
func (h *AuthHandler) setSecureCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookieName, value, maxAge, "/", "", h.production, true)
}

// clearSecureCookie expires the session cookie immediately.
func (h *AuthHandler) clearSecureCookie(c *gin.Context) {
	h.setSecureCookie(c, "", -1)
}

type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Login accepts the login form, starts a session on success, and redirects
// to the role's landing page. Every rejection carries the same generic
// message.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	sess, err := h.auth.Login(req.Username, req.Password, c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": services.ErrInvalidCredentials.Error()})
			return
		}
		h.fail(c, err)
		return
	}

	cookie, err := h.auth.Sessions().IssueCookie(sess.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.setSecureCookie(c, cookie, int(h.auth.Sessions().Lifetime().Seconds()))

	_ = h.auth.Sessions().SetFlash(sess.ID, "Welcome back, "+sess.FullName+".", services.FlashSuccess)
	c.Redirect(http.StatusSeeOther, middleware.LandingPath(sess.Role))
}

// Logout destroys the session, expires the cookie, and lands on the login
// page. Safe to call without an active session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if value, err := c.Cookie(h.cookieName); err == nil && value != "" {
		if sessionID, err := h.auth.Sessions().ResolveCookie(value); err == nil {
			if err := h.auth.Logout(sessionID, c.ClientIP()); err != nil {
				h.fail(c, err)
				return
			}
		}
	}
	h.clearSecureCookie(c)
	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// Me returns the authenticated user's current record.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.GetUser(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"full_name": user.FullName,
		"role":      user.Role,
	})
}

// Flash takes and clears the pending one-shot message for the session.
func (h *AuthHandler) Flash(c *gin.Context) {
	sessionID := c.GetString(middleware.ContextSessionIDKey)
	message, severity, ok := h.auth.Sessions().TakeFlash(sessionID)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "severity": severity})
}

type ChangePasswordRequest struct {
	OldPassword string `form:"old_password" json:"old_password" binding:"required"`
	NewPassword string `form:"new_password" json:"new_password" binding:"required,min=6"`
}

// ChangePassword lets the authenticated user rotate their own password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "new password must be at least 6 characters"})
		return
	}

	err := h.auth.ChangePassword(currentUserID(c), req.OldPassword, req.NewPassword, c.ClientIP())
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "current password is incorrect"})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// fail logs a persistence failure and answers with a generic message. The
// underlying error only leaks outside production.
func (h *AuthHandler) fail(c *gin.Context, err error) {
	failWithError(c, err, h.production)
}
