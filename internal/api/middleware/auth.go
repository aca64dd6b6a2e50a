package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/havenhq/haven/backend/internal/models"
	"github.com/havenhq/haven/backend/internal/services"
)

// Context keys populated by RequireLogin.
const (
	ContextUserIDKey    = "userID"
	ContextUsernameKey  = "username"
	ContextRoleKey      = "role"
	ContextSessionIDKey = "sessionID"
)

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/login"

// LandingPath returns the post-login page for a role.
func LandingPath(role models.Role) string {
	if role == models.RoleAdministrator {
		return "/admin"
	}
	return "/"
}

// RequireLogin resolves the session cookie and enforces the idle timeout on
// every request it guards. Missing, tampered, logged-out, and timed-out
// sessions all land on the login page; a valid one puts the identity
// snapshot into the request context.
func RequireLogin(sessions *services.SessionManager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(cookieName)
		if err != nil || value == "" {
			redirectToLogin(c)
			return
		}

		sessionID, err := sessions.ResolveCookie(value)
		if err != nil {
			redirectToLogin(c)
			return
		}

		sess, err := sessions.Current(sessionID)
		if err != nil {
			GetRequestLogger(c).WithError(err).Error("session lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if sess == nil {
			redirectToLogin(c)
			return
		}

		c.Set(ContextUserIDKey, sess.UserID)
		c.Set(ContextUsernameKey, sess.Username)
		c.Set(ContextRoleKey, sess.Role)
		c.Set(ContextSessionIDKey, sess.ID)
		c.Next()
	}
}

// RequireRole gates a route group on a role. Administrators satisfy every
// check. Failure sets a permission-denied flash and sends the user back to
// their landing page.
func RequireRole(sessions *services.SessionManager, required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ContextRoleKey)
		if !ok {
			redirectToLogin(c)
			return
		}
		have, ok := role.(models.Role)
		if !ok || !have.Satisfies(required) {
			if sid, exists := c.Get(ContextSessionIDKey); exists {
				_ = sessions.SetFlash(sid.(string), "You do not have permission to do that.", services.FlashDanger)
			}
			c.Redirect(http.StatusFound, LandingPath(have))
			c.Abort()
			return
		}
		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, LoginPath)
	c.Abort()
}
