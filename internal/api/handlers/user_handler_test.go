package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/havenhq/haven/backend/internal/api/handlers"
	"github.com/havenhq/haven/backend/internal/api/middleware"
	"github.com/havenhq/haven/backend/internal/models"
	"github.com/havenhq/haven/backend/internal/services"
)

type userFixture struct {
	router *gin.Engine
	db     *gorm.DB
	admin  *models.User
}

// setupUserRouter wires the user-management routes behind a stub identity
// middleware acting as the given administrator.
func setupUserRouter(t *testing.T) *userFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := handlers.OpenTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Session{}, &models.AuditLogEntry{}))

	admin := &models.User{Username: "aokafor", FullName: "Ada Okafor", Role: models.RoleAdministrator, Active: true}
	require.NoError(t, admin.SetPassword("Secret1!"))
	require.NoError(t, db.Create(admin).Error)

	sessions := services.NewSessionManager(services.NewMemorySessionStore(), time.Hour, "test-secret")
	authService := services.NewAuthService(db, sessions, services.NewAuditService(db), services.NewNotifyService(""))
	handler := handlers.NewUserHandler(authService, false)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, admin.ID)
		c.Set(middleware.ContextRoleKey, models.RoleAdministrator)
		c.Next()
	})
	group := router.Group("/")
	handler.RegisterRoutes(group)

	return &userFixture{router: router, db: db, admin: admin}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func postJSON(router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUserHandler_Create(t *testing.T) {
	f := setupUserRouter(t)

	w := postJSON(f.router, "POST", "/users", map[string]string{
		"username":  "mrivera",
		"full_name": "Marta Rivera",
		"password":  "Secret1!",
		"role":      "agent",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	// the password hash never serializes
	assert.NotContains(t, w.Body.String(), "password_hash")

	var created models.User
	require.NoError(t, f.db.Where("username = ?", "mrivera").First(&created).Error)
	assert.True(t, created.Active)
	assert.True(t, created.CheckPassword("Secret1!"))
}

func TestUserHandler_Create_Duplicate(t *testing.T) {
	f := setupUserRouter(t)

	payload := map[string]string{
		"username":  "mrivera",
		"full_name": "Marta Rivera",
		"password":  "Secret1!",
		"role":      "agent",
	}
	assert.Equal(t, http.StatusCreated, postJSON(f.router, "POST", "/users", payload).Code)
	assert.Equal(t, http.StatusConflict, postJSON(f.router, "POST", "/users", payload).Code)
}

func TestUserHandler_Create_Validation(t *testing.T) {
	f := setupUserRouter(t)

	// short password
	w := postJSON(f.router, "POST", "/users", map[string]string{
		"username": "mrivera", "full_name": "Marta Rivera", "password": "abc", "role": "agent",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// unknown role
	w = postJSON(f.router, "POST", "/users", map[string]string{
		"username": "mrivera", "full_name": "Marta Rivera", "password": "Secret1!", "role": "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_List_SortedWithoutHashes(t *testing.T) {
	f := setupUserRouter(t)
	for _, u := range []models.User{
		{Username: "zq", FullName: "Zoe Quinn", Role: models.RoleAgent, Active: true},
		{Username: "mr", FullName: "Marta Rivera", Role: models.RoleAgent, Active: true},
	} {
		require.NoError(t, u.SetPassword("Secret1!"))
		require.NoError(t, f.db.Create(&u).Error)
	}

	req, _ := http.NewRequest("GET", "/users", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "$2a$") // bcrypt digests stay server-side

	var users []models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 3)
	assert.Equal(t, "Ada Okafor", users[0].FullName)
	assert.Equal(t, "Marta Rivera", users[1].FullName)
	assert.Equal(t, "Zoe Quinn", users[2].FullName)
}

func TestUserHandler_ToggleStatus_SelfForbidden(t *testing.T) {
	f := setupUserRouter(t)

	w := postJSON(f.router, "PUT", "/users/"+itoa(f.admin.ID)+"/status", map[string]bool{"active": false})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserHandler_ToggleStatus_RootAdminForbidden(t *testing.T) {
	f := setupUserRouter(t)
	root := &models.User{Username: models.RootAdminUsername, FullName: "Root Administrator", Role: models.RoleAdministrator, Active: true}
	require.NoError(t, root.SetPassword("RootPass1"))
	require.NoError(t, f.db.Create(root).Error)

	w := postJSON(f.router, "PUT", "/users/"+itoa(root.ID)+"/status", map[string]bool{"active": false})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserHandler_ToggleStatus(t *testing.T) {
	f := setupUserRouter(t)
	agent := &models.User{Username: "mrivera", FullName: "Marta Rivera", Role: models.RoleAgent, Active: true}
	require.NoError(t, agent.SetPassword("Secret1!"))
	require.NoError(t, f.db.Create(agent).Error)

	w := postJSON(f.router, "PUT", "/users/"+itoa(agent.ID)+"/status", map[string]bool{"active": false})
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.User
	require.NoError(t, f.db.First(&stored, agent.ID).Error)
	assert.False(t, stored.Active)
}

func TestUserHandler_ResetPassword(t *testing.T) {
	f := setupUserRouter(t)
	agent := &models.User{Username: "mrivera", FullName: "Marta Rivera", Role: models.RoleAgent, Active: true}
	require.NoError(t, agent.SetPassword("Secret1!"))
	require.NoError(t, f.db.Create(agent).Error)

	w := postJSON(f.router, "POST", "/users/"+itoa(agent.ID)+"/password", map[string]string{"password": "Fresh1!"})
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.User
	require.NoError(t, f.db.First(&stored, agent.ID).Error)
	assert.True(t, stored.CheckPassword("Fresh1!"))
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	f := setupUserRouter(t)

	req, _ := http.NewRequest("GET", "/users/9999", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req, _ = http.NewRequest("GET", "/users/not-a-number", nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
