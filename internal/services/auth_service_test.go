package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/havenhq/haven/backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Session{}, &models.AuditLogEntry{}))
	return db
}

func newTestAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	sessions := NewSessionManager(NewMemorySessionStore(), time.Hour, "test-secret")
	return NewAuthService(db, sessions, NewAuditService(db), NewNotifyService("")), db
}

func mustCreateUser(t *testing.T, db *gorm.DB, username, password string, role models.Role, active bool) *models.User {
	t.Helper()
	user := &models.User{Username: username, FullName: username, Role: role, Active: active}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, db.Create(user).Error)
	return user
}

func auditCount(t *testing.T, db *gorm.DB, actorID uint, action string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.AuditLogEntry{}).
		Where("actor_id = ? AND action = ?", actorID, action).Count(&count).Error)
	return count
}

func TestAuthService_Login(t *testing.T) {
	svc, db := newTestAuthService(t)
	user := mustCreateUser(t, db, "alice", "Secret1!", models.RoleAgent, true)

	sess, err := svc.Login("alice", "Secret1!", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, sess.UserID)
	assert.Equal(t, "alice", sess.Username)
	assert.Equal(t, models.RoleAgent, sess.Role)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.NotNil(t, stored.LastLoginAt)
	assert.WithinDuration(t, time.Now(), *stored.LastLoginAt, 5*time.Second)

	assert.EqualValues(t, 1, auditCount(t, db, user.ID, "Login"))
}

func TestAuthService_Login_GenericRejection(t *testing.T) {
	svc, db := newTestAuthService(t)
	alice := mustCreateUser(t, db, "alice", "Secret1!", models.RoleAgent, true)
	inactive := mustCreateUser(t, db, "retired", "Secret1!", models.RoleAgent, false)

	// wrong password, unknown username, and an inactive account's correct
	// password must be indistinguishable to the caller
	_, errWrong := svc.Login("alice", "wrong", "")
	_, errUnknown := svc.Login("nobody", "Secret1!", "")
	_, errInactive := svc.Login("retired", "Secret1!", "")

	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errInactive, ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
	assert.Equal(t, errWrong.Error(), errInactive.Error())

	// failed attempts write no audit entries
	assert.EqualValues(t, 0, auditCount(t, db, alice.ID, "Login"))
	assert.EqualValues(t, 0, auditCount(t, db, inactive.ID, "Login"))
}

func TestAuthService_Login_RegeneratesSessionID(t *testing.T) {
	svc, db := newTestAuthService(t)
	mustCreateUser(t, db, "alice", "Secret1!", models.RoleAgent, true)

	first, err := svc.Login("alice", "Secret1!", "")
	require.NoError(t, err)
	second, err := svc.Login("alice", "Secret1!", "")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestAuthService_Login_Lockout(t *testing.T) {
	svc, db := newTestAuthService(t)
	user := mustCreateUser(t, db, "alice", "Secret1!", models.RoleAgent, true)

	for i := 0; i < 5; i++ {
		_, err := svc.Login("alice", "wrong", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	var locked models.User
	require.NoError(t, db.First(&locked, user.ID).Error)
	assert.Equal(t, 5, locked.FailedLoginAttempts)
	require.NotNil(t, locked.LockedUntil)
	assert.True(t, locked.LockedUntil.After(time.Now()))

	// the right password while locked gets the same generic answer
	_, err := svc.Login("alice", "Secret1!", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Logout(t *testing.T) {
	svc, db := newTestAuthService(t)
	user := mustCreateUser(t, db, "alice", "Secret1!", models.RoleAgent, true)

	sess, err := svc.Login("alice", "Secret1!", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(sess.ID, "10.0.0.1"))
	assert.EqualValues(t, 1, auditCount(t, db, user.ID, "Logout"))

	gone, err := svc.Sessions().Current(sess.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// logging out again, or with no session at all, is a no-op success
	require.NoError(t, svc.Logout(sess.ID, ""))
	require.NoError(t, svc.Logout("", ""))
	assert.EqualValues(t, 1, auditCount(t, db, user.ID, "Logout"))
}

func TestAuthService_CreateUser(t *testing.T) {
	svc, db := newTestAuthService(t)
	admin := mustCreateUser(t, db, "admin", "RootPass1", models.RoleAdministrator, true)

	user, err := svc.CreateUser(admin.ID, "alice", "Alice Smith", "Secret1!", models.RoleAgent, "")
	require.NoError(t, err)
	assert.True(t, user.Active)
	assert.Equal(t, models.RoleAgent, user.Role)
	assert.NotEmpty(t, user.PasswordHash)
	assert.EqualValues(t, 1, auditCount(t, db, admin.ID, "CreateUser"))
}

func TestAuthService_CreateUser_Duplicate(t *testing.T) {
	svc, db := newTestAuthService(t)
	admin := mustCreateUser(t, db, "admin", "RootPass1", models.RoleAdministrator, true)
	mustCreateUser(t, db, "alice", "Secret1!", models.RoleAgent, true)

	var before int64
	require.NoError(t, db.Model(&models.User{}).Count(&before).Error)

	_, err := svc.CreateUser(admin.ID, "alice", "Another Alice", "Other1!", models.RoleAgent, "")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	var after int64
	require.NoError(t, db.Model(&models.User{}).Count(&after).Error)
	assert.Equal(t, before, after)
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, db := newTestAuthService(t)
	user := mustCreateUser(t, db, "alice", "Secret1!", models.RoleAgent, true)

	err := svc.ChangePassword(user.ID, "wrong", "NewSecret1!", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(user.ID, "Secret1!", "NewSecret1!", ""))

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.True(t, stored.CheckPassword("NewSecret1!"))
	assert.False(t, stored.CheckPassword("Secret1!"))
	assert.EqualValues(t, 1, auditCount(t, db, user.ID, "ChangePassword"))
}

func TestAuthService_ResetPassword(t *testing.T) {
	svc, db := newTestAuthService(t)
	admin := mustCreateUser(t, db, "admin", "RootPass1", models.RoleAdministrator, true)
	user := mustCreateUser(t, db, "alice", "Secret1!", models.RoleAgent, true)

	// reset also clears a lockout
	until := time.Now().Add(10 * time.Minute)
	require.NoError(t, db.Model(user).Updates(map[string]interface{}{
		"failed_login_attempts": 5,
		"locked_until":          until,
	}).Error)

	require.NoError(t, svc.ResetPassword(admin.ID, user.ID, "Fresh1!", ""))

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.True(t, stored.CheckPassword("Fresh1!"))
	assert.Zero(t, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockedUntil)
	assert.EqualValues(t, 1, auditCount(t, db, admin.ID, "ResetPassword"))

	err := svc.ResetPassword(admin.ID, 9999, "Fresh1!", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_ToggleStatus(t *testing.T) {
	svc, db := newTestAuthService(t)
	root := mustCreateUser(t, db, models.RootAdminUsername, "RootPass1", models.RoleAdministrator, true)
	admin := mustCreateUser(t, db, "aokafor", "Secret1!", models.RoleAdministrator, true)
	agent := mustCreateUser(t, db, "mrivera", "Secret1!", models.RoleAgent, true)

	// nobody deactivates themselves
	assert.ErrorIs(t, svc.ToggleStatus(admin.ID, admin.ID, false, ""), ErrForbidden)
	// nobody touches the root admin
	assert.ErrorIs(t, svc.ToggleStatus(admin.ID, root.ID, false, ""), ErrForbidden)

	require.NoError(t, svc.ToggleStatus(admin.ID, agent.ID, false, ""))
	var stored models.User
	require.NoError(t, db.First(&stored, agent.ID).Error)
	assert.False(t, stored.Active)
	assert.EqualValues(t, 1, auditCount(t, db, admin.ID, "ToggleStatus"))

	assert.ErrorIs(t, svc.ToggleStatus(admin.ID, 9999, false, ""), ErrNotFound)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc, db := newTestAuthService(t)
	root := mustCreateUser(t, db, models.RootAdminUsername, "RootPass1", models.RoleAdministrator, true)
	agent := mustCreateUser(t, db, "mrivera", "Secret1!", models.RoleAgent, true)

	// the root admin cannot be demoted
	err := svc.UpdateProfile(root.ID, root.ID, "Root", models.RoleAgent, "")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.UpdateProfile(root.ID, agent.ID, "Marta R.", models.RoleAdministrator, ""))
	var stored models.User
	require.NoError(t, db.First(&stored, agent.ID).Error)
	assert.Equal(t, "Marta R.", stored.FullName)
	assert.Equal(t, models.RoleAdministrator, stored.Role)
}

func TestAuthService_ListUsers(t *testing.T) {
	svc, db := newTestAuthService(t)
	for _, name := range []string{"Zoe Quinn", "Ada Okafor", "Marta Rivera"} {
		u := &models.User{Username: strings.Fields(name)[0], FullName: name, Role: models.RoleAgent, Active: true}
		require.NoError(t, u.SetPassword("Secret1!"))
		require.NoError(t, db.Create(u).Error)
	}

	users, err := svc.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "Ada Okafor", users[0].FullName)
	assert.Equal(t, "Marta Rivera", users[1].FullName)
	assert.Equal(t, "Zoe Quinn", users[2].FullName)
}

func TestAuthService_GetUser_NotFound(t *testing.T) {
	svc, _ := newTestAuthService(t)
	_, err := svc.GetUser(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_LoginAfterTimeoutRequiresFreshSession(t *testing.T) {
	svc, db := newTestAuthService(t)
	mustCreateUser(t, db, "alice", "Secret1!", models.RoleAgent, true)

	sess, err := svc.Login("alice", "Secret1!", "")
	require.NoError(t, err)

	// age past the idle timeout via the store
	aged := *sess
	aged.LoginAt = time.Now().Add(-time.Hour - time.Second)
	require.NoError(t, svc.Sessions().store.Save(&aged))

	got, err := svc.Sessions().Current(sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
