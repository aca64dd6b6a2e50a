package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/havenhq/haven/backend/internal/logger"
	"github.com/havenhq/haven/backend/internal/models"
)

// EnsureRootAdmin guarantees the reserved administrator account exists and
// is an active administrator. A fresh install gets a default password that
// must be rotated on first login; an existing account is only repaired,
// never re-passworded.
func EnsureRootAdmin(db *gorm.DB) error {
	var root models.User
	err := db.Where("username = ?", models.RootAdminUsername).First(&root).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		root = models.User{
			Username: models.RootAdminUsername,
			FullName: "Root Administrator",
			Role:     models.RoleAdministrator,
			Active:   true,
		}
		if err := root.SetPassword("changeme"); err != nil {
			return fmt.Errorf("hash root admin password: %w", err)
		}
		if err := db.Create(&root).Error; err != nil {
			return fmt.Errorf("create root admin: %w", err)
		}
		logger.Log().Warn("created root admin account with default password; change it immediately")
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup root admin: %w", err)
	}

	if root.Role != models.RoleAdministrator || !root.Active {
		root.Role = models.RoleAdministrator
		root.Active = true
		if err := db.Save(&root).Error; err != nil {
			return fmt.Errorf("repair root admin: %w", err)
		}
		logger.Log().Warn("repaired root admin role/status")
	}
	return nil
}
