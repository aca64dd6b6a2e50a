package main

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/havenhq/haven/backend/internal/config"
	"github.com/havenhq/haven/backend/internal/database"
	"github.com/havenhq/haven/backend/internal/models"
	"github.com/havenhq/haven/backend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.AuditLogEntry{},
		&models.Guest{},
		&models.Stay{},
		&models.Meal{},
		&models.Medication{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	fmt.Println("✓ Database migrated successfully")

	if err := services.EnsureRootAdmin(db); err != nil {
		log.Fatal("Failed to ensure root admin:", err)
	}
	fmt.Println("✓ Root admin ensured")

	seedUsers(db)
	seedGuests(db)
	seedMeals(db)

	fmt.Println("✓ Seed complete")
}

func seedUsers(db *gorm.DB) {
	users := []struct {
		username, fullName, password string
		role                         models.Role
	}{
		{"mrivera", "Marta Rivera", "Secret1!", models.RoleAgent},
		{"jchen", "Jordan Chen", "Secret1!", models.RoleAgent},
		{"aokafor", "Ada Okafor", "Secret1!", models.RoleAdministrator},
	}

	for _, u := range users {
		var count int64
		db.Model(&models.User{}).Where("username = ?", u.username).Count(&count)
		if count > 0 {
			continue
		}
		user := models.User{
			Username: u.username,
			FullName: u.fullName,
			Role:     u.role,
			Active:   true,
		}
		if err := user.SetPassword(u.password); err != nil {
			log.Fatal("Failed to hash password:", err)
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatal("Failed to seed user:", err)
		}
	}
	fmt.Println("✓ Users seeded")
}

func seedGuests(db *gorm.DB) {
	var count int64
	db.Model(&models.Guest{}).Count(&count)
	if count > 0 {
		return
	}

	guests := []models.Guest{
		{FirstName: "Samuel", LastName: "Adeyemi", Active: true},
		{FirstName: "Lena", LastName: "Kovacs", Active: true, Notes: "vegetarian meals"},
		{FirstName: "Pierre", LastName: "Dubois", Active: true},
	}
	if err := db.Create(&guests).Error; err != nil {
		log.Fatal("Failed to seed guests:", err)
	}

	stay := models.Stay{GuestID: guests[0].ID, Bed: "A-03", CheckedInAt: time.Now().Add(-48 * time.Hour)}
	if err := db.Create(&stay).Error; err != nil {
		log.Fatal("Failed to seed stay:", err)
	}
	fmt.Println("✓ Guests seeded")
}

func seedMeals(db *gorm.DB) {
	var count int64
	db.Model(&models.Meal{}).Count(&count)
	if count > 0 {
		return
	}

	meals := []models.Meal{
		{ServedOn: time.Now().Add(-24 * time.Hour), Service: "dinner", Portions: 42},
		{ServedOn: time.Now(), Service: "breakfast", Portions: 37},
	}
	if err := db.Create(&meals).Error; err != nil {
		log.Fatal("Failed to seed meals:", err)
	}
	fmt.Println("✓ Meals seeded")
}
