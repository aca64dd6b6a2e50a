package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/havenhq/haven/backend/internal/models"
	"github.com/havenhq/haven/backend/internal/services"
)

// GuestHandler manages the people receiving services. Guests follow the
// validate-write-audit shape of every other mutation and are archived
// rather than deleted.
type GuestHandler struct {
	db    *gorm.DB
	audit *services.AuditService
}

func NewGuestHandler(db *gorm.DB, audit *services.AuditService) *GuestHandler {
	return &GuestHandler{db: db, audit: audit}
}

func (h *GuestHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/guests", h.List)
	r.POST("/guests", h.Create)
	r.GET("/guests/:id", h.Get)
	r.PUT("/guests/:id", h.Update)
	r.POST("/guests/:id/archive", h.Archive)
}

// List filters by name substring (?q=) and active flag (?active=true|false).
func (h *GuestHandler) List(c *gin.Context) {
	query := h.db.Order("last_name asc, first_name asc")
	if q := c.Query("q"); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("last_name LIKE ? OR first_name LIKE ?", pattern, pattern)
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	var guests []models.Guest
	if err := query.Find(&guests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list guests"})
		return
	}
	c.JSON(http.StatusOK, guests)
}

type GuestRequest struct {
	FirstName   string     `form:"first_name" json:"first_name" binding:"required"`
	LastName    string     `form:"last_name" json:"last_name" binding:"required"`
	DateOfBirth *time.Time `form:"date_of_birth" json:"date_of_birth"`
	Notes       string     `form:"notes" json:"notes"`
}

func (h *GuestHandler) Create(c *gin.Context) {
	var req GuestRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	guest := models.Guest{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		Notes:       req.Notes,
		Active:      true,
	}
	if err := h.db.Create(&guest).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create guest"})
		return
	}

	h.audit.Record(currentUserID(c), "CreateGuest", "guests", guest.ID, guest.DisplayName(), c.ClientIP())
	c.JSON(http.StatusCreated, guest)
}

func (h *GuestHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var guest models.Guest
	if err := h.db.First(&guest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "guest not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load guest"})
		return
	}
	c.JSON(http.StatusOK, guest)
}

func (h *GuestHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req GuestRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var guest models.Guest
	if err := h.db.First(&guest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "guest not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load guest"})
		return
	}

	guest.FirstName = req.FirstName
	guest.LastName = req.LastName
	guest.DateOfBirth = req.DateOfBirth
	guest.Notes = req.Notes
	if err := h.db.Save(&guest).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update guest"})
		return
	}

	h.audit.Record(currentUserID(c), "UpdateGuest", "guests", guest.ID, guest.DisplayName(), c.ClientIP())
	c.JSON(http.StatusOK, guest)
}

// Archive soft-disables a guest record so history stays intact.
func (h *GuestHandler) Archive(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res := h.db.Model(&models.Guest{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to archive guest"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "guest not found"})
		return
	}

	h.audit.Record(currentUserID(c), "ArchiveGuest", "guests", id, "", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"message": "guest archived"})
}
