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

// MedicationHandler records dispensations. Routes sit behind the
// administrator gate at registration time.
type MedicationHandler struct {
	db    *gorm.DB
	audit *services.AuditService
}

func NewMedicationHandler(db *gorm.DB, audit *services.AuditService) *MedicationHandler {
	return &MedicationHandler{db: db, audit: audit}
}

func (h *MedicationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/medications", h.List)
	r.POST("/medications", h.Create)
}

// List returns dispensations newest first, optionally for one guest
// (?guest_id=).
func (h *MedicationHandler) List(c *gin.Context) {
	query := h.db.Preload("Guest").Order("dispensed_at desc")
	if guestID := c.Query("guest_id"); guestID != "" {
		query = query.Where("guest_id = ?", guestID)
	}

	var meds []models.Medication
	if err := query.Find(&meds).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list medications"})
		return
	}
	c.JSON(http.StatusOK, meds)
}

type MedicationRequest struct {
	GuestID uint   `form:"guest_id" json:"guest_id" binding:"required"`
	Name    string `form:"name" json:"name" binding:"required"`
	Dosage  string `form:"dosage" json:"dosage"`
	Notes   string `form:"notes" json:"notes"`
}

func (h *MedicationHandler) Create(c *gin.Context) {
	var req MedicationRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var guest models.Guest
	if err := h.db.First(&guest, req.GuestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "guest not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load guest"})
		return
	}

	med := models.Medication{
		GuestID:     req.GuestID,
		Name:        req.Name,
		Dosage:      req.Dosage,
		DispensedAt: time.Now(),
		Notes:       req.Notes,
	}
	if err := h.db.Create(&med).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record dispensation"})
		return
	}

	h.audit.Record(currentUserID(c), "DispenseMedication", "medications", med.ID, req.Name, c.ClientIP())
	c.JSON(http.StatusCreated, med)
}
