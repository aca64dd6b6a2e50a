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

// StayHandler tracks lodging: checking a guest into a bed and out again.
type StayHandler struct {
	db    *gorm.DB
	audit *services.AuditService
}

func NewStayHandler(db *gorm.DB, audit *services.AuditService) *StayHandler {
	return &StayHandler{db: db, audit: audit}
}

func (h *StayHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stays", h.List)
	r.POST("/stays", h.CheckIn)
	r.POST("/stays/:id/checkout", h.CheckOut)
}

// List returns stays newest first; ?open=true narrows to current occupants.
func (h *StayHandler) List(c *gin.Context) {
	query := h.db.Preload("Guest").Order("checked_in_at desc")
	if c.Query("open") == "true" {
		query = query.Where("checked_out_at IS NULL")
	}

	var stays []models.Stay
	if err := query.Find(&stays).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list stays"})
		return
	}
	c.JSON(http.StatusOK, stays)
}

type CheckInRequest struct {
	GuestID uint   `form:"guest_id" json:"guest_id" binding:"required"`
	Bed     string `form:"bed" json:"bed" binding:"required"`
}

// CheckIn opens a stay. The guest must exist, be active, and not already be
// checked in; the bed must be free.
func (h *StayHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
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
	if !guest.Active {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guest is archived"})
		return
	}

	var open int64
	if err := h.db.Model(&models.Stay{}).
		Where("checked_out_at IS NULL AND (guest_id = ? OR bed = ?)", req.GuestID, req.Bed).
		Count(&open).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check occupancy"})
		return
	}
	if open > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "guest already checked in or bed occupied"})
		return
	}

	stay := models.Stay{
		GuestID:     req.GuestID,
		Bed:         req.Bed,
		CheckedInAt: time.Now(),
	}
	if err := h.db.Create(&stay).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check in"})
		return
	}

	h.audit.Record(currentUserID(c), "CheckIn", "stays", stay.ID, "bed "+req.Bed, c.ClientIP())
	c.JSON(http.StatusCreated, stay)
}

// CheckOut closes an open stay.
func (h *StayHandler) CheckOut(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var stay models.Stay
	if err := h.db.First(&stay, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "stay not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stay"})
		return
	}
	if !stay.Open() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stay already checked out"})
		return
	}

	now := time.Now()
	stay.CheckedOutAt = &now
	if err := h.db.Save(&stay).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check out"})
		return
	}

	h.audit.Record(currentUserID(c), "CheckOut", "stays", stay.ID, "bed "+stay.Bed, c.ClientIP())
	c.JSON(http.StatusOK, stay)
}
