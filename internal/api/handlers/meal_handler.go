package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/havenhq/haven/backend/internal/models"
	"github.com/havenhq/haven/backend/internal/services"
)

// MealHandler records meal services: which service ran on which day and how
// many portions went out.
type MealHandler struct {
	db    *gorm.DB
	audit *services.AuditService
}

func NewMealHandler(db *gorm.DB, audit *services.AuditService) *MealHandler {
	return &MealHandler{db: db, audit: audit}
}

func (h *MealHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/meals", h.List)
	r.POST("/meals", h.Create)
}

// List returns meal records newest first, optionally bounded by ?since=RFC3339.
func (h *MealHandler) List(c *gin.Context) {
	query := h.db.Order("served_on desc, id desc")
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be RFC3339"})
			return
		}
		query = query.Where("served_on >= ?", t)
	}

	var meals []models.Meal
	if err := query.Find(&meals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list meals"})
		return
	}
	c.JSON(http.StatusOK, meals)
}

type MealRequest struct {
	ServedOn time.Time `form:"served_on" json:"served_on" binding:"required"`
	Service  string    `form:"service" json:"service" binding:"required,oneof=breakfast lunch dinner"`
	Portions int       `form:"portions" json:"portions" binding:"required,min=1"`
	Notes    string    `form:"notes" json:"notes"`
}

func (h *MealHandler) Create(c *gin.Context) {
	var req MealRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal := models.Meal{
		ServedOn: req.ServedOn,
		Service:  req.Service,
		Portions: req.Portions,
		Notes:    req.Notes,
	}
	if err := h.db.Create(&meal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record meal"})
		return
	}

	h.audit.Record(currentUserID(c), "RecordMeal", "meals", meal.ID, req.Service, c.ClientIP())
	c.JSON(http.StatusCreated, meal)
}
