package services

import (
	"gorm.io/gorm"

	"github.com/havenhq/haven/backend/internal/logger"
	"github.com/havenhq/haven/backend/internal/metrics"
	"github.com/havenhq/haven/backend/internal/models"
)

// AuditService appends entries to the activity log. Writes are best-effort:
// a failure is logged and counted but never surfaced to the caller, so the
// primary action always wins over its paper trail.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record inserts one entry attributed to actorID. subjectTable/subjectID and
// detail are optional context about the record acted on. Returns whether the
// write succeeded.
func (s *AuditService) Record(actorID uint, action, subjectTable string, subjectID uint, detail, clientIP string) bool {
	entry := models.AuditLogEntry{
		ActorID:      actorID,
		Action:       action,
		SubjectTable: subjectTable,
		SubjectID:    subjectID,
		Detail:       detail,
		ClientIP:     clientIP,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		metrics.IncAuditWriteFailure()
		logger.WithFields(map[string]interface{}{
			"actor_id": actorID,
			"action":   action,
		}).WithError(err).Error("audit write failed")
		return false
	}
	return true
}

// List returns the newest entries, capped at limit.
func (s *AuditService) List(limit int) ([]models.AuditLogEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	var entries []models.AuditLogEntry
	err := s.db.Order("created_at desc, id desc").Limit(limit).Find(&entries).Error
	return entries, err
}
