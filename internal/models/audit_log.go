package models

import "time"

// AuditLogEntry records a state-changing action attributed to the acting
// session identity. Entries are append-only and best-effort: a failed write
// must never abort the action it describes.
type AuditLogEntry struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ActorID      uint      `json:"actor_id" gorm:"index;not null"`
	Action       string    `json:"action" gorm:"size:64;not null;index"`
	SubjectTable string    `json:"subject_table,omitempty" gorm:"size:64"`
	SubjectID    uint      `json:"subject_id,omitempty"`
	Detail       string    `json:"detail,omitempty" gorm:"type:text"`
	ClientIP     string    `json:"client_ip,omitempty" gorm:"size:45"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AuditLogEntry) TableName() string {
	return "audit_log"
}
