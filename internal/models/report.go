package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report statuses. Transitions are forward-only (pending → reviewed →
// resolved) except the explicit revert-to-pending override.
const (
	ReportPending  = "pending"
	ReportReviewed = "reviewed"
	ReportResolved = "resolved"
)

// ContentKind tags the polymorphic report target.
type ContentKind string

const (
	ContentUser   ContentKind = "User"
	ContentThread ContentKind = "Thread"
	ContentSystem ContentKind = "System"
)

// ContentRef is an explicit tagged reference to reported content. System
// reports carry no target, so ID may be nil for that kind.
type ContentRef struct {
	Kind ContentKind `gorm:"column:content_type;size:20;not null" json:"content_type"`
	ID   *uuid.UUID  `gorm:"column:content_id;type:uuid;index" json:"content_id,omitempty"`
}

// Report is a moderation case. Never deleted; mutated only by moderators.
type Report struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"reporter_id"`
	Content     ContentRef `gorm:"embedded" json:"content"`
	Reason      string     `gorm:"size:500;not null" json:"reason"`
	Status      string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	AdminNote   string     `gorm:"size:1000" json:"admin_note,omitempty"`
	AdminAction string     `gorm:"size:100" json:"admin_action,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Reporter    User       `gorm:"foreignKey:ReporterID" json:"-"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
