package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationMention = "mention"
	NotificationRepost  = "repost"
	NotificationReport  = "report"
)

// Notification is a fan-out record. For likes, at most one row exists per
// (actor, thread) pair; reversing the interaction deletes the row.
type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index" json:"recipient_id"`
	ActorID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"actor_id"`
	Type        string     `gorm:"size:20;not null" json:"type"`
	ThreadID    *uuid.UUID `gorm:"type:uuid;index" json:"thread_id,omitempty"`
	IsRead      bool       `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time  `json:"created_at"`
	Actor       User       `gorm:"foreignKey:ActorID" json:"actor"`
	Thread      *Thread    `gorm:"foreignKey:ThreadID" json:"thread,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
