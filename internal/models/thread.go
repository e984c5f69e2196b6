package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Thread is a post or, when ParentID is set, a reply. Counters are
// denormalized and mutated with atomic column expressions; LikeCount tracks
// the thread_likes join and is best-effort analytics, never allowed below
// zero.
type Thread struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Text         string         `gorm:"size:500;not null" json:"text"`
	Media        datatypes.JSON `gorm:"type:jsonb" json:"media,omitempty"`
	ParentID     *uuid.UUID     `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	LikeCount    int            `gorm:"not null;default:0" json:"like_count"`
	CommentCount int            `gorm:"not null;default:0" json:"comment_count"`
	ShareCount   int            `gorm:"not null;default:0" json:"share_count"`
	RepostCount  int            `gorm:"not null;default:0" json:"repost_count"`
	IsHidden     bool           `gorm:"not null;default:false;index" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Author       User           `gorm:"foreignKey:AuthorID" json:"author"`
}

func (t *Thread) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ThreadLike records one user's like on one thread.
type ThreadLike struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_thread_likes_pair" json:"thread_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_thread_likes_pair" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}

func (l *ThreadLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Repost binds (user, thread) 1:1; existence toggles on request.
type Repost struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reposts_pair" json:"user_id"`
	ThreadID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reposts_pair" json:"thread_id"`
	CreatedAt time.Time `json:"created_at"`
	Thread    Thread    `gorm:"foreignKey:ThreadID" json:"thread"`
}

func (r *Repost) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Save is a private bookmark; it never touches thread counters.
type Save struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saves_pair" json:"user_id"`
	ThreadID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saves_pair" json:"thread_id"`
	CreatedAt time.Time `json:"created_at"`
	Thread    Thread    `gorm:"foreignKey:ThreadID" json:"thread"`
}

func (s *Save) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
