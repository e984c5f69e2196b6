package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account status values. Moderation actions and self-initiated freezes are the
// only writers of AccountStatus after signup.
const (
	StatusActive       = "active"
	StatusTemporaryBan = "temporary_ban"
	StatusPermanentBan = "permanent_ban"
)

// Roles. Moderators and super admins may hide threads and drive the report
// lifecycle; only super admins manage roles.
const (
	RoleUser       = "user"
	RoleModerator  = "moderator"
	RoleSuperAdmin = "super_admin"
)

type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string     `gorm:"size:100;not null" json:"name"`
	Username      string     `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email         string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password      string     `gorm:"not null" json:"-"`
	Bio           string     `gorm:"size:500" json:"bio"`
	ProfilePic    string     `gorm:"size:500" json:"profile_pic"`
	AccountStatus string     `gorm:"size:20;not null;default:'active'" json:"account_status"`
	BanExpiration *time.Time `json:"ban_expiration,omitempty"`
	Role          string     `gorm:"size:20;not null;default:'user'" json:"role"`
	IsFrozen      bool       `gorm:"default:false" json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsModerator reports whether the user may act on reports and hide content.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleSuperAdmin
}

// Follow is a directed edge in the social graph. A user never follows
// themselves.
type Follow struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FollowerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FolloweeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
	Follower   User      `gorm:"foreignKey:FollowerID" json:"-"`
	Followee   User      `gorm:"foreignKey:FolloweeID" json:"-"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// Block hides the blocked user's content from the blocker immediately.
type Block struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BlockerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_blocks_pair" json:"blocker_id"`
	BlockedID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_blocks_pair" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
	Blocker   User      `gorm:"foreignKey:BlockerID" json:"-"`
	Blocked   User      `gorm:"foreignKey:BlockedID" json:"-"`
}

func (Block) TableName() string {
	return "blocks"
}

func (b *Block) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
