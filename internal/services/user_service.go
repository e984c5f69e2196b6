package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentrg/threadnest/internal/dto"
	"github.com/nguyentrg/threadnest/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrSelfFollow     = errors.New("cannot follow yourself")
	ErrSelfBlock      = errors.New("cannot block yourself")
	ErrAlreadyBlocked = errors.New("user is already blocked")
	ErrNotBlocked     = errors.New("user is not blocked")
)

type UserService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewUserService(db *gorm.DB, notifications *NotificationService) *UserService {
	return &UserService{db: db, notifications: notifications}
}

func (s *UserService) GetByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Username != "" && req.Username != user.Username {
		var count int64
		if err := s.db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrUserTaken
		}
		updates["username"] = req.Username
	}
	if req.Bio != "" {
		updates["bio"] = req.Bio
	}
	if req.ProfilePic != "" {
		updates["profile_pic"] = req.ProfilePic
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}
	return user, nil
}

// FollowToggle follows targetID if not yet followed, otherwise unfollows.
// Following emits a follow notification; unfollowing retracts it. Returns
// whether actorID now follows targetID.
func (s *UserService) FollowToggle(ctx context.Context, actorID, targetID uuid.UUID) (bool, error) {
	if actorID == targetID {
		return false, ErrSelfFollow
	}
	if _, err := s.GetByID(targetID); err != nil {
		return false, err
	}

	var existing models.Follow
	err := s.db.Where("follower_id = ? AND followee_id = ?", actorID, targetID).First(&existing).Error

	if err == nil {
		if err := s.db.Delete(&existing).Error; err != nil {
			return false, err
		}
		if err := s.notifications.RetractFollow(actorID, targetID); err != nil {
			slog.Error("failed to retract follow notification", "target_id", targetID, "error", err)
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	follow := models.Follow{FollowerID: actorID, FolloweeID: targetID}
	if err := s.db.Create(&follow).Error; err != nil {
		return false, err
	}
	if err := s.notifications.EmitFollow(ctx, actorID, targetID); err != nil {
		slog.Error("failed to emit follow notification", "target_id", targetID, "error", err)
	}
	return true, nil
}

// Followers returns the users following userID.
func (s *UserService) Followers(userID uuid.UUID) ([]models.User, error) {
	var follows []models.Follow
	if err := s.db.Where("followee_id = ?", userID).Preload("Follower").Find(&follows).Error; err != nil {
		return nil, err
	}
	return lo.Map(follows, func(f models.Follow, _ int) models.User {
		return f.Follower
	}), nil
}

// Following returns the users userID follows.
func (s *UserService) Following(userID uuid.UUID) ([]models.User, error) {
	var follows []models.Follow
	if err := s.db.Where("follower_id = ?", userID).Preload("Followee").Find(&follows).Error; err != nil {
		return nil, err
	}
	return lo.Map(follows, func(f models.Follow, _ int) models.User {
		return f.Followee
	}), nil
}

// Block hides targetID's activity from actorID. Blocking also removes any
// follow edges between the two users, in both directions.
func (s *UserService) Block(actorID, targetID uuid.UUID) error {
	if actorID == targetID {
		return ErrSelfBlock
	}
	if _, err := s.GetByID(targetID); err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&models.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", actorID, targetID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyBlocked
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		block := models.Block{BlockerID: actorID, BlockedID: targetID}
		if err := tx.Create(&block).Error; err != nil {
			return err
		}
		return tx.Where(
			"(follower_id = ? AND followee_id = ?) OR (follower_id = ? AND followee_id = ?)",
			actorID, targetID, targetID, actorID,
		).Delete(&models.Follow{}).Error
	})
}

func (s *UserService) Unblock(actorID, targetID uuid.UUID) error {
	result := s.db.Where("blocker_id = ? AND blocked_id = ?", actorID, targetID).Delete(&models.Block{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotBlocked
	}
	return nil
}

// BlockedIDs returns the set of users actorID has blocked, for feed
// filtering.
func (s *UserService) BlockedIDs(actorID uuid.UUID) ([]uuid.UUID, error) {
	var blocks []models.Block
	if err := s.db.Where("blocker_id = ?", actorID).Find(&blocks).Error; err != nil {
		return nil, err
	}
	return lo.Map(blocks, func(b models.Block, _ int) uuid.UUID {
		return b.BlockedID
	}), nil
}

// Freeze marks the account frozen. A frozen account is hidden from other
// users until the owner logs in again, which lifts the freeze.
func (s *UserService) Freeze(userID uuid.UUID) error {
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("is_frozen", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListUsers is the admin view: optional name/username search, paginated.
func (s *UserService) ListUsers(search string, page, limit int) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&models.User{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("username LIKE ? OR name LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	return users, total, err
}

// ToggleBan flips a user between active and permanently banned. Banning also
// revokes every refresh token so open sessions die at next refresh.
func (s *UserService) ToggleBan(userID uuid.UUID) (string, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return "", err
	}

	newStatus := models.StatusPermanentBan
	if user.AccountStatus == models.StatusPermanentBan {
		newStatus = models.StatusActive
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"account_status": newStatus, "ban_expiration": nil}
		if err := tx.Model(user).Updates(updates).Error; err != nil {
			return err
		}
		if newStatus == models.StatusPermanentBan {
			return tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return newStatus, nil
}

// SuspendUser places a temporary ban that an active-account check lifts
// automatically after the window passes.
func (s *UserService) SuspendUser(userID uuid.UUID, duration time.Duration) error {
	expires := time.Now().Add(duration)
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"account_status": models.StatusTemporaryBan,
		"ban_expiration": &expires,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateRole promotes or demotes a user. Valid roles: user, moderator,
// super_admin.
func (s *UserService) UpdateRole(userID uuid.UUID, role string) error {
	switch role {
	case models.RoleUser, models.RoleModerator, models.RoleSuperAdmin:
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
