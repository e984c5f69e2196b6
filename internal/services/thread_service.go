package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nguyentrg/threadnest/internal/dto"
	"github.com/nguyentrg/threadnest/internal/metrics"
	"github.com/nguyentrg/threadnest/internal/models"
	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrThreadNotFound = errors.New("thread not found")
	ErrNotThreadOwner = errors.New("only the author can do this")
	ErrHideForbidden  = errors.New("no permission to hide this thread")
)

const maxThreadLength = 500

// likeDecrementExpr floors like_count at zero; a prior lost-update race must
// never drive the counter negative.
const likeDecrementExpr = "CASE WHEN like_count > 0 THEN like_count - 1 ELSE 0 END"

// ThreadService is the interaction engine: it mutates a thread's engagement
// state in response to a single user's action and triggers notifications.
type ThreadService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewThreadService(db *gorm.DB, notifications *NotificationService) *ThreadService {
	return &ThreadService{db: db, notifications: notifications}
}

// Create posts a new thread, or a reply when req.ParentID is set. Replying
// bumps the parent's comment count and notifies its author.
func (s *ThreadService) Create(ctx context.Context, authorID uuid.UUID, req *dto.CreateThreadRequest) (*models.Thread, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, errors.New("text field is required")
	}
	if len(text) > maxThreadLength {
		return nil, fmt.Errorf("text must be at most %d characters", maxThreadLength)
	}

	var parent *models.Thread
	if req.ParentID != nil {
		parent = &models.Thread{}
		if err := s.db.Where("id = ? AND is_hidden = false", req.ParentID).First(parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrThreadNotFound
			}
			return nil, err
		}
	}

	thread := models.Thread{
		AuthorID: authorID,
		Text:     text,
		ParentID: req.ParentID,
	}
	if len(req.Media) > 0 {
		media, err := json.Marshal(req.Media)
		if err != nil {
			return nil, fmt.Errorf("failed to encode media refs: %w", err)
		}
		thread.Media = datatypes.JSON(media)
	}

	if err := s.db.Create(&thread).Error; err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}

	if parent != nil {
		if err := s.db.Model(&models.Thread{}).Where("id = ?", parent.ID).
			Update("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
			slog.Error("failed to bump parent comment count", "thread_id", parent.ID, "error", err)
		}
		if err := s.notifications.EmitComment(ctx, authorID, parent.AuthorID, parent.ID); err != nil {
			slog.Error("failed to emit comment notification", "thread_id", parent.ID, "error", err)
		}
	}

	return &thread, nil
}

// GetByID returns a non-hidden thread with its author resolved.
func (s *ThreadService) GetByID(threadID uuid.UUID) (*models.Thread, error) {
	var thread models.Thread
	err := s.db.Where("id = ? AND is_hidden = false", threadID).
		Preload("Author").First(&thread).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrThreadNotFound
	}
	return &thread, err
}

// Feed lists top-level, non-hidden threads newest first. The second return
// value reports whether another page exists.
func (s *ThreadService) Feed(page, limit int) ([]models.Thread, bool, error) {
	return s.listThreads(s.db.Where("parent_id IS NULL AND is_hidden = false"), page, limit)
}

// Replies lists a thread's direct replies newest first.
func (s *ThreadService) Replies(parentID uuid.UUID, page, limit int) ([]models.Thread, bool, error) {
	if _, err := s.GetByID(parentID); err != nil {
		return nil, false, err
	}
	return s.listThreads(s.db.Where("parent_id = ? AND is_hidden = false", parentID), page, limit)
}

// ByUser lists a user's non-hidden threads newest first.
func (s *ThreadService) ByUser(userID uuid.UUID, page, limit int) ([]models.Thread, bool, error) {
	return s.listThreads(s.db.Where("author_id = ? AND is_hidden = false", userID), page, limit)
}

func (s *ThreadService) listThreads(query *gorm.DB, page, limit int) ([]models.Thread, bool, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int64
	if err := query.Model(&models.Thread{}).Count(&total).Error; err != nil {
		return nil, false, err
	}

	var threads []models.Thread
	err := query.Preload("Author").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&threads).Error
	if err != nil {
		return nil, false, err
	}

	return threads, total > int64(offset+len(threads)), nil
}

// Likers returns the users who liked a thread.
func (s *ThreadService) Likers(threadID uuid.UUID) ([]models.User, error) {
	if _, err := s.GetByID(threadID); err != nil {
		return nil, err
	}

	var likes []models.ThreadLike
	if err := s.db.Where("thread_id = ?", threadID).Preload("User").Find(&likes).Error; err != nil {
		return nil, err
	}
	return lo.Map(likes, func(l models.ThreadLike, _ int) models.User {
		return l.User
	}), nil
}

// LikeUnlike toggles userID's like on a thread. Returns whether the thread is
// now liked and the updated like count. The membership row and the counter
// are two separate writes; the counter is best-effort analytics and is
// floored at zero on decrement.
func (s *ThreadService) LikeUnlike(ctx context.Context, threadID, userID uuid.UUID) (bool, int, error) {
	var thread models.Thread
	if err := s.db.Where("id = ? AND is_hidden = false", threadID).First(&thread).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, 0, ErrThreadNotFound
		}
		return false, 0, err
	}

	var existing models.ThreadLike
	err := s.db.Where("thread_id = ? AND user_id = ?", threadID, userID).First(&existing).Error

	if err == nil {
		// Unlike: remove membership, decrement with floor, retract notification.
		if err := s.db.Delete(&existing).Error; err != nil {
			return false, 0, err
		}
		if err := s.db.Model(&models.Thread{}).Where("id = ?", threadID).
			Update("like_count", gorm.Expr(likeDecrementExpr)).Error; err != nil {
			return false, 0, err
		}
		if err := s.notifications.RetractLike(userID, threadID); err != nil {
			slog.Error("failed to retract like notification", "thread_id", threadID, "error", err)
		}
		metrics.LikeToggles.WithLabelValues("unliked").Inc()
		return false, s.currentLikeCount(threadID), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, 0, err
	}

	like := models.ThreadLike{ThreadID: threadID, UserID: userID}
	if err := s.db.Create(&like).Error; err != nil {
		return false, 0, err
	}
	if err := s.db.Model(&models.Thread{}).Where("id = ?", threadID).
		Update("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
		return false, 0, err
	}
	if err := s.notifications.EmitLike(ctx, userID, thread.AuthorID, threadID); err != nil {
		slog.Error("failed to emit like notification", "thread_id", threadID, "error", err)
	}
	metrics.LikeToggles.WithLabelValues("liked").Inc()
	return true, s.currentLikeCount(threadID), nil
}

func (s *ThreadService) currentLikeCount(threadID uuid.UUID) int {
	var thread models.Thread
	if err := s.db.Select("like_count").First(&thread, "id = ?", threadID).Error; err != nil {
		return 0
	}
	return thread.LikeCount
}

// Share increments a non-hidden thread's share count.
func (s *ThreadService) Share(threadID uuid.UUID) (int, error) {
	result := s.db.Model(&models.Thread{}).
		Where("id = ? AND is_hidden = false", threadID).
		Update("share_count", gorm.Expr("share_count + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrThreadNotFound
	}

	var thread models.Thread
	if err := s.db.Select("share_count").First(&thread, "id = ?", threadID).Error; err != nil {
		return 0, err
	}
	return thread.ShareCount, nil
}

// Hide sets is_hidden on a thread. Allowed for the author and for
// moderators; one-way from the interaction engine's point of view.
func (s *ThreadService) Hide(threadID uuid.UUID, actor *models.User) error {
	var thread models.Thread
	if err := s.db.First(&thread, "id = ?", threadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrThreadNotFound
		}
		return err
	}

	if thread.AuthorID != actor.ID && !actor.IsModerator() {
		return ErrHideForbidden
	}

	return s.db.Model(&thread).Update("is_hidden", true).Error
}

// Delete removes a thread and all of its descendants. Only the author may
// delete; the parent's comment count decrement is best-effort.
func (s *ThreadService) Delete(threadID, actorID uuid.UUID) error {
	var thread models.Thread
	if err := s.db.Where("id = ? AND is_hidden = false", threadID).First(&thread).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrThreadNotFound
		}
		return err
	}

	if thread.AuthorID != actorID {
		return ErrNotThreadOwner
	}

	if err := s.deleteTree(&thread); err != nil {
		return err
	}

	if thread.ParentID != nil {
		if err := s.db.Model(&models.Thread{}).
			Where("id = ? AND comment_count > 0", thread.ParentID).
			Update("comment_count", gorm.Expr("comment_count - 1")).Error; err != nil {
			slog.Warn("failed to decrement parent comment count", "parent_id", thread.ParentID, "error", err)
		}
	}
	return nil
}

// DeleteTree removes a thread and its descendants without an ownership check.
// Used by the admin surface and by report remediation internals.
func (s *ThreadService) DeleteTree(threadID uuid.UUID) error {
	var thread models.Thread
	if err := s.db.First(&thread, "id = ?", threadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrThreadNotFound
		}
		return err
	}
	return s.deleteTree(&thread)
}

// deleteTree collects descendant IDs with an iterative worklist (one query
// per depth level, cycle-safe) and deletes the whole set plus its join rows
// in one transaction. Recursion is deliberately avoided: reply chains have no
// depth bound.
func (s *ThreadService) deleteTree(root *models.Thread) error {
	ids := []uuid.UUID{root.ID}
	seen := map[uuid.UUID]bool{root.ID: true}
	frontier := []uuid.UUID{root.ID}

	for len(frontier) > 0 {
		var children []models.Thread
		if err := s.db.Select("id").Where("parent_id IN ?", frontier).Find(&children).Error; err != nil {
			return err
		}

		frontier = frontier[:0]
		for _, child := range children {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			ids = append(ids, child.ID)
			frontier = append(frontier, child.ID)
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id IN ?", ids).Delete(&models.ThreadLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thread_id IN ?", ids).Delete(&models.Repost{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thread_id IN ?", ids).Delete(&models.Save{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thread_id IN ?", ids).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Thread{}).Error
	})
}

// AdminList is the moderation view over threads: hidden threads included,
// optional text search, newest first.
func (s *ThreadService) AdminList(search string, page, limit int) ([]models.Thread, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&models.Thread{})
	if search != "" {
		query = query.Where("text LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var threads []models.Thread
	err := query.Preload("Author").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&threads).Error
	return threads, total, err
}

// ToggleVisibility flips is_hidden on a thread and returns the new state.
// This is the only path that unhides a thread; the owner/moderator Hide
// endpoint is one-way.
func (s *ThreadService) ToggleVisibility(threadID uuid.UUID) (bool, error) {
	var thread models.Thread
	if err := s.db.First(&thread, "id = ?", threadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrThreadNotFound
		}
		return false, err
	}

	hidden := !thread.IsHidden
	if err := s.db.Model(&thread).Update("is_hidden", hidden).Error; err != nil {
		return false, err
	}
	return hidden, nil
}

// RepostToggle creates or removes the (user, thread) repost join and keeps
// the denormalized repost count in step. Returns whether the thread is now
// reposted and the updated count.
func (s *ThreadService) RepostToggle(threadID, userID uuid.UUID) (bool, int, error) {
	var thread models.Thread
	if err := s.db.Where("id = ? AND is_hidden = false", threadID).First(&thread).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, 0, ErrThreadNotFound
		}
		return false, 0, err
	}

	var existing models.Repost
	err := s.db.Where("user_id = ? AND thread_id = ?", userID, threadID).First(&existing).Error

	if err == nil {
		if err := s.db.Delete(&existing).Error; err != nil {
			return false, 0, err
		}
		if err := s.db.Model(&models.Thread{}).
			Where("id = ? AND repost_count > 0", threadID).
			Update("repost_count", gorm.Expr("repost_count - 1")).Error; err != nil {
			return false, 0, err
		}
		metrics.RepostToggles.WithLabelValues("removed").Inc()
		return false, s.currentRepostCount(threadID), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, 0, err
	}

	repost := models.Repost{UserID: userID, ThreadID: threadID}
	if err := s.db.Create(&repost).Error; err != nil {
		return false, 0, err
	}
	if err := s.db.Model(&models.Thread{}).Where("id = ?", threadID).
		Update("repost_count", gorm.Expr("repost_count + 1")).Error; err != nil {
		return false, 0, err
	}
	metrics.RepostToggles.WithLabelValues("created").Inc()
	return true, s.currentRepostCount(threadID), nil
}

func (s *ThreadService) currentRepostCount(threadID uuid.UUID) int {
	var thread models.Thread
	if err := s.db.Select("repost_count").First(&thread, "id = ?", threadID).Error; err != nil {
		return 0
	}
	return thread.RepostCount
}

// RepostsByUser lists the threads a user has reposted, newest repost first.
func (s *ThreadService) RepostsByUser(userID uuid.UUID, page, limit int) ([]models.Thread, bool, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int64
	if err := s.db.Model(&models.Repost{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, false, err
	}

	var reposts []models.Repost
	err := s.db.Where("user_id = ?", userID).
		Preload("Thread").
		Preload("Thread.Author").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reposts).Error
	if err != nil {
		return nil, false, err
	}

	threads := lo.Map(reposts, func(r models.Repost, _ int) models.Thread {
		return r.Thread
	})
	return threads, total > int64(offset+len(reposts)), nil
}

// SaveToggle creates or removes the (user, thread) save join. Saves never
// touch thread counters.
func (s *ThreadService) SaveToggle(threadID, userID uuid.UUID) (bool, error) {
	var thread models.Thread
	if err := s.db.Where("id = ? AND is_hidden = false", threadID).First(&thread).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrThreadNotFound
		}
		return false, err
	}

	var existing models.Save
	err := s.db.Where("user_id = ? AND thread_id = ?", userID, threadID).First(&existing).Error

	if err == nil {
		if err := s.db.Delete(&existing).Error; err != nil {
			return false, err
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	save := models.Save{UserID: userID, ThreadID: threadID}
	if err := s.db.Create(&save).Error; err != nil {
		return false, err
	}
	return true, nil
}

// SavedByUser lists the user's saved threads, newest save first.
func (s *ThreadService) SavedByUser(userID uuid.UUID) ([]models.Thread, error) {
	var saves []models.Save
	err := s.db.Where("user_id = ?", userID).
		Preload("Thread").
		Preload("Thread.Author").
		Order("created_at DESC").
		Find(&saves).Error
	if err != nil {
		return nil, err
	}
	return lo.Map(saves, func(sv models.Save, _ int) models.Thread {
		return sv.Thread
	}), nil
}
