package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentrg/threadnest/internal/metrics"
	"github.com/nguyentrg/threadnest/internal/models"
	"github.com/nguyentrg/threadnest/internal/realtime"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService keeps notification records consistent with live
// interaction state. The directory and publisher are advisory collaborators:
// any failure on the live-delivery path is logged and swallowed, never
// surfaced to the caller.
type NotificationService struct {
	db        *gorm.DB
	directory realtime.Directory
	publisher realtime.Publisher
}

func NewNotificationService(db *gorm.DB, directory realtime.Directory, publisher realtime.Publisher) *NotificationService {
	return &NotificationService{db: db, directory: directory, publisher: publisher}
}

// EmitLike creates the like notification for (actor, thread) unless one
// already exists, then attempts live delivery. Actors never notify themselves.
func (s *NotificationService) EmitLike(ctx context.Context, actorID, recipientID, threadID uuid.UUID) error {
	if actorID == recipientID {
		return nil
	}

	var existing models.Notification
	err := s.db.Where("actor_id = ? AND type = ? AND thread_id = ?",
		actorID, models.NotificationLike, threadID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	notification := models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        models.NotificationLike,
		ThreadID:    &threadID,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		return err
	}
	metrics.NotificationsEmitted.WithLabelValues(models.NotificationLike).Inc()

	s.deliver(ctx, recipientID, realtime.Event{
		Type:     models.NotificationLike,
		ActorID:  actorID,
		ThreadID: &threadID,
		SentAt:   time.Now().UTC(),
	})
	return nil
}

// RetractLike removes the like notification for (actor, thread). Absence is
// not an error.
func (s *NotificationService) RetractLike(actorID, threadID uuid.UUID) error {
	return s.db.Where("actor_id = ? AND type = ? AND thread_id = ?",
		actorID, models.NotificationLike, threadID).
		Delete(&models.Notification{}).Error
}

// EmitComment notifies the parent author about a new reply. Unlike likes,
// every reply is a distinct event, so no dedup applies.
func (s *NotificationService) EmitComment(ctx context.Context, actorID, recipientID, threadID uuid.UUID) error {
	if actorID == recipientID {
		return nil
	}

	notification := models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        models.NotificationComment,
		ThreadID:    &threadID,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		return err
	}
	metrics.NotificationsEmitted.WithLabelValues(models.NotificationComment).Inc()

	s.deliver(ctx, recipientID, realtime.Event{
		Type:     models.NotificationComment,
		ActorID:  actorID,
		ThreadID: &threadID,
		SentAt:   time.Now().UTC(),
	})
	return nil
}

// EmitFollow creates a follow notification for (actor, recipient) unless one
// already exists.
func (s *NotificationService) EmitFollow(ctx context.Context, actorID, recipientID uuid.UUID) error {
	if actorID == recipientID {
		return nil
	}

	var existing models.Notification
	err := s.db.Where("actor_id = ? AND recipient_id = ? AND type = ?",
		actorID, recipientID, models.NotificationFollow).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	notification := models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        models.NotificationFollow,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		return err
	}
	metrics.NotificationsEmitted.WithLabelValues(models.NotificationFollow).Inc()

	s.deliver(ctx, recipientID, realtime.Event{
		Type:    models.NotificationFollow,
		ActorID: actorID,
		SentAt:  time.Now().UTC(),
	})
	return nil
}

// RetractFollow removes the follow notification when the follow is undone.
func (s *NotificationService) RetractFollow(actorID, recipientID uuid.UUID) error {
	return s.db.Where("actor_id = ? AND recipient_id = ? AND type = ?",
		actorID, recipientID, models.NotificationFollow).
		Delete(&models.Notification{}).Error
}

// ListForUser returns the user's notifications newest first with actor and
// thread context resolved.
func (s *NotificationService) ListForUser(recipientID uuid.UUID) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.Where("recipient_id = ?", recipientID).
		Preload("Actor").
		Preload("Thread").
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (s *NotificationService) UnreadCount(recipientID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = false", recipientID).
		Count(&count).Error
	return count, err
}

// SetRead marks a notification read or unread. Scoped to the recipient so
// users cannot touch each other's notifications.
func (s *NotificationService) SetRead(recipientID, notificationID uuid.UUID, read bool) (*models.Notification, error) {
	var notification models.Notification
	if err := s.db.Where("id = ? AND recipient_id = ?", notificationID, recipientID).First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}

	if err := s.db.Model(&notification).Update("is_read", read).Error; err != nil {
		return nil, err
	}
	notification.IsRead = read
	return &notification, nil
}

// deliver pushes a live event to the recipient if the connection directory
// says they are online. Best-effort by contract.
func (s *NotificationService) deliver(ctx context.Context, recipientID uuid.UUID, event realtime.Event) {
	if s.directory == nil || s.publisher == nil {
		metrics.LiveDeliveries.WithLabelValues("offline").Inc()
		return
	}

	connected, err := s.directory.IsConnected(ctx, recipientID)
	if err != nil {
		slog.Warn("presence lookup failed", "recipient_id", recipientID, "error", err)
		metrics.LiveDeliveries.WithLabelValues("failed").Inc()
		return
	}
	if !connected {
		metrics.LiveDeliveries.WithLabelValues("offline").Inc()
		return
	}

	if err := s.publisher.Publish(recipientID, event); err != nil {
		slog.Warn("live delivery failed", "recipient_id", recipientID, "error", err)
		metrics.LiveDeliveries.WithLabelValues("failed").Inc()
		return
	}
	metrics.LiveDeliveries.WithLabelValues("sent").Inc()
}
