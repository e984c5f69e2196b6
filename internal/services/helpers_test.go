package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/nguyentrg/threadnest/internal/models"
	"github.com/nguyentrg/threadnest/internal/realtime"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named in-memory database with a shared cache, so every pooled
	// connection sees the same tables.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Block{},
		&models.Thread{},
		&models.ThreadLike{},
		&models.Repost{},
		&models.Save{},
		&models.Report{},
		&models.Notification{},
		&models.RefreshToken{},
		&models.SystemLog{},
	)
	require.NoError(t, err)
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Name:     username,
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestThread(t *testing.T, db *gorm.DB, authorID uuid.UUID, text string) *models.Thread {
	t.Helper()
	thread := models.Thread{AuthorID: authorID, Text: text}
	require.NoError(t, db.Create(&thread).Error)
	return &thread
}

// fakeDirectory reports a fixed set of users as connected.
type fakeDirectory struct {
	mu     sync.Mutex
	online map[uuid.UUID]bool
}

func newFakeDirectory(online ...uuid.UUID) *fakeDirectory {
	d := &fakeDirectory{online: make(map[uuid.UUID]bool)}
	for _, id := range online {
		d.online[id] = true
	}
	return d
}

func (d *fakeDirectory) Connect(_ context.Context, userID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.online[userID] = true
	return nil
}

func (d *fakeDirectory) Disconnect(_ context.Context, userID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.online, userID)
	return nil
}

func (d *fakeDirectory) IsConnected(_ context.Context, userID uuid.UUID) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.online[userID], nil
}

// fakePublisher records every published event.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	RecipientID uuid.UUID
	Event       realtime.Event
}

func (p *fakePublisher) Publish(recipientID uuid.UUID, event realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{RecipientID: recipientID, Event: event})
	return nil
}

func (p *fakePublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

func newTestNotificationService(db *gorm.DB, online ...uuid.UUID) (*NotificationService, *fakePublisher) {
	publisher := &fakePublisher{}
	return NewNotificationService(db, newFakeDirectory(online...), publisher), publisher
}
