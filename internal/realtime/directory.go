// Package realtime holds the collaborators for best-effort live delivery: a
// connection directory tracking which users currently hold a socket on the
// realtime edge, and a publisher pushing events onto the bus the edge
// subscribes to. Both are advisory; losing either only degrades live
// delivery, never data integrity.
package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Directory answers "is this user connected right now". The realtime edge
// maintains the entries; the backend only reads them.
type Directory interface {
	Connect(ctx context.Context, userID uuid.UUID) error
	Disconnect(ctx context.Context, userID uuid.UUID) error
	IsConnected(ctx context.Context, userID uuid.UUID) (bool, error)
}

// RedisDirectory implements Directory over Redis presence keys with a TTL, so
// an edge crash expires its users instead of leaving them online forever.
type RedisDirectory struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisDirectory(redisURL string) (*RedisDirectory, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisDirectoryWithClient(client), nil
}

// NewRedisDirectoryWithClient wraps an existing Redis client.
func NewRedisDirectoryWithClient(client *redis.Client) *RedisDirectory {
	return &RedisDirectory{
		client: client,
		prefix: "presence:",
		ttl:    90 * time.Second,
	}
}

func (d *RedisDirectory) key(userID uuid.UUID) string {
	return d.prefix + userID.String()
}

func (d *RedisDirectory) Connect(ctx context.Context, userID uuid.UUID) error {
	if err := d.client.Set(ctx, d.key(userID), "1", d.ttl).Err(); err != nil {
		return fmt.Errorf("mark user connected: %w", err)
	}
	return nil
}

func (d *RedisDirectory) Disconnect(ctx context.Context, userID uuid.UUID) error {
	if err := d.client.Del(ctx, d.key(userID)).Err(); err != nil {
		return fmt.Errorf("mark user disconnected: %w", err)
	}
	return nil
}

func (d *RedisDirectory) IsConnected(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("presence lookup: %w", err)
	}
	return n > 0, nil
}

func (d *RedisDirectory) Close() error {
	return d.client.Close()
}
