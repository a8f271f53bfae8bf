package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/star-emergency/alert-gateway/pkg/models"
)

// Session is the server-side record of an issued login token. Keeping it in
// Redis lets logout and forced revocation work without re-minting JWTs.
type Session struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// SessionCache stores sessions in Redis keyed by session id.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache connects to Redis and verifies the connection.
func NewSessionCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*SessionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &SessionCache{client: client, ttl: ttl}, nil
}

func sessionKey(id string) string {
	return "session:" + id
}

// Put stores a session with the cache TTL.
func (c *SessionCache) Put(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := c.client.Set(ctx, sessionKey(session.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get fetches a session by id. A missing session returns redis.Nil wrapped.
func (c *SessionCache) Get(ctx context.Context, id string) (*Session, error) {
	data, err := c.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		return nil, fmt.Errorf("session %s not found: %w", id, err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", id, err)
	}
	return &session, nil
}

// Delete removes a session (logout / revocation).
func (c *SessionCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, sessionKey(id)).Err()
}

// Close releases the underlying Redis connection.
func (c *SessionCache) Close() error {
	return c.client.Close()
}
