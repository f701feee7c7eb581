package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
)

// ViewCache holds rendered profile views. It is an optimization only:
// every method degrades to a no-op or miss on any redis failure so the
// read path never depends on the cache being up.
type ViewCache interface {
	GetProfileView(ctx context.Context, profileID uuid.UUID) (*ProfileView, bool)
	SetProfileView(ctx context.Context, profileID uuid.UUID, view ProfileView)
	InvalidateProfileView(ctx context.Context, profileID uuid.UUID)
	Close() error
}

type redisViewCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewViewCache connects to redis at REDIS_ADDR. When the address is
// unset, a no-op cache is returned so the service runs without redis.
func NewViewCache(log *logger.Logger) (ViewCache, error) {
	cacheLog := log.With("service", "ViewCache")

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		cacheLog.Info("REDIS_ADDR unset; profile view cache disabled")
		return &noopViewCache{}, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisViewCache{log: cacheLog, rdb: rdb, ttl: 10 * time.Minute}, nil
}

func profileViewKey(profileID uuid.UUID) string {
	return "profile_view:" + profileID.String()
}

func (c *redisViewCache) GetProfileView(ctx context.Context, profileID uuid.UUID) (*ProfileView, bool) {
	raw, err := c.rdb.Get(ctx, profileViewKey(profileID)).Bytes()
	if err != nil {
		return nil, false
	}
	var view ProfileView
	if err := json.Unmarshal(raw, &view); err != nil {
		c.log.Warn("Failed to decode cached profile view", "error", err)
		return nil, false
	}
	return &view, true
}

func (c *redisViewCache) SetProfileView(ctx context.Context, profileID uuid.UUID, view ProfileView) {
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, profileViewKey(profileID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("Failed to cache profile view", "error", err)
	}
}

func (c *redisViewCache) InvalidateProfileView(ctx context.Context, profileID uuid.UUID) {
	if err := c.rdb.Del(ctx, profileViewKey(profileID)).Err(); err != nil {
		c.log.Warn("Failed to invalidate profile view", "error", err)
	}
}

func (c *redisViewCache) Close() error {
	return c.rdb.Close()
}

type noopViewCache struct{}

func (noopViewCache) GetProfileView(context.Context, uuid.UUID) (*ProfileView, bool) {
	return nil, false
}
func (noopViewCache) SetProfileView(context.Context, uuid.UUID, ProfileView) {}
func (noopViewCache) InvalidateProfileView(context.Context, uuid.UUID) {}
func (noopViewCache) Close() error { return nil }
