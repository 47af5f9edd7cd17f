// Package cache adds a Redis read-through cache in front of the trip store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/repo"
)

// Config holds the Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache.NewClient: ping: %w", err)
	}
	return client, nil
}

// kv is the subset of *redis.Client the cache uses.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// TripCache decorates a repo.TripStore, caching single-trip reads.
// Writes go to the store first and then evict the cached copy. Cache
// failures are logged and never fail the request.
type TripCache struct {
	next repo.TripStore
	kv   kv
	ttl  time.Duration
}

// compile-time check that TripCache satisfies the store contract.
var _ repo.TripStore = (*TripCache)(nil)

// NewTripCache wraps next with a cache stored in client for ttl.
func NewTripCache(next repo.TripStore, client kv, ttl time.Duration) *TripCache {
	return &TripCache{next: next, kv: client, ttl: ttl}
}

func tripKey(id uuid.UUID) string {
	return fmt.Sprintf("trip:%s", id)
}

// Load passes through; owner listings change too often to cache.
func (c *TripCache) Load(ctx context.Context, ownerID string) ([]domain.Trip, error) {
	return c.next.Load(ctx, ownerID)
}

// LoadPaged passes through.
func (c *TripCache) LoadPaged(ctx context.Context, ownerID string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return c.next.LoadPaged(ctx, ownerID, p)
}

// LoadByID serves the trip from Redis when present and fills it on a miss.
func (c *TripCache) LoadByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	key := tripKey(id)

	val, err := c.kv.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var t domain.Trip
		if err := json.Unmarshal(val, &t); err == nil {
			return t, nil
		}
		slog.WarnContext(ctx, "trip cache entry unreadable", "key", key)
	case !errors.Is(err, redis.Nil):
		slog.WarnContext(ctx, "trip cache get failed", "key", key, "error", err)
	}

	t, err := c.next.LoadByID(ctx, id)
	if err != nil {
		return domain.Trip{}, err
	}

	data, err := json.Marshal(t)
	if err == nil {
		err = c.kv.Set(ctx, key, data, c.ttl).Err()
	}
	if err != nil {
		slog.WarnContext(ctx, "trip cache set failed", "key", key, "error", err)
	}
	return t, nil
}

// Upsert writes through to the store and evicts the cached trip.
func (c *TripCache) Upsert(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	saved, err := c.next.Upsert(ctx, trip)
	if err != nil {
		return domain.Trip{}, err
	}
	c.evict(ctx, saved.ID)
	return saved, nil
}

// Delete removes the trip from the store and the cache.
func (c *TripCache) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	if err := c.next.Delete(ctx, id, ownerID); err != nil {
		return err
	}
	c.evict(ctx, id)
	return nil
}

func (c *TripCache) evict(ctx context.Context, id uuid.UUID) {
	if err := c.kv.Del(ctx, tripKey(id)).Err(); err != nil {
		slog.WarnContext(ctx, "trip cache evict failed", "trip_id", id, "error", err)
	}
}
