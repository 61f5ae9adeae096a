package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/domain"
)

const approvedListKey = "reviews:approved"

// ErrMiss is returned when the requested entry is not cached.
var ErrMiss = errors.New("cache miss")

// ReviewCache holds the public approved-review listing in Redis. Only the
// listing is cached; aggregate stats are always recomputed from the store.
type ReviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReviewCache creates a Redis-backed review cache.
func NewReviewCache(client *redis.Client, ttl time.Duration) *ReviewCache {
	return &ReviewCache{
		client: client,
		ttl:    ttl,
	}
}

// GetApproved retrieves the cached approved-review listing.
func (c *ReviewCache) GetApproved(ctx context.Context) ([]domain.Review, error) {
	data, err := c.client.Get(ctx, approvedListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("redis get approved reviews: %w", err)
	}

	var reviews []domain.Review
	if err := json.Unmarshal(data, &reviews); err != nil {
		return nil, fmt.Errorf("unmarshal cached reviews: %w", err)
	}

	return reviews, nil
}

// SetApproved stores the approved-review listing with the configured TTL.
func (c *ReviewCache) SetApproved(ctx context.Context, reviews []domain.Review) error {
	data, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("marshal reviews: %w", err)
	}

	if err := c.client.Set(ctx, approvedListKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set approved reviews: %w", err)
	}

	return nil
}

// Invalidate drops the cached listing. Moderation and deletes change what
// the public listing shows, so both call this.
func (c *ReviewCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, approvedListKey).Err(); err != nil {
		return fmt.Errorf("redis del approved reviews: %w", err)
	}

	return nil
}
