package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Kuba27x/Cinema-app/internal/core/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 30 * time.Second

// SeatCache stores each showing's reserved seats as a sorted JSON array
// under seats:<showing id>.
type SeatCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewSeatCache(client redis.Cmdable, ttl time.Duration) *SeatCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SeatCache{client: client, ttl: ttl}
}

func Key(showingID uuid.UUID) string {
	return fmt.Sprintf("seats:%s", showingID.String())
}

func (c *SeatCache) Get(ctx context.Context, showingID uuid.UUID) (domain.SeatSet, bool, error) {
	raw, err := c.client.Get(ctx, Key(showingID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read seat cache: %w", err)
	}

	var seats []int
	if err := json.Unmarshal(raw, &seats); err != nil {
		return nil, false, fmt.Errorf("failed to decode seat cache: %w", err)
	}
	return domain.NewSeatSet(seats...), true, nil
}

func (c *SeatCache) Set(ctx context.Context, showingID uuid.UUID, seats domain.SeatSet) error {
	raw, err := json.Marshal(seats.Sorted())
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, Key(showingID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write seat cache: %w", err)
	}
	return nil
}

func (c *SeatCache) Invalidate(ctx context.Context, showingID uuid.UUID) error {
	if err := c.client.Del(ctx, Key(showingID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate seat cache: %w", err)
	}
	return nil
}
