package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nvujicic/supplyline/internal/orders/ports"
	"github.com/redis/go-redis/v9"
)

const keyFormat = "idem:order:place:%s"

// defaultTTL bounds how long a placement key replays. Retries arrive
// within seconds; a day is comfortably past any client retry policy.
const defaultTTL = 24 * time.Hour

// Store keeps placement responses in Redis so duplicate requests replay
// the first response instead of writing a second order.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client, ttl: defaultTTL}
}

func (s *Store) Get(ctx context.Context, key string) (*ports.StoredResponse, error) {
	raw, err := s.client.Get(ctx, fmt.Sprintf(keyFormat, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}

	var resp ports.StoredResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	return &resp, nil
}

func (s *Store) Save(ctx context.Context, key string, response ports.StoredResponse) error {
	raw, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("encode idempotency record: %w", err)
	}

	// SetNX keeps the first stored response authoritative under races.
	if err := s.client.SetNX(ctx, fmt.Sprintf(keyFormat, key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set idempotency key: %w", err)
	}
	return nil
}
