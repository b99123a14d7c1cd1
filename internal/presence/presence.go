package presence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const ttl = 90 * time.Second

// Store tracks online users in Redis under <prefix>:presence:<userID>.
// Entries expire on their own if the relay dies without cleanup.
type Store struct {
	client *redis.Client
	prefix string
}

func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(userID string) string {
	return s.prefix + ":presence:" + userID
}

func (s *Store) Online(ctx context.Context, userID string) error {
	return s.client.Set(ctx, s.key(userID), "online", ttl).Err()
}

func (s *Store) Offline(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}

func (s *Store) IsOnline(ctx context.Context, userID string) (bool, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == "online", nil
}
