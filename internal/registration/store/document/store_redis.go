package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"touristid/internal/registration/models"
	id "touristid/pkg/domain"
	"touristid/pkg/platform/sentinel"
)

const documentKeyPrefix = "reg:doc:"

// RedisStore keeps one key per session slot.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func documentKey(sessionID id.SessionID, slot models.DocumentSlot) string {
	return documentKeyPrefix + sessionID.String() + ":" + string(slot)
}

func (s *RedisStore) Put(ctx context.Context, sessionID id.SessionID, slot models.DocumentSlot, blob Blob) error {
	data, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return s.client.Set(ctx, documentKey(sessionID, slot), data, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, sessionID id.SessionID, slot models.DocumentSlot) (Blob, error) {
	data, err := s.client.Get(ctx, documentKey(sessionID, slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Blob{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Blob{}, err
	}
	var blob Blob
	if err := json.Unmarshal(data, &blob); err != nil {
		return Blob{}, fmt.Errorf("unmarshal document: %w", err)
	}
	return blob, nil
}

// Touch resets the TTL of each slot key; EXPIRE on an absent slot is a no-op.
func (s *RedisStore) Touch(ctx context.Context, sessionID id.SessionID) error {
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, slot := range models.Slots {
			p.Expire(ctx, documentKey(sessionID, slot), s.ttl)
		}
		return nil
	})
	return err
}

// DeleteAll removes every slot key of the session in one round trip.
func (s *RedisStore) DeleteAll(ctx context.Context, sessionID id.SessionID) error {
	keys := make([]string, 0, len(models.Slots))
	for _, slot := range models.Slots {
		keys = append(keys, documentKey(sessionID, slot))
	}
	return s.client.Del(ctx, keys...).Err()
}
