package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix  = "sess:"
	attendeeKeyPrefix = "sess:attendee:"
)

// RedisStore shares sessions between server instances. Each session is a
// JSON value under sess:<id> with a TTL; sess:attendee:<id> is a set of the
// attendee's session IDs so an account deletion can end them all.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Put(ctx context.Context, s Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	setKey := attendeeKeyPrefix + s.AttendeeID
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+s.ID, b, ttl)
	pipe.SAdd(ctx, setKey, s.ID)
	pipe.Expire(ctx, setKey, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, ErrNotFound
	}
	b, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	s, err := r.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+id)
	pipe.SRem(ctx, attendeeKeyPrefix+s.AttendeeID, id)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisStore) DeleteByAttendee(ctx context.Context, attendeeID string) error {
	setKey := attendeeKeyPrefix + attendeeID
	ids, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKeyPrefix+id)
	}
	keys = append(keys, setKey)
	return r.client.Del(ctx, keys...).Err()
}
