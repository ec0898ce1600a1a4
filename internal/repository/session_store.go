package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"masterlist-web/internal/models"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix  = "import:session:"
	lockKeyPrefix     = "import:lock:"
	progressKeyPrefix = "import:progress:"
)

// SessionStore keeps import session state in Redis. Every write refreshes the TTL.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, session *models.ImportSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.client.Set(ctx, sessionKeyPrefix+session.Code, data, s.ttl).Err()
}

// SaveIfExists overwrites a session only while its key is still present, so a
// discarded session is never written back. It reports whether the write happened.
func (s *SessionStore) SaveIfExists(ctx context.Context, session *models.ImportSession) (bool, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return false, fmt.Errorf("failed to encode session: %w", err)
	}
	return s.client.SetXX(ctx, sessionKeyPrefix+session.Code, data, s.ttl).Result()
}

func (s *SessionStore) Load(ctx context.Context, code string) (*models.ImportSession, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+code).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session models.ImportSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", code, err)
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, code string) error {
	return s.client.Del(ctx, sessionKeyPrefix+code, progressKeyPrefix+code).Err()
}

func (s *SessionStore) Exists(ctx context.Context, code string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKeyPrefix+code).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Lock takes the per-session edit lock. It returns false when someone else holds it.
func (s *SessionStore) Lock(ctx context.Context, code string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, lockKeyPrefix+code, time.Now().Unix(), ttl).Result()
}

func (s *SessionStore) Unlock(ctx context.Context, code string) error {
	return s.client.Del(ctx, lockKeyPrefix+code).Err()
}

func (s *SessionStore) RecordProgress(ctx context.Context, code string, result models.SubmissionResult) error {
	field := "failed"
	if result.Success {
		field = "succeeded"
	}

	key := progressKeyPrefix + code
	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, key, field, 1)
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Progress(ctx context.Context, code string) (int, int, error) {
	values, err := s.client.HGetAll(ctx, progressKeyPrefix+code).Result()
	if err != nil {
		return 0, 0, err
	}
	succeeded, _ := strconv.Atoi(values["succeeded"])
	failed, _ := strconv.Atoi(values["failed"])
	return succeeded, failed, nil
}
