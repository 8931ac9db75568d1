// internal/session/store.go
package session

import (
	"context"
	"strings"
	"time"

	"wms-dispatch/internal/common/errors"
	"wms-dispatch/internal/models"

	"github.com/redis/go-redis/v9"
)

// Store persists session records so any instance can answer status and
// logout calls.
type Store interface {
	Save(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]string, error)
}

const (
	sessionKeyPrefix = "session:"
	userKeyPrefix    = "user_sessions:"
)

// RedisStore keeps each session in a hash at session:{id} and indexes ids in
// a set per user. Both keys expire with the session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore keeps each record for ttl after its last save.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func userKey(userID string) string {
	return userKeyPrefix + userID
}

// Save writes the session hash, refreshes its TTL and indexes it by user.
func (s *RedisStore) Save(ctx context.Context, sess *models.Session) error {
	fields := map[string]interface{}{
		"user_id":       sess.UserID,
		"state":         sess.State,
		"created_at":    sess.CreatedAt.Format(time.RFC3339Nano),
		"last_activity": sess.LastActivity.Format(time.RFC3339Nano),
		"warning_at":    sess.WarningAt.Format(time.RFC3339Nano),
		"expires_at":    sess.ExpiresAt.Format(time.RFC3339Nano),
	}
	for k, v := range sess.Metadata {
		fields["meta:"+k] = v
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		key := sessionKey(sess.ID)
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, s.ttl)
		pipe.SAdd(ctx, userKey(sess.UserID), sess.ID)
		pipe.Expire(ctx, userKey(sess.UserID), s.ttl)
		return nil
	})
	if err != nil {
		return errors.NewSessionStoreFailedError(err)
	}
	return nil
}

// Get returns SESSION_NOT_FOUND when the record is gone.
func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	values, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, errors.NewSessionStoreFailedError(err)
	}
	if len(values) == 0 {
		return nil, errors.NewSessionNotFoundError(id)
	}

	sess := &models.Session{
		ID:           id,
		UserID:       values["user_id"],
		State:        values["state"],
		CreatedAt:    parseTime(values["created_at"]),
		LastActivity: parseTime(values["last_activity"]),
		WarningAt:    parseTime(values["warning_at"]),
		ExpiresAt:    parseTime(values["expires_at"]),
	}
	for k, v := range values {
		if name, ok := strings.CutPrefix(k, "meta:"); ok {
			if sess.Metadata == nil {
				sess.Metadata = make(map[string]string)
			}
			sess.Metadata[name] = v
		}
	}
	return sess, nil
}

// Delete removes the session and its index entry. Deleting an unknown
// session is not an error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	userID, err := s.client.HGet(ctx, sessionKey(id), "user_id").Result()
	if err != nil && err != redis.Nil {
		return errors.NewSessionStoreFailedError(err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(id))
		if userID != "" {
			pipe.SRem(ctx, userKey(userID), id)
		}
		return nil
	})
	if err != nil {
		return errors.NewSessionStoreFailedError(err)
	}
	return nil
}

// ListByUser returns the session IDs indexed for userID.
func (s *RedisStore) ListByUser(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, errors.NewSessionStoreFailedError(err)
	}
	return ids, nil
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
