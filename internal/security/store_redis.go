package security

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists verification state in Redis so flags survive process
// restarts and can be shared by multiple instances.
type RedisStore struct {
	client *redis.Client
}

const (
	fieldDocumentVerified = "document_verified"
	fieldLivenessVerified = "liveness_verified"
	fieldLastDocument     = "last_document_upload"
	fieldLastLiveness     = "last_liveness_check"
)

// NewRedis constructs a Redis-backed verification-state store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func stateKey(email string) string {
	return "security:" + email
}

func (s *RedisStore) Get(ctx context.Context, email string) (State, error) {
	fields, err := s.client.HGetAll(ctx, stateKey(email)).Result()
	if err != nil {
		return State{}, fmt.Errorf("get security state: %w", err)
	}

	var st State
	st.DocumentVerified = fields[fieldDocumentVerified] == "1"
	st.LivenessVerified = fields[fieldLivenessVerified] == "1"
	if raw, ok := fields[fieldLastDocument]; ok && raw != "" {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			st.LastDocumentUpload = &t
		}
	}
	if raw, ok := fields[fieldLastLiveness]; ok && raw != "" {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			st.LastLivenessCheck = &t
		}
	}
	return st, nil
}

func (s *RedisStore) MarkDocumentVerified(ctx context.Context, email string, at time.Time) error {
	err := s.client.HSet(ctx, stateKey(email),
		fieldDocumentVerified, "1",
		fieldLastDocument, at.Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("mark document verified: %w", err)
	}
	return nil
}

func (s *RedisStore) MarkLivenessVerified(ctx context.Context, email string, at time.Time) error {
	err := s.client.HSet(ctx, stateKey(email),
		fieldLivenessVerified, "1",
		fieldLastLiveness, at.Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("mark liveness verified: %w", err)
	}
	return nil
}
