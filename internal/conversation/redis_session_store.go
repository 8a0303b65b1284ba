package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// RedisSessionStore keeps sessions in Redis; expiry is the key TTL, renewed
// on every save.
type RedisSessionStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisSessionStore{redis: client, ttl: ttl}
}

func (s *RedisSessionStore) Load(ctx context.Context, sessionID string) (State, bool, error) {
	ctx, span := conversationTracer.Start(ctx, "conversation.load_session")
	defer span.End()
	span.SetAttributes(attribute.String("hospitality.session_id", sessionID))

	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return State{}, false, nil
		}
		span.RecordError(err)
		return State{}, false, fmt.Errorf("conversation: failed to load session: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		span.RecordError(err)
		return State{}, false, fmt.Errorf("conversation: failed to decode session: %w", err)
	}
	return state, true, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, state State) error {
	ctx, span := conversationTracer.Start(ctx, "conversation.save_session")
	defer span.End()
	span.SetAttributes(attribute.String("hospitality.session_id", state.SessionID))

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(state.SessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	ctx, span := conversationTracer.Start(ctx, "conversation.delete_session")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to delete session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("booking_session:%s", id)
}
