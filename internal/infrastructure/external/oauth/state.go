package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store interface for state storage
type Store interface {
	Set(key string, value string, expiration time.Duration)
	Get(key string) (string, bool)
	Delete(key string)
}

// RedisStore backs OAuth state with Redis so state survives restarts
// and works across replicas.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed state store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (rs *RedisStore) Set(key string, value string, expiration time.Duration) {
	rs.client.Set(context.Background(), key, value, expiration)
}

func (rs *RedisStore) Get(key string) (string, bool) {
	value, err := rs.client.Get(context.Background(), key).Result()
	if err != nil {
		return "", false
	}
	return value, true
}

func (rs *RedisStore) Delete(key string) {
	rs.client.Del(context.Background(), key)
}

// StateManager manages OAuth state tokens for CSRF protection
type StateManager struct {
	store      Store
	expiration time.Duration
}

// NewStateManager creates a new state manager
func NewStateManager(store Store) *StateManager {
	return &StateManager{
		store:      store,
		expiration: 15 * time.Minute, // State expires in 15 minutes
	}
}

// GenerateState generates a random state token and stores it
func (sm *StateManager) GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	state := base64.URLEncoding.EncodeToString(b)

	key := fmt.Sprintf("oauth:state:%s", state)
	sm.store.Set(key, "valid", sm.expiration)

	return state, nil
}

// ValidateState validates a state token (one-time use)
func (sm *StateManager) ValidateState(state string) bool {
	key := fmt.Sprintf("oauth:state:%s", state)

	value, exists := sm.store.Get(key)
	if !exists || value != "valid" {
		return false
	}

	// Delete the state immediately (one-time use)
	sm.store.Delete(key)

	return true
}
