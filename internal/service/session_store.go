package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore registra las sesiones vivas del gateway: para cada jti guarda
// el usuario dueño y su vencimiento. Es el unico estado compartido entre
// requests; Resolve contrasta el dueño registrado contra los claims del token.
type SessionStore interface {
	Store(jti, userID string, ttl time.Duration) error
	// Lookup devuelve el usuario dueño del jti y si la sesion sigue viva.
	Lookup(jti string) (userID string, alive bool, err error)
	Revoke(jti string) error
}

type sessionEntry struct {
	userID    string
	expiresAt time.Time
}

type memorySessionStore struct {
	mu    sync.Mutex
	items map[string]sessionEntry
}

// NewMemorySessionStore crea un SessionStore en memoria protegido por mutex.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		items: make(map[string]sessionEntry),
	}
}

func (s *memorySessionStore) Store(jti, userID string, ttl time.Duration) error {
	if strings.TrimSpace(jti) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[jti] = sessionEntry{
		userID:    userID,
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (s *memorySessionStore) Lookup(jti string) (string, bool, error) {
	if strings.TrimSpace(jti) == "" {
		return "", false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[jti]
	if !ok {
		return "", false, nil
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(s.items, jti)
		return "", false, nil
	}
	return entry.userID, true, nil
}

func (s *memorySessionStore) Revoke(jti string) error {
	if strings.TrimSpace(jti) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, jti)
	return nil
}

type redisSessionStore struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionStore crea un SessionStore respaldado por Redis; el valor de
// cada clave es el usuario dueño y el TTL lo administra Redis.
func NewRedisSessionStore(client *redis.Client) SessionStore {
	if client == nil {
		return nil
	}
	return &redisSessionStore{
		client: client,
		prefix: "gateway:session:",
	}
}

func (s *redisSessionStore) Store(jti, userID string, ttl time.Duration) error {
	if strings.TrimSpace(jti) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+jti, userID, ttl).Err()
}

func (s *redisSessionStore) Lookup(jti string) (string, bool, error) {
	if strings.TrimSpace(jti) == "" {
		return "", false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	userID, err := s.client.Get(ctx, s.prefix+jti).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return userID, true, nil
}

func (s *redisSessionStore) Revoke(jti string) error {
	if strings.TrimSpace(jti) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Del(ctx, s.prefix+jti).Err()
}
