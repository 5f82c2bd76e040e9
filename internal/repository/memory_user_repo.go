package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"tutorgate/internal/domain"
)

// MemoryUserRepository implementa UserRepository en memoria.
// Se usa cuando no hay DATABASE_URL configurada (ambiente de desarrollo) y en tests.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
	byAuth  map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
		byAuth:  make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[user.ID] = user
	if user.Email != "" {
		r.byEmail[strings.ToLower(user.Email)] = user.ID
	}
	if user.AuthProvider != "" && user.AuthSubject != "" {
		r.byAuth[user.AuthProvider+"|"+user.AuthSubject] = user.ID
	}
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[strings.ToLower(email)]
	r.mu.RUnlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return r.GetByID(context.Background(), id)
}

func (r *MemoryUserRepository) GetByAuth(_ context.Context, provider, subject string) (domain.User, error) {
	r.mu.RLock()
	id, ok := r.byAuth[provider+"|"+subject]
	r.mu.RUnlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return r.GetByID(context.Background(), id)
}
