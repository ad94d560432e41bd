package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/authbridge/authbridge/internal/model"
)

// MemoryUserRepository is an in-process UserRepository used for local
// development and tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User // keyed by subject
}

func NewMemoryUser() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]model.User)}
}

func (r *MemoryUserRepository) GetOrCreate(_ context.Context, subject, email string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[subject]; ok {
		u.Email = email
		u.UpdatedAt = time.Now()
		r.users[subject] = u
		return u, nil
	}

	now := time.Now()
	u := model.User{
		ID:        uuid.NewString(),
		Subject:   subject,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.users[subject] = u
	return u, nil
}

func (r *MemoryUserRepository) GetBySubject(_ context.Context, subject string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[subject]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (r *MemoryUserRepository) Update(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.Subject]
	if !ok {
		return model.User{}, ErrNotFound
	}
	user.ID = existing.ID
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	r.users[user.Subject] = user
	return user, nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, subject string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[subject]; !ok {
		return ErrNotFound
	}
	delete(r.users, subject)
	return nil
}

var _ UserRepository = (*MemoryUserRepository)(nil)
