package repository

import (
	"context"
	"errors"

	"github.com/authbridge/authbridge/internal/model"
)

// ErrNotFound is returned when no user matches the lookup key.
var ErrNotFound = errors.New("user not found")

type UserRepository interface {
	GetOrCreate(ctx context.Context, subject, email string) (model.User, error)
	GetBySubject(ctx context.Context, subject string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Update(ctx context.Context, user model.User) (model.User, error)
	Delete(ctx context.Context, subject string) error
}
