package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/authbridge/authbridge/internal/model"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUser(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) GetOrCreate(ctx context.Context, subject, email string) (model.User, error) {
	query := `
		INSERT INTO users (subject, email)
		VALUES ($1, $2)
		ON CONFLICT (subject) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, subject, email, name, phone_number, created_at, updated_at`

	row := r.db.QueryRowContext(ctx, query, subject, email)
	return scanUser(row)
}

func (r *PostgresUserRepository) GetBySubject(ctx context.Context, subject string) (model.User, error) {
	query := `
		SELECT id, subject, email, name, phone_number, created_at, updated_at
		FROM users
		WHERE subject = $1`

	return scanUser(r.db.QueryRowContext(ctx, query, subject))
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `
		SELECT id, subject, email, name, phone_number, created_at, updated_at
		FROM users
		WHERE email = $1`

	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresUserRepository) Update(ctx context.Context, user model.User) (model.User, error) {
	query := `
		UPDATE users
		SET email = $1, name = $2, phone_number = $3, updated_at = now()
		WHERE id = $4
		RETURNING id, subject, email, name, phone_number, created_at, updated_at`

	row := r.db.QueryRowContext(ctx, query, user.Email, user.Name, user.PhoneNumber, user.ID)
	return scanUser(row)
}

func (r *PostgresUserRepository) Delete(ctx context.Context, subject string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE subject = $1`, subject)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanUser(row scannable) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Subject, &u.Email, &u.Name,
		&u.PhoneNumber, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
