package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByToken(ctx context.Context, token string) (User, error)
}

const uniqueViolationCode = "23505"

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user. Each customer registers at most once.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	_, err := r.db.Exec(ctx, `INSERT INTO users (id, customer_xid, token, created_at)
        VALUES ($1, $2, $3, $4)`, user.ID, user.CustomerXID, user.Token, user.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrCustomerExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByToken fetches the user owning the given bearer token.
func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, customer_xid, token, created_at FROM users WHERE token = $1`, token)
	var user User
	if err := row.Scan(&user.ID, &user.CustomerXID, &user.Token, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUnknownCredential
		}
		return User{}, fmt.Errorf("find user by token: %w", err)
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
