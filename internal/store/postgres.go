package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eshitag/Dev-connector/internal/models"
)

const uniqueViolation = "23505"

// PostgresStore handles user CRUD against PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name       VARCHAR(100) NOT NULL,
			email      VARCHAR(255) UNIQUE NOT NULL,
			password   VARCHAR(255) NOT NULL,
			avatar     TEXT         NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ  DEFAULT NOW()
		)
	`)
	return err
}

// CreateUser inserts u and fills in its ID. A taken email yields ErrDuplicate.
func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password, avatar, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		u.Name, u.Email, u.Password, u.Avatar, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("create user %s: %w", u.Email, ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, password, avatar, created_at FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Avatar, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetUserByID never loads the password hash.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, avatar, created_at FROM users WHERE id::text = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetUsersByIDs returns the users found among ids keyed by id. Missing ids
// are simply absent from the map.
func (s *PostgresStore) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, email, avatar, created_at FROM users WHERE id::text = ANY($1)`, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.User, error) {
		var u models.User
		err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.CreatedAt)
		return &u, err
	})
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	out := make(map[string]*models.User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
