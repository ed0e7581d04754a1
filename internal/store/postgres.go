package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arjun/estate-market/backend/internal/models"
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// PostgresStore handles user CRUD against PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users table if it doesn't exist. The UNIQUE
// constraints on email and username are what the auth handlers rely on to
// close the check-then-write race on concurrent signups.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username   VARCHAR(50)  NOT NULL,
			email      VARCHAR(255) NOT NULL,
			password   VARCHAR(255) NOT NULL,
			avatar     TEXT         NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			CONSTRAINT users_username_key UNIQUE (username),
			CONSTRAINT users_email_key    UNIQUE (email)
		)
	`)
	return err
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	var out models.User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password, avatar)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, username, email, password, avatar, created_at, updated_at`,
		u.Username, u.Email, u.Password, u.Avatar,
	).Scan(&out.ID, &out.Username, &out.Email, &out.Password, &out.Avatar, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &out, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, email, password, avatar, created_at, updated_at
		 FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, email, password, avatar, created_at, updated_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, u *models.User) (*models.User, error) {
	var out models.User
	err := s.pool.QueryRow(ctx,
		`UPDATE users
		 SET username = $1, email = $2, password = $3, avatar = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING id, username, email, password, avatar, created_at, updated_at`,
		u.Username, u.Email, u.Password, u.Avatar, u.ID,
	).Scan(&out.ID, &out.Username, &out.Email, &out.Password, &out.Avatar, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if mapped := mapUniqueViolation(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &out, nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// mapUniqueViolation translates Postgres unique-violation errors into the
// store sentinels by constraint name, or returns err unchanged.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "users_email_key":
			return ErrDuplicateEmail
		case "users_username_key":
			return ErrDuplicateUsername
		}
	}
	return err
}
