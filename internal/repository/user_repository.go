package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/marketgo/internal/apperr"
	"github.com/nikolayk812/marketgo/internal/domain"
	"github.com/nikolayk812/marketgo/internal/port"
)

var (
	ErrUserNotFound = apperr.New(apperr.KindNotFound, "user not found")
	ErrEmailTaken   = apperr.New(apperr.KindConflict, "the email you entered is already taken")
)

type userRepository struct {
	db DBTX
}

func NewUser(pool *pgxpool.Pool) port.UserRepository {
	return &userRepository{db: pool}
}

const userColumns = `id, username, email, password_hash, role, status, created_at, updated_at`

func (r *userRepository) GetUser(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND status = 'active'`, userID)

	return scanUser(row)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND status = 'active'`, email)

	return scanUser(row)
}

func (r *userRepository) InsertUser(ctx context.Context, user domain.User) (uuid.UUID, error) {
	var userID uuid.UUID

	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, role)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		user.Username, user.Email, user.PasswordHash, string(user.Role)).Scan(&userID)
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, fmt.Errorf("InsertUser: %w", ErrEmailTaken)
		}
		return uuid.Nil, fmt.Errorf("InsertUser: %w", err)
	}

	return userID, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, userID uuid.UUID, username, email string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE users SET username = $2, email = $3, updated_at = now()
		 WHERE id = $1 AND status = 'active'`, userID, username, email)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("UpdateUser: %w", ErrEmailTaken)
		}
		return fmt.Errorf("UpdateUser: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("UpdateUser: %w", ErrUserNotFound)
	}

	return nil
}

func (r *userRepository) SoftDeleteUser(ctx context.Context, userID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE users SET status = 'deleted', updated_at = now()
		 WHERE id = $1 AND status = 'active'`, userID)
	if err != nil {
		return fmt.Errorf("SoftDeleteUser: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("SoftDeleteUser: %w", ErrUserNotFound)
	}

	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u      domain.User
		role   string
		status string
	)

	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return u, fmt.Errorf("scanUser: %w", ErrUserNotFound)
		}
		return u, fmt.Errorf("scanUser: %w", err)
	}

	if u.Role, err = domain.ToRole(role); err != nil {
		return u, fmt.Errorf("domain.ToRole[%s]: %w", role, err)
	}
	u.Status = domain.UserStatus(status)

	return u, nil
}
