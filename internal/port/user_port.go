package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/marketgo/internal/domain"
)

type UserRepository interface {
	// GetUser returns an active user.
	GetUser(ctx context.Context, userID uuid.UUID) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	InsertUser(ctx context.Context, user domain.User) (uuid.UUID, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, username, email string) error
	SoftDeleteUser(ctx context.Context, userID uuid.UUID) error
}
