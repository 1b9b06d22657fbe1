package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/marketgo/internal/domain"
)

type CartRepository interface {
	// GetActiveCart returns the owner's single active cart as a
	// materialized aggregate: active lines with their products.
	GetActiveCart(ctx context.Context, ownerID uuid.UUID) (domain.Cart, error)

	InsertCart(ctx context.Context, ownerID uuid.UUID) (uuid.UUID, error)

	// GetLine returns the line for (cartID, productID) regardless of
	// status, there is at most one per pair.
	GetLine(ctx context.Context, cartID, productID uuid.UUID) (domain.CartLine, error)

	InsertLine(ctx context.Context, line domain.CartLine) (uuid.UUID, error)
	UpdateLine(ctx context.Context, lineID uuid.UUID, quantity int, status domain.LineStatus) error

	// MarkLinesPurchased transitions every given active line to purchased,
	// failing if any line is no longer active.
	MarkLinesPurchased(ctx context.Context, lineIDs []uuid.UUID) error

	// MarkCartPurchased transitions an active cart to purchased, at most once.
	MarkCartPurchased(ctx context.Context, cartID uuid.UUID) error
}
