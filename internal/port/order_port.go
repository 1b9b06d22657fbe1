package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/marketgo/internal/domain"
)

type OrderRepository interface {
	// GetOrder returns the order with its purchased cart lines,
	// scoped to the owner.
	GetOrder(ctx context.Context, orderID, ownerID uuid.UUID) (domain.Order, error)

	SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)

	InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error)
}
