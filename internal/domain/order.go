package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is the durable receipt of a purchase. It references the purchased
// cart one-to-one and never changes after creation.
type Order struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	CartID  uuid.UUID
	Total   Money

	// Lines are the purchased cart lines, populated on reads only.
	Lines []CartLine

	CreatedAt time.Time
}

// PurchaseItem is one line of the purchase summary sent to the buyer.
type PurchaseItem struct {
	ProductName string
	UnitPrice   Money
	Quantity    int
	Subtotal    Money
}

type PurchaseSummary struct {
	Items []PurchaseItem
	Total Money
}
