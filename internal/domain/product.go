package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ProductStatus string

// remember to add new statuses to the productTransitions map
const (
	ProductStatusActive  ProductStatus = "active"
	ProductStatusDeleted ProductStatus = "deleted"
)

var productTransitions = map[ProductStatus][]ProductStatus{
	ProductStatusActive:  {ProductStatusDeleted},
	ProductStatusDeleted: {},
}

func ToProductStatus(s string) (ProductStatus, error) {
	status := ProductStatus(s)
	if _, ok := productTransitions[status]; ok {
		return status, nil
	}

	return "", errors.New("invalid product status")
}

func (s ProductStatus) CanTransition(to ProductStatus) bool {
	for _, allowed := range productTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Product struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	CategoryID  uuid.UUID
	Title       string
	Description string
	Price       Money
	Quantity    int
	Status      ProductStatus
	Images      []ProductImage

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ProductImage struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Path      string
	URL       string

	CreatedAt time.Time
}

// StockDecrement is one product's share of a purchase, applied as an
// atomic conditional update so stock never goes negative.
type StockDecrement struct {
	ProductID uuid.UUID
	Quantity  int
}

// HasStock reports whether qty units can be taken from the shelf right now.
// It is a pre-check only, the decrement itself must be conditional.
func (p Product) HasStock(qty int) bool {
	return qty <= p.Quantity
}

func (p *Product) Delete() error {
	if !p.Status.CanTransition(ProductStatusDeleted) {
		return fmt.Errorf("product %s: transition %s -> %s not allowed", p.ID, p.Status, ProductStatusDeleted)
	}

	p.Status = ProductStatusDeleted
	return nil
}
