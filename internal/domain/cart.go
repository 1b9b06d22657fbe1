package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type CartStatus string

// remember to add new statuses to the cartTransitions map
const (
	CartStatusActive    CartStatus = "active"
	CartStatusPurchased CartStatus = "purchased"
)

var cartTransitions = map[CartStatus][]CartStatus{
	CartStatusActive:    {CartStatusPurchased},
	CartStatusPurchased: {},
}

func ToCartStatus(s string) (CartStatus, error) {
	status := CartStatus(s)
	if _, ok := cartTransitions[status]; ok {
		return status, nil
	}

	return "", errors.New("invalid cart status")
}

func (s CartStatus) CanTransition(to CartStatus) bool {
	for _, allowed := range cartTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

type LineStatus string

// remember to add new statuses to the lineTransitions map
const (
	LineStatusActive    LineStatus = "active"
	LineStatusRemoved   LineStatus = "removed"
	LineStatusPurchased LineStatus = "purchased"
)

var lineTransitions = map[LineStatus][]LineStatus{
	LineStatusActive:    {LineStatusRemoved, LineStatusPurchased},
	LineStatusRemoved:   {LineStatusActive},
	LineStatusPurchased: {},
}

func ToLineStatus(s string) (LineStatus, error) {
	status := LineStatus(s)
	if _, ok := lineTransitions[status]; ok {
		return status, nil
	}

	return "", errors.New("invalid cart line status")
}

func (s LineStatus) CanTransition(to LineStatus) bool {
	for _, allowed := range lineTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Cart is a fully-materialized aggregate: the cart row plus its lines,
// each line carrying the referenced product.
type Cart struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	Status  CartStatus
	Lines   []CartLine

	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartLine struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Status    LineStatus
	Product   Product

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActiveLines filters the aggregate down to the lines a purchase would cover.
func (c Cart) ActiveLines() []CartLine {
	var lines []CartLine
	for _, line := range c.Lines {
		if line.Status == LineStatusActive {
			lines = append(lines, line)
		}
	}
	return lines
}

func (c *Cart) Purchase() error {
	if !c.Status.CanTransition(CartStatusPurchased) {
		return fmt.Errorf("cart %s: transition %s -> %s not allowed", c.ID, c.Status, CartStatusPurchased)
	}

	c.Status = CartStatusPurchased
	return nil
}

// Subtotal is the line's contribution to the order total at purchase time.
func (l CartLine) Subtotal() Money {
	return l.Product.Price.Mul(l.Quantity)
}
