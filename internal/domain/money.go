package domain

import (
	"errors"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var ErrCurrencyMismatch = errors.New("currency mismatch")

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

// Mul returns the price of qty units.
func (m Money) Mul(qty int) Money {
	return Money{
		Amount:   m.Amount.Mul(decimal.NewFromInt(int64(qty))),
		Currency: m.Currency,
	}
}

// Add fails on currency mismatch, totals across mixed currencies are meaningless.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency.String() != other.Currency.String() {
		return Money{}, ErrCurrencyMismatch
	}

	return Money{
		Amount:   m.Amount.Add(other.Amount),
		Currency: m.Currency,
	}, nil
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}
