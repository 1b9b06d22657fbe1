package domain

import (
	"time"

	"github.com/google/uuid"
)

type CategoryStatus string

const (
	CategoryStatusActive  CategoryStatus = "active"
	CategoryStatusDeleted CategoryStatus = "deleted"
)

type Category struct {
	ID     uuid.UUID
	Name   string
	Status CategoryStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}
