package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/marketgo/internal/domain"
)

type ProductRepository interface {
	// GetProduct returns an active product with its images.
	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)

	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListProductsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Product, error)

	InsertProduct(ctx context.Context, product domain.Product) (uuid.UUID, error)
	UpdateProduct(ctx context.Context, product domain.Product) error
	SoftDeleteProduct(ctx context.Context, productID uuid.UUID) error

	AddImages(ctx context.Context, productID uuid.UUID, paths []string) error

	// DecrementStock applies all decrements as independent conditional
	// updates, joined into a single result: any product without enough
	// stock fails the whole batch.
	DecrementStock(ctx context.Context, decrements []domain.StockDecrement) error
}

type CategoryRepository interface {
	GetCategory(ctx context.Context, categoryID uuid.UUID) (domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	InsertCategory(ctx context.Context, name string) (domain.Category, error)
	UpdateCategory(ctx context.Context, categoryID uuid.UUID, name string) error
}
