package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/marketgo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/text/currency"
)

func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithInitScripts("../../migrations.sql"),
		postgres.WithDatabase("marketgo"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, "", fmt.Errorf("container.ConnectionString: %w", err)
	}

	return container, connStr, nil
}

// insertUser writes a user row directly, repositories under test assume
// owner rows exist because of foreign keys.
func insertUser(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := pool.QueryRow(t.Context(),
		`INSERT INTO users (username, email, password_hash)
		 VALUES ($1, $2, $3) RETURNING id`,
		gofakeit.Username(), gofakeit.Email(), gofakeit.Password(true, true, true, false, false, 32)).
		Scan(&id)
	if err != nil {
		t.Fatalf("insertUser: %v", err)
	}

	return id
}

func insertCategory(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := pool.QueryRow(t.Context(),
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`,
		gofakeit.ProductCategory()).
		Scan(&id)
	if err != nil {
		t.Fatalf("insertCategory: %v", err)
	}

	return id
}

func fakeMoney() domain.Money {
	return domain.Money{
		Amount:   decimal.NewFromFloat(gofakeit.Price(1, 100)),
		Currency: currency.USD,
	}
}

func fakeProduct(ownerID, categoryID uuid.UUID) domain.Product {
	return domain.Product{
		OwnerID:     ownerID,
		CategoryID:  categoryID,
		Title:       gofakeit.ProductName(),
		Description: gofakeit.ProductDescription(),
		Price:       fakeMoney(),
		Quantity:    gofakeit.Number(1, 100),
		Status:      domain.ProductStatusActive,
	}
}

// currencyComparer makes currency.Unit comparable for cmp.Diff.
var currencyComparer = cmp.Comparer(func(x, y currency.Unit) bool {
	return x.String() == y.String()
})

func assertProduct(t *testing.T, expected, actual domain.Product) {
	t.Helper()

	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.Product{}, "ID", "CreatedAt", "UpdatedAt"),
		cmpopts.EquateEmpty(),
	}

	diff := cmp.Diff(expected, actual, currencyComparer, opts)
	assert.Empty(t, diff)
}

func assertCart(t *testing.T, expected, actual domain.Cart) {
	t.Helper()

	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.Cart{}, "ID", "CreatedAt", "UpdatedAt"),
		cmpopts.IgnoreFields(domain.CartLine{}, "ID", "CartID", "CreatedAt", "UpdatedAt"),
		cmpopts.IgnoreFields(domain.Product{}, "ID", "CreatedAt", "UpdatedAt"),
		cmpopts.EquateEmpty(),
	}

	diff := cmp.Diff(expected, actual, currencyComparer, opts)
	assert.Empty(t, diff)
}
