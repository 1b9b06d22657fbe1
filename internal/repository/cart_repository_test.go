package repository_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/marketgo/internal/domain"
	"github.com/nikolayk812/marketgo/internal/port"
	"github.com/nikolayk812/marketgo/internal/repository"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"go.uber.org/goleak"
)

type cartRepositorySuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	repo      port.CartRepository
	products  port.ProductRepository
	container testcontainers.Container
}

// entry point to run the tests in the suite
func TestCartRepositorySuite(t *testing.T) {
	// Verifies no leaks after all tests in the suite run.
	defer goleak.VerifyNone(t)

	suite.Run(t, new(cartRepositorySuite))
}

// before all tests in the suite
func (suite *cartRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.NoError(err)

	suite.repo = repository.NewCart(suite.pool)
	suite.products = repository.NewProduct(suite.pool)
}

// after all tests in the suite
func (suite *cartRepositorySuite) TearDownSuite() {
	ctx := suite.T().Context()

	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func (suite *cartRepositorySuite) insertProduct() domain.Product {
	t := suite.T()
	t.Helper()

	ownerID := insertUser(t, suite.pool)
	categoryID := insertCategory(t, suite.pool)

	product := fakeProduct(ownerID, categoryID)

	id, err := suite.products.InsertProduct(t.Context(), product)
	require.NoError(t, err)
	product.ID = id

	return product
}

func (suite *cartRepositorySuite) TestInsertCart() {
	t := suite.T()
	ctx := t.Context()

	ownerID := insertUser(t, suite.pool)

	cartID, err := suite.repo.InsertCart(ctx, ownerID)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, cartID)

	// a second active cart for the same owner is rejected
	_, err = suite.repo.InsertCart(ctx, ownerID)
	require.ErrorIs(t, err, repository.ErrCartConflict)

	actual, err := suite.repo.GetActiveCart(ctx, ownerID)
	require.NoError(t, err)

	assertCart(t, domain.Cart{
		OwnerID: ownerID,
		Status:  domain.CartStatusActive,
	}, actual)
}

func (suite *cartRepositorySuite) TestGetActiveCart() {
	t := suite.T()
	ctx := t.Context()

	ownerID := insertUser(t, suite.pool)
	product := suite.insertProduct()

	_, err := suite.repo.GetActiveCart(ctx, ownerID)
	require.ErrorIs(t, err, repository.ErrCartNotFound)

	cartID, err := suite.repo.InsertCart(ctx, ownerID)
	require.NoError(t, err)

	lineID, err := suite.repo.InsertLine(ctx, domain.CartLine{
		CartID:    cartID,
		ProductID: product.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, lineID)

	actual, err := suite.repo.GetActiveCart(ctx, ownerID)
	require.NoError(t, err)

	assertCart(t, domain.Cart{
		OwnerID: ownerID,
		Status:  domain.CartStatusActive,
		Lines: []domain.CartLine{{
			ProductID: product.ID,
			Quantity:  2,
			Status:    domain.LineStatusActive,
			Product:   product,
		}},
	}, actual)
}

func (suite *cartRepositorySuite) TestLineLifecycle() {
	t := suite.T()
	ctx := t.Context()

	ownerID := insertUser(t, suite.pool)
	product := suite.insertProduct()

	cartID, err := suite.repo.InsertCart(ctx, ownerID)
	require.NoError(t, err)

	_, err = suite.repo.GetLine(ctx, cartID, product.ID)
	require.ErrorIs(t, err, repository.ErrLineNotFound)

	lineID, err := suite.repo.InsertLine(ctx, domain.CartLine{
		CartID:    cartID,
		ProductID: product.ID,
		Quantity:  1,
	})
	require.NoError(t, err)

	// one row per (cart, product)
	_, err = suite.repo.InsertLine(ctx, domain.CartLine{
		CartID:    cartID,
		ProductID: product.ID,
		Quantity:  1,
	})
	require.ErrorIs(t, err, repository.ErrLineConflict)

	err = suite.repo.UpdateLine(ctx, lineID, 3, domain.LineStatusActive)
	require.NoError(t, err)

	line, err := suite.repo.GetLine(ctx, cartID, product.ID)
	require.NoError(t, err)
	require.Equal(t, 3, line.Quantity)
	require.Equal(t, domain.LineStatusActive, line.Status)

	// removed lines stay fetchable via GetLine but drop out of the aggregate
	err = suite.repo.UpdateLine(ctx, lineID, 3, domain.LineStatusRemoved)
	require.NoError(t, err)

	line, err = suite.repo.GetLine(ctx, cartID, product.ID)
	require.NoError(t, err)
	require.Equal(t, domain.LineStatusRemoved, line.Status)

	cart, err := suite.repo.GetActiveCart(ctx, ownerID)
	require.NoError(t, err)
	require.Empty(t, cart.Lines)

	err = suite.repo.UpdateLine(ctx, uuid.New(), 1, domain.LineStatusActive)
	require.ErrorIs(t, err, repository.ErrLineNotFound)
}

func (suite *cartRepositorySuite) TestMarkLinesPurchased() {
	t := suite.T()
	ctx := t.Context()

	ownerID := insertUser(t, suite.pool)
	product1 := suite.insertProduct()
	product2 := suite.insertProduct()

	cartID, err := suite.repo.InsertCart(ctx, ownerID)
	require.NoError(t, err)

	line1, err := suite.repo.InsertLine(ctx, domain.CartLine{CartID: cartID, ProductID: product1.ID, Quantity: 1})
	require.NoError(t, err)
	line2, err := suite.repo.InsertLine(ctx, domain.CartLine{CartID: cartID, ProductID: product2.ID, Quantity: 2})
	require.NoError(t, err)

	err = suite.repo.MarkLinesPurchased(ctx, []uuid.UUID{line1, line2})
	require.NoError(t, err)

	// purchased lines cannot be purchased again
	err = suite.repo.MarkLinesPurchased(ctx, []uuid.UUID{line1})
	require.ErrorIs(t, err, repository.ErrLineNotFound)

	line, err := suite.repo.GetLine(ctx, cartID, product1.ID)
	require.NoError(t, err)
	require.Equal(t, domain.LineStatusPurchased, line.Status)
}

func (suite *cartRepositorySuite) TestMarkCartPurchased() {
	t := suite.T()
	ctx := t.Context()

	ownerID := insertUser(t, suite.pool)

	cartID, err := suite.repo.InsertCart(ctx, ownerID)
	require.NoError(t, err)

	err = suite.repo.MarkCartPurchased(ctx, cartID)
	require.NoError(t, err)

	// at most once
	err = suite.repo.MarkCartPurchased(ctx, cartID)
	require.ErrorIs(t, err, repository.ErrCartNotFound)

	_, err = suite.repo.GetActiveCart(ctx, ownerID)
	require.ErrorIs(t, err, repository.ErrCartNotFound)

	// the slot is free again, a new active cart may be opened
	_, err = suite.repo.InsertCart(ctx, ownerID)
	require.NoError(t, err)
}
