package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/marketgo/internal/apperr"
	"github.com/nikolayk812/marketgo/internal/domain"
	"github.com/nikolayk812/marketgo/internal/port"
	"golang.org/x/text/currency"
)

var (
	ErrProductNotFound   = apperr.New(apperr.KindNotFound, "product not found")
	ErrInsufficientStock = apperr.New(apperr.KindInsufficientStock, "not enough items available")
)

type productRepository struct {
	db DBTX
}

func NewProduct(pool *pgxpool.Pool) port.ProductRepository {
	return &productRepository{db: pool}
}

func NewProductWithTx(tx pgx.Tx) port.ProductRepository {
	return &productRepository{db: tx}
}

const productColumns = `id, owner_id, category_id, title, description,
	price_amount, price_currency, quantity, status, created_at, updated_at`

func (r *productRepository) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	var p domain.Product

	product, err := withTx(ctx, r.db, func(tx pgx.Tx) (domain.Product, error) {
		row := tx.QueryRow(ctx,
			`SELECT `+productColumns+` FROM products WHERE id = $1 AND status = 'active'`, productID)

		product, err := scanProduct(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return p, fmt.Errorf("scanProduct: %w", ErrProductNotFound)
			}
			return p, fmt.Errorf("scanProduct: %w", err)
		}

		rows, err := tx.Query(ctx,
			`SELECT id, product_id, path, created_at FROM product_images
			 WHERE product_id = $1 ORDER BY created_at`, productID)
		if err != nil {
			return p, fmt.Errorf("tx.Query images: %w", err)
		}

		product.Images, err = scanProductImages(rows)
		if err != nil {
			return p, fmt.Errorf("scanProductImages: %w", err)
		}

		return product, nil
	})
	if err != nil {
		return p, err
	}

	return product, nil
}

func (r *productRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE status = 'active' ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}

	return scanProducts(rows)
}

func (r *productRepository) ListProductsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}

	return scanProducts(rows)
}

func (r *productRepository) InsertProduct(ctx context.Context, product domain.Product) (uuid.UUID, error) {
	var productID uuid.UUID

	err := r.db.QueryRow(ctx,
		`INSERT INTO products (owner_id, category_id, title, description, price_amount, price_currency, quantity)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		product.OwnerID, product.CategoryID, product.Title, product.Description,
		product.Price.Amount, product.Price.Currency.String(), product.Quantity).Scan(&productID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("InsertProduct: %w", err)
	}

	return productID, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product domain.Product) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE products SET title = $2, description = $3, price_amount = $4, price_currency = $5,
		        quantity = $6, updated_at = now()
		 WHERE id = $1 AND status = 'active'`,
		product.ID, product.Title, product.Description,
		product.Price.Amount, product.Price.Currency.String(), product.Quantity)
	if err != nil {
		return fmt.Errorf("UpdateProduct: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("UpdateProduct: %w", ErrProductNotFound)
	}

	return nil
}

func (r *productRepository) SoftDeleteProduct(ctx context.Context, productID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE products SET status = 'deleted', updated_at = now()
		 WHERE id = $1 AND status = 'active'`, productID)
	if err != nil {
		return fmt.Errorf("SoftDeleteProduct: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("SoftDeleteProduct: %w", ErrProductNotFound)
	}

	return nil
}

func (r *productRepository) AddImages(ctx context.Context, productID uuid.UUID, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, path := range paths {
		batch.Queue(`INSERT INTO product_images (product_id, path) VALUES ($1, $2)`, productID, path)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("SendBatch: %w", err)
	}

	return nil
}

// DecrementStock queues one conditional update per product and joins the
// batch results. The "quantity >= n" guard makes each decrement atomic:
// a concurrent purchase of the last unit loses with ErrInsufficientStock
// instead of driving stock negative.
func (r *productRepository) DecrementStock(ctx context.Context, decrements []domain.StockDecrement) error {
	if len(decrements) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, dec := range decrements {
		batch.Queue(
			`UPDATE products SET quantity = quantity - $2, updated_at = now()
			 WHERE id = $1 AND status = 'active' AND quantity >= $2`,
			dec.ProductID, dec.Quantity)
	}

	results := r.db.SendBatch(ctx, batch)

	var errs []error
	for _, dec := range decrements {
		cmdTag, err := results.Exec()
		if err != nil {
			errs = append(errs, fmt.Errorf("product[%s]: %w", dec.ProductID, err))
			continue
		}
		if cmdTag.RowsAffected() == 0 {
			errs = append(errs, fmt.Errorf("product[%s]: %w", dec.ProductID, ErrInsufficientStock))
		}
	}

	if err := results.Close(); err != nil {
		errs = append(errs, fmt.Errorf("results.Close: %w", err))
	}

	return errors.Join(errs...)
}

func parseCurrency(s string) (currency.Unit, error) {
	unit, err := currency.ParseISO(s)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency[%s] is not valid: %w", s, err)
	}
	return unit, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p             domain.Product
		priceCurrency string
		status        string
	)

	err := row.Scan(
		&p.ID, &p.OwnerID, &p.CategoryID, &p.Title, &p.Description,
		&p.Price.Amount, &priceCurrency, &p.Quantity, &status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}

	if p.Status, err = domain.ToProductStatus(status); err != nil {
		return p, fmt.Errorf("domain.ToProductStatus[%s]: %w", status, err)
	}

	if p.Price.Currency, err = parseCurrency(priceCurrency); err != nil {
		return p, err
	}

	return p, nil
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()

	var products []domain.Product

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanProduct: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return products, nil
}

func scanProductImages(rows pgx.Rows) ([]domain.ProductImage, error) {
	defer rows.Close()

	var images []domain.ProductImage

	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.Path, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return images, nil
}
