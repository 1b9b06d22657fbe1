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
)

var (
	ErrCartNotFound = apperr.New(apperr.KindNotFound, "cart not found")
	ErrLineNotFound = apperr.New(apperr.KindNotFound, "product is not in the cart")
	ErrCartConflict = apperr.New(apperr.KindConflict, "active cart already exists")
	ErrLineConflict = apperr.New(apperr.KindConflict, "product is already in the cart")
)

type cartRepository struct {
	db DBTX
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{db: pool}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{db: tx}
}

const cartLinesQuery = `
	SELECT cl.id, cl.cart_id, cl.product_id, cl.quantity, cl.status, cl.created_at, cl.updated_at,
	       p.id, p.owner_id, p.category_id, p.title, p.description,
	       p.price_amount, p.price_currency, p.quantity, p.status, p.created_at, p.updated_at
	FROM cart_lines cl
	JOIN products p ON p.id = cl.product_id
	WHERE cl.cart_id = $1 AND cl.status = 'active'
	ORDER BY cl.created_at`

func (r *cartRepository) GetActiveCart(ctx context.Context, ownerID uuid.UUID) (domain.Cart, error) {
	var c domain.Cart

	cart, err := withTx(ctx, r.db, func(tx pgx.Tx) (domain.Cart, error) {
		row := tx.QueryRow(ctx,
			`SELECT id, owner_id, status, created_at, updated_at
			 FROM carts WHERE owner_id = $1 AND status = 'active'`, ownerID)

		cart, err := scanCart(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c, fmt.Errorf("scanCart: %w", ErrCartNotFound)
			}
			return c, fmt.Errorf("scanCart: %w", err)
		}

		rows, err := tx.Query(ctx, cartLinesQuery, cart.ID)
		if err != nil {
			return c, fmt.Errorf("tx.Query lines: %w", err)
		}

		cart.Lines, err = scanCartLines(rows)
		if err != nil {
			return c, fmt.Errorf("scanCartLines: %w", err)
		}

		return cart, nil
	})
	if err != nil {
		return c, err
	}

	return cart, nil
}

func (r *cartRepository) InsertCart(ctx context.Context, ownerID uuid.UUID) (uuid.UUID, error) {
	var cartID uuid.UUID

	err := r.db.QueryRow(ctx,
		`INSERT INTO carts (owner_id) VALUES ($1) RETURNING id`, ownerID).Scan(&cartID)
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, fmt.Errorf("InsertCart: %w", ErrCartConflict)
		}
		return uuid.Nil, fmt.Errorf("InsertCart: %w", err)
	}

	return cartID, nil
}

func (r *cartRepository) GetLine(ctx context.Context, cartID, productID uuid.UUID) (domain.CartLine, error) {
	var l domain.CartLine

	row := r.db.QueryRow(ctx,
		`SELECT id, cart_id, product_id, quantity, status, created_at, updated_at
		 FROM cart_lines WHERE cart_id = $1 AND product_id = $2`, cartID, productID)

	var status string
	err := row.Scan(&l.ID, &l.CartID, &l.ProductID, &l.Quantity, &status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return l, fmt.Errorf("GetLine: %w", ErrLineNotFound)
		}
		return l, fmt.Errorf("GetLine: %w", err)
	}

	l.Status, err = domain.ToLineStatus(status)
	if err != nil {
		return l, fmt.Errorf("domain.ToLineStatus[%s]: %w", status, err)
	}

	return l, nil
}

func (r *cartRepository) InsertLine(ctx context.Context, line domain.CartLine) (uuid.UUID, error) {
	var lineID uuid.UUID

	err := r.db.QueryRow(ctx,
		`INSERT INTO cart_lines (cart_id, product_id, quantity) VALUES ($1, $2, $3) RETURNING id`,
		line.CartID, line.ProductID, line.Quantity).Scan(&lineID)
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, fmt.Errorf("InsertLine: %w", ErrLineConflict)
		}
		return uuid.Nil, fmt.Errorf("InsertLine: %w", err)
	}

	return lineID, nil
}

func (r *cartRepository) UpdateLine(ctx context.Context, lineID uuid.UUID, quantity int, status domain.LineStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE cart_lines SET quantity = $2, status = $3, updated_at = now() WHERE id = $1`,
		lineID, quantity, string(status))
	if err != nil {
		return fmt.Errorf("UpdateLine: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("UpdateLine: %w", ErrLineNotFound)
	}

	return nil
}

// MarkLinesPurchased sends all line transitions as one batch of independent
// conditional updates and joins the results: if any line is no longer
// active the whole call fails.
func (r *cartRepository) MarkLinesPurchased(ctx context.Context, lineIDs []uuid.UUID) error {
	if len(lineIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, lineID := range lineIDs {
		batch.Queue(
			`UPDATE cart_lines SET status = 'purchased', updated_at = now()
			 WHERE id = $1 AND status = 'active'`, lineID)
	}

	results := r.db.SendBatch(ctx, batch)

	var errs []error
	for _, lineID := range lineIDs {
		cmdTag, err := results.Exec()
		if err != nil {
			errs = append(errs, fmt.Errorf("line[%s]: %w", lineID, err))
			continue
		}
		if cmdTag.RowsAffected() == 0 {
			errs = append(errs, fmt.Errorf("line[%s]: %w", lineID, ErrLineNotFound))
		}
	}

	if err := results.Close(); err != nil {
		errs = append(errs, fmt.Errorf("results.Close: %w", err))
	}

	return errors.Join(errs...)
}

func (r *cartRepository) MarkCartPurchased(ctx context.Context, cartID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE carts SET status = 'purchased', updated_at = now()
		 WHERE id = $1 AND status = 'active'`, cartID)
	if err != nil {
		return fmt.Errorf("MarkCartPurchased: %w", err)
	}

	// zero rows means the cart was already purchased or never existed
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("MarkCartPurchased: %w", ErrCartNotFound)
	}

	return nil
}

func scanCart(row pgx.Row) (domain.Cart, error) {
	var (
		c      domain.Cart
		status string
	)

	if err := row.Scan(&c.ID, &c.OwnerID, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return c, err
	}

	cartStatus, err := domain.ToCartStatus(status)
	if err != nil {
		return c, fmt.Errorf("domain.ToCartStatus[%s]: %w", status, err)
	}
	c.Status = cartStatus

	return c, nil
}

func scanCartLines(rows pgx.Rows) ([]domain.CartLine, error) {
	defer rows.Close()

	var lines []domain.CartLine

	for rows.Next() {
		line, err := scanCartLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scanCartLine: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return lines, nil
}

func scanCartLine(rows pgx.Rows) (domain.CartLine, error) {
	var (
		l             domain.CartLine
		lineStatus    string
		priceCurrency string
		productStatus string
	)

	err := rows.Scan(
		&l.ID, &l.CartID, &l.ProductID, &l.Quantity, &lineStatus, &l.CreatedAt, &l.UpdatedAt,
		&l.Product.ID, &l.Product.OwnerID, &l.Product.CategoryID, &l.Product.Title, &l.Product.Description,
		&l.Product.Price.Amount, &priceCurrency, &l.Product.Quantity, &productStatus,
		&l.Product.CreatedAt, &l.Product.UpdatedAt,
	)
	if err != nil {
		return l, err
	}

	if l.Status, err = domain.ToLineStatus(lineStatus); err != nil {
		return l, fmt.Errorf("domain.ToLineStatus[%s]: %w", lineStatus, err)
	}

	if l.Product.Status, err = domain.ToProductStatus(productStatus); err != nil {
		return l, fmt.Errorf("domain.ToProductStatus[%s]: %w", productStatus, err)
	}

	if l.Product.Price.Currency, err = parseCurrency(priceCurrency); err != nil {
		return l, err
	}

	return l, nil
}
