package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/marketgo/internal/apperr"
	"github.com/nikolayk812/marketgo/internal/domain"
	"github.com/nikolayk812/marketgo/internal/port"
	"github.com/samber/lo"
)

var (
	ErrOrderNotFound = apperr.New(apperr.KindNotFound, "order not found")
	ErrOrderConflict = apperr.New(apperr.KindConflict, "cart is already ordered")
)

type orderRepository struct {
	db DBTX
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{db: pool}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{db: tx}
}

const purchasedLinesQuery = `
	SELECT cl.id, cl.cart_id, cl.product_id, cl.quantity, cl.status, cl.created_at, cl.updated_at,
	       p.id, p.owner_id, p.category_id, p.title, p.description,
	       p.price_amount, p.price_currency, p.quantity, p.status, p.created_at, p.updated_at
	FROM cart_lines cl
	JOIN products p ON p.id = cl.product_id
	WHERE cl.cart_id = $1 AND cl.status = 'purchased'
	ORDER BY cl.created_at`

func (r *orderRepository) GetOrder(ctx context.Context, orderID, ownerID uuid.UUID) (domain.Order, error) {
	var o domain.Order

	order, err := withTx(ctx, r.db, func(tx pgx.Tx) (domain.Order, error) {
		row := tx.QueryRow(ctx,
			`SELECT id, owner_id, cart_id, total_amount, total_currency, created_at
			 FROM orders WHERE id = $1 AND owner_id = $2`, orderID, ownerID)

		order, err := scanOrder(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return o, fmt.Errorf("scanOrder: %w", ErrOrderNotFound)
			}
			return o, fmt.Errorf("scanOrder: %w", err)
		}

		rows, err := tx.Query(ctx, purchasedLinesQuery, order.CartID)
		if err != nil {
			return o, fmt.Errorf("tx.Query lines: %w", err)
		}

		order.Lines, err = scanCartLines(rows)
		if err != nil {
			return o, fmt.Errorf("scanCartLines: %w", err)
		}

		return order, nil
	})
	if err != nil {
		return o, err
	}

	return order, nil
}

func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error) {
	var orderID uuid.UUID

	err := r.db.QueryRow(ctx,
		`INSERT INTO orders (owner_id, cart_id, total_amount, total_currency)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		order.OwnerID, order.CartID, order.Total.Amount, order.Total.Currency.String()).Scan(&orderID)
	if err != nil {
		// one order per cart
		if isUniqueViolation(err) {
			return uuid.Nil, fmt.Errorf("InsertOrder: %w", ErrOrderConflict)
		}
		return uuid.Nil, fmt.Errorf("InsertOrder: %w", err)
	}

	return orderID, nil
}

func (r *orderRepository) SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	query, args := buildSearchOrdersQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	// Use a map to group orders and their lines
	orderMap := make(map[uuid.UUID]domain.Order)
	for rows.Next() {
		order, line, err := scanOrderJoinLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scanOrderJoinLine: %w", err)
		}

		if _, exists := orderMap[order.ID]; !exists {
			orderMap[order.ID] = order
		}

		grouped := orderMap[order.ID]
		grouped.Lines = append(grouped.Lines, line)
		orderMap[order.ID] = grouped
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return lo.Values(orderMap), nil
}

func buildSearchOrdersQuery(filter domain.OrderFilter) (string, []any) {
	var (
		where []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.IDs) > 0 {
		where = append(where, fmt.Sprintf("o.id = ANY(%s)", arg(filter.IDs)))
	}
	if len(filter.OwnerIDs) > 0 {
		where = append(where, fmt.Sprintf("o.owner_id = ANY(%s)", arg(filter.OwnerIDs)))
	}
	if filter.CreatedAt != nil {
		if filter.CreatedAt.After != nil {
			where = append(where, fmt.Sprintf("o.created_at >= %s", arg(*filter.CreatedAt.After)))
		}
		if filter.CreatedAt.Before != nil {
			where = append(where, fmt.Sprintf("o.created_at <= %s", arg(*filter.CreatedAt.Before)))
		}
	}

	query := `
		SELECT o.id, o.owner_id, o.cart_id, o.total_amount, o.total_currency, o.created_at,
		       cl.id, cl.cart_id, cl.product_id, cl.quantity, cl.status, cl.created_at, cl.updated_at
		FROM orders o
		JOIN cart_lines cl ON cl.cart_id = o.cart_id AND cl.status = 'purchased'
		WHERE ` + strings.Join(where, " AND ")

	return query, args
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o             domain.Order
		totalCurrency string
	)

	err := row.Scan(&o.ID, &o.OwnerID, &o.CartID, &o.Total.Amount, &totalCurrency, &o.CreatedAt)
	if err != nil {
		return o, err
	}

	if o.Total.Currency, err = parseCurrency(totalCurrency); err != nil {
		return o, err
	}

	return o, nil
}

func scanOrderJoinLine(rows pgx.Rows) (domain.Order, domain.CartLine, error) {
	var (
		o             domain.Order
		l             domain.CartLine
		totalCurrency string
		lineStatus    string
	)

	err := rows.Scan(
		&o.ID, &o.OwnerID, &o.CartID, &o.Total.Amount, &totalCurrency, &o.CreatedAt,
		&l.ID, &l.CartID, &l.ProductID, &l.Quantity, &lineStatus, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return o, l, err
	}

	if o.Total.Currency, err = parseCurrency(totalCurrency); err != nil {
		return o, l, err
	}

	if l.Status, err = domain.ToLineStatus(lineStatus); err != nil {
		return o, l, fmt.Errorf("domain.ToLineStatus[%s]: %w", lineStatus, err)
	}

	return o, l, nil
}
