package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/marketgo/internal/apperr"
	"github.com/nikolayk812/marketgo/internal/domain"
	"github.com/nikolayk812/marketgo/internal/port"
	"github.com/sirupsen/logrus"
)

// CartService maintains the set of products a user intends to purchase and
// converts an active cart into a priced, immutable order.
type CartService struct {
	carts    port.CartRepository
	products port.ProductRepository
	tx       port.Transactor
	notifier port.Notifier
	log      logrus.FieldLogger
}

func NewCart(
	carts port.CartRepository,
	products port.ProductRepository,
	tx port.Transactor,
	notifier port.Notifier,
	log logrus.FieldLogger,
) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		tx:       tx,
		notifier: notifier,
		log:      log,
	}
}

// AddProduct puts quantity units of a product into the user's active cart,
// creating the cart lazily. A previously removed line for the same product
// is reactivated in place so there is never more than one line per
// (cart, product) pair. Stock is checked but not reserved.
func (s *CartService) AddProduct(ctx context.Context, user domain.SessionUser, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return apperr.New(apperr.KindValidation, "quantity must be a positive integer")
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("products.GetProduct: %w", err)
	}

	if !product.HasStock(quantity) {
		return apperr.Newf(apperr.KindInsufficientStock,
			"this product only has %d items available", product.Quantity)
	}

	cart, err := s.carts.GetActiveCart(ctx, user.ID)
	if err != nil {
		if !apperr.IsKind(err, apperr.KindNotFound) {
			return fmt.Errorf("carts.GetActiveCart: %w", err)
		}

		cartID, err := s.carts.InsertCart(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("carts.InsertCart: %w", err)
		}
		cart = domain.Cart{ID: cartID, OwnerID: user.ID, Status: domain.CartStatusActive}
	}

	line, err := s.carts.GetLine(ctx, cart.ID, productID)
	if err != nil {
		if !apperr.IsKind(err, apperr.KindNotFound) {
			return fmt.Errorf("carts.GetLine: %w", err)
		}

		newLine := domain.CartLine{CartID: cart.ID, ProductID: productID, Quantity: quantity}
		if _, err := s.carts.InsertLine(ctx, newLine); err != nil {
			return fmt.Errorf("carts.InsertLine: %w", err)
		}
		return nil
	}

	switch line.Status {
	case domain.LineStatusActive:
		return apperr.New(apperr.KindConflict, "product is already in the cart")
	case domain.LineStatusRemoved:
		if !line.Status.CanTransition(domain.LineStatusActive) {
			return apperr.Newf(apperr.KindInternal, "line %s: cannot reactivate from %s", line.ID, line.Status)
		}
		if err := s.carts.UpdateLine(ctx, line.ID, quantity, domain.LineStatusActive); err != nil {
			return fmt.Errorf("carts.UpdateLine: %w", err)
		}
		return nil
	default:
		return apperr.Newf(apperr.KindInternal, "line %s in unexpected status %s", line.ID, line.Status)
	}
}

// UpdateQuantity changes an active line's quantity. A new quantity of zero
// or less soft-removes the line, keeping the row for later reactivation.
func (s *CartService) UpdateQuantity(ctx context.Context, user domain.SessionUser, productID uuid.UUID, newQty int) error {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("products.GetProduct: %w", err)
	}

	if newQty > product.Quantity {
		return apperr.Newf(apperr.KindInsufficientStock,
			"this product only has %d items available", product.Quantity)
	}

	cart, err := s.carts.GetActiveCart(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("carts.GetActiveCart: %w", err)
	}

	line, err := s.activeLine(ctx, cart.ID, productID)
	if err != nil {
		return err
	}

	if newQty <= 0 {
		if err := s.carts.UpdateLine(ctx, line.ID, 0, domain.LineStatusRemoved); err != nil {
			return fmt.Errorf("carts.UpdateLine: %w", err)
		}
		return nil
	}

	if err := s.carts.UpdateLine(ctx, line.ID, newQty, domain.LineStatusActive); err != nil {
		return fmt.Errorf("carts.UpdateLine: %w", err)
	}

	return nil
}

// RemoveProduct soft-removes an active line. A second call fails with
// not found, the line is no longer active.
func (s *CartService) RemoveProduct(ctx context.Context, user domain.SessionUser, productID uuid.UUID) error {
	cart, err := s.carts.GetActiveCart(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("carts.GetActiveCart: %w", err)
	}

	line, err := s.activeLine(ctx, cart.ID, productID)
	if err != nil {
		return err
	}

	if err := s.carts.UpdateLine(ctx, line.ID, 0, domain.LineStatusRemoved); err != nil {
		return fmt.Errorf("carts.UpdateLine: %w", err)
	}

	return nil
}

// activeLine loads the line for (cartID, productID) and requires it to be
// active, a removed or missing line reads the same to the caller.
func (s *CartService) activeLine(ctx context.Context, cartID, productID uuid.UUID) (domain.CartLine, error) {
	line, err := s.carts.GetLine(ctx, cartID, productID)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("carts.GetLine: %w", err)
	}

	if line.Status != domain.LineStatusActive {
		return domain.CartLine{}, apperr.New(apperr.KindNotFound, "product is not in the cart")
	}

	return line, nil
}

// Purchase converts the user's active cart into an order: every active
// line's stock decrement, the line and cart transitions and the order row
// commit in one transaction or not at all. The per-line decrements are
// independent conditional updates joined into an aggregated result, so a
// concurrent sale of the last unit fails that line cleanly instead of
// driving stock negative. The purchase summary is emailed after commit,
// best-effort.
func (s *CartService) Purchase(ctx context.Context, user domain.SessionUser) (domain.Order, error) {
	var (
		order   domain.Order
		summary domain.PurchaseSummary
	)

	err := s.tx.WithinTx(ctx, func(r port.TxRepos) error {
		cart, err := r.Carts.GetActiveCart(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("carts.GetActiveCart: %w", err)
		}

		lines := cart.ActiveLines()
		if len(lines) == 0 {
			return apperr.New(apperr.KindValidation, "cart is empty")
		}

		var (
			total      domain.Money
			decrements []domain.StockDecrement
			lineIDs    []uuid.UUID
		)

		for i, line := range lines {
			subtotal := line.Subtotal()

			if i == 0 {
				total = subtotal
			} else {
				if total, err = total.Add(subtotal); err != nil {
					return apperr.Wrap(apperr.KindInternal, "accumulating order total", err)
				}
			}

			summary.Items = append(summary.Items, domain.PurchaseItem{
				ProductName: line.Product.Title,
				UnitPrice:   line.Product.Price,
				Quantity:    line.Quantity,
				Subtotal:    subtotal,
			})

			decrements = append(decrements, domain.StockDecrement{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
			})
			lineIDs = append(lineIDs, line.ID)
		}

		if err := r.Products.DecrementStock(ctx, decrements); err != nil {
			return fmt.Errorf("products.DecrementStock: %w", err)
		}

		if err := r.Carts.MarkLinesPurchased(ctx, lineIDs); err != nil {
			return fmt.Errorf("carts.MarkLinesPurchased: %w", err)
		}

		if err := cart.Purchase(); err != nil {
			return apperr.Wrap(apperr.KindInternal, "cart transition", err)
		}

		if err := r.Carts.MarkCartPurchased(ctx, cart.ID); err != nil {
			return fmt.Errorf("carts.MarkCartPurchased: %w", err)
		}

		orderID, err := r.Orders.InsertOrder(ctx, domain.Order{
			OwnerID: user.ID,
			CartID:  cart.ID,
			Total:   total,
		})
		if err != nil {
			return fmt.Errorf("orders.InsertOrder: %w", err)
		}

		order = domain.Order{
			ID:      orderID,
			OwnerID: user.ID,
			CartID:  cart.ID,
			Total:   total,
			Lines:   purchasedLines(lines),
		}
		summary.Total = total

		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	// the order has committed, a notification failure must not undo it
	if err := s.notifier.SendPurchase(ctx, user.Email, user.Username, summary); err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("purchase notification failed")
	}

	return order, nil
}

func purchasedLines(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, len(lines))
	for i, line := range lines {
		line.Status = domain.LineStatusPurchased
		out[i] = line
	}
	return out
}
