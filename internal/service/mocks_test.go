package service_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/marketgo/internal/apperr"
	"github.com/nikolayk812/marketgo/internal/domain"
	"github.com/nikolayk812/marketgo/internal/port"
)

// In-memory doubles for the repository and outbound ports. They mirror the
// postgres implementations' observable behavior: the same uniqueness rules
// and the same error kinds on miss and conflict.

type mockProductRepo struct {
	store map[uuid.UUID]*domain.Product

	decrementErr error
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{store: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepo) GetProduct(_ context.Context, productID uuid.UUID) (domain.Product, error) {
	p, ok := m.store[productID]
	if !ok || p.Status != domain.ProductStatusActive {
		return domain.Product{}, apperr.New(apperr.KindNotFound, "product not found")
	}
	return *p, nil
}

func (m *mockProductRepo) ListProducts(_ context.Context) ([]domain.Product, error) {
	var products []domain.Product
	for _, p := range m.store {
		if p.Status == domain.ProductStatusActive {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (m *mockProductRepo) ListProductsByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Product, error) {
	var products []domain.Product
	for _, p := range m.store {
		if p.OwnerID == ownerID {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (m *mockProductRepo) InsertProduct(_ context.Context, product domain.Product) (uuid.UUID, error) {
	product.ID = uuid.New()
	m.store[product.ID] = &product
	return product.ID, nil
}

func (m *mockProductRepo) UpdateProduct(_ context.Context, product domain.Product) error {
	p, ok := m.store[product.ID]
	if !ok || p.Status != domain.ProductStatusActive {
		return apperr.New(apperr.KindNotFound, "product not found")
	}
	*p = product
	return nil
}

func (m *mockProductRepo) SoftDeleteProduct(_ context.Context, productID uuid.UUID) error {
	p, ok := m.store[productID]
	if !ok || p.Status != domain.ProductStatusActive {
		return apperr.New(apperr.KindNotFound, "product not found")
	}
	p.Status = domain.ProductStatusDeleted
	return nil
}

func (m *mockProductRepo) AddImages(_ context.Context, productID uuid.UUID, paths []string) error {
	p, ok := m.store[productID]
	if !ok {
		return apperr.New(apperr.KindNotFound, "product not found")
	}
	for _, path := range paths {
		p.Images = append(p.Images, domain.ProductImage{
			ID:        uuid.New(),
			ProductID: productID,
			Path:      path,
		})
	}
	return nil
}

func (m *mockProductRepo) DecrementStock(_ context.Context, decrements []domain.StockDecrement) error {
	if m.decrementErr != nil {
		return m.decrementErr
	}

	var errs []error
	for _, dec := range decrements {
		p, ok := m.store[dec.ProductID]
		if !ok || p.Status != domain.ProductStatusActive || p.Quantity < dec.Quantity {
			errs = append(errs, fmt.Errorf("product[%s]: %w", dec.ProductID,
				apperr.New(apperr.KindInsufficientStock, "not enough items available")))
			continue
		}
		p.Quantity -= dec.Quantity
	}
	return errors.Join(errs...)
}

type mockCartRepo struct {
	carts map[uuid.UUID]*domain.Cart
	lines map[uuid.UUID]*domain.CartLine

	products *mockProductRepo
}

func newMockCartRepo(products *mockProductRepo) *mockCartRepo {
	return &mockCartRepo{
		carts:    make(map[uuid.UUID]*domain.Cart),
		lines:    make(map[uuid.UUID]*domain.CartLine),
		products: products,
	}
}

func (m *mockCartRepo) GetActiveCart(_ context.Context, ownerID uuid.UUID) (domain.Cart, error) {
	for _, c := range m.carts {
		if c.OwnerID != ownerID || c.Status != domain.CartStatusActive {
			continue
		}

		cart := *c
		cart.Lines = nil
		for _, l := range m.lines {
			if l.CartID != cart.ID || l.Status != domain.LineStatusActive {
				continue
			}
			line := *l
			if p, ok := m.products.store[line.ProductID]; ok {
				line.Product = *p
			}
			cart.Lines = append(cart.Lines, line)
		}
		return cart, nil
	}
	return domain.Cart{}, apperr.New(apperr.KindNotFound, "cart not found")
}

func (m *mockCartRepo) InsertCart(_ context.Context, ownerID uuid.UUID) (uuid.UUID, error) {
	for _, c := range m.carts {
		if c.OwnerID == ownerID && c.Status == domain.CartStatusActive {
			return uuid.Nil, apperr.New(apperr.KindConflict, "active cart already exists")
		}
	}
	cart := &domain.Cart{ID: uuid.New(), OwnerID: ownerID, Status: domain.CartStatusActive}
	m.carts[cart.ID] = cart
	return cart.ID, nil
}

func (m *mockCartRepo) GetLine(_ context.Context, cartID, productID uuid.UUID) (domain.CartLine, error) {
	for _, l := range m.lines {
		if l.CartID == cartID && l.ProductID == productID {
			return *l, nil
		}
	}
	return domain.CartLine{}, apperr.New(apperr.KindNotFound, "product is not in the cart")
}

func (m *mockCartRepo) InsertLine(_ context.Context, line domain.CartLine) (uuid.UUID, error) {
	for _, l := range m.lines {
		if l.CartID == line.CartID && l.ProductID == line.ProductID {
			return uuid.Nil, apperr.New(apperr.KindConflict, "product is already in the cart")
		}
	}
	line.ID = uuid.New()
	line.Status = domain.LineStatusActive
	m.lines[line.ID] = &line
	return line.ID, nil
}

func (m *mockCartRepo) UpdateLine(_ context.Context, lineID uuid.UUID, quantity int, status domain.LineStatus) error {
	l, ok := m.lines[lineID]
	if !ok {
		return apperr.New(apperr.KindNotFound, "product is not in the cart")
	}
	l.Quantity = quantity
	l.Status = status
	return nil
}

func (m *mockCartRepo) MarkLinesPurchased(_ context.Context, lineIDs []uuid.UUID) error {
	var errs []error
	for _, lineID := range lineIDs {
		l, ok := m.lines[lineID]
		if !ok || l.Status != domain.LineStatusActive {
			errs = append(errs, fmt.Errorf("line[%s]: %w", lineID,
				apperr.New(apperr.KindNotFound, "product is not in the cart")))
			continue
		}
		l.Status = domain.LineStatusPurchased
	}
	return errors.Join(errs...)
}

func (m *mockCartRepo) MarkCartPurchased(_ context.Context, cartID uuid.UUID) error {
	c, ok := m.carts[cartID]
	if !ok || c.Status != domain.CartStatusActive {
		return apperr.New(apperr.KindNotFound, "cart not found")
	}
	c.Status = domain.CartStatusPurchased
	return nil
}

type mockOrderRepo struct {
	store map[uuid.UUID]*domain.Order
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{store: make(map[uuid.UUID]*domain.Order)}
}

func (m *mockOrderRepo) GetOrder(_ context.Context, orderID, ownerID uuid.UUID) (domain.Order, error) {
	o, ok := m.store[orderID]
	if !ok || o.OwnerID != ownerID {
		return domain.Order{}, apperr.New(apperr.KindNotFound, "order not found")
	}
	return *o, nil
}

func (m *mockOrderRepo) SearchOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	var orders []domain.Order
	for _, o := range m.store {
		for _, ownerID := range filter.OwnerIDs {
			if o.OwnerID == ownerID {
				orders = append(orders, *o)
			}
		}
	}
	return orders, nil
}

func (m *mockOrderRepo) InsertOrder(_ context.Context, order domain.Order) (uuid.UUID, error) {
	for _, o := range m.store {
		if o.CartID == order.CartID {
			return uuid.Nil, apperr.New(apperr.KindConflict, "cart is already ordered")
		}
	}
	order.ID = uuid.New()
	m.store[order.ID] = &order
	return order.ID, nil
}

// mockTransactor runs the unit of work against the shared in-memory repos.
// It does not simulate rollback, failure tests assert on errors only.
type mockTransactor struct {
	repos port.TxRepos
}

func (m *mockTransactor) WithinTx(_ context.Context, fn func(r port.TxRepos) error) error {
	return fn(m.repos)
}

type mockNotifier struct {
	welcomes  []string
	purchases []domain.PurchaseSummary

	err error
}

func (m *mockNotifier) SendWelcome(_ context.Context, email, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.welcomes = append(m.welcomes, email)
	return nil
}

func (m *mockNotifier) SendPurchase(_ context.Context, _, _ string, summary domain.PurchaseSummary) error {
	if m.err != nil {
		return m.err
	}
	m.purchases = append(m.purchases, summary)
	return nil
}

type mockUserRepo struct {
	store map[uuid.UUID]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{store: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserRepo) GetUser(_ context.Context, userID uuid.UUID) (domain.User, error) {
	u, ok := m.store[userID]
	if !ok || u.Status != domain.UserStatusActive {
		return domain.User{}, apperr.New(apperr.KindNotFound, "user not found")
	}
	return *u, nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range m.store {
		if u.Email == email && u.Status == domain.UserStatusActive {
			return *u, nil
		}
	}
	return domain.User{}, apperr.New(apperr.KindNotFound, "user not found")
}

func (m *mockUserRepo) InsertUser(_ context.Context, user domain.User) (uuid.UUID, error) {
	for _, u := range m.store {
		if u.Email == user.Email {
			return uuid.Nil, apperr.New(apperr.KindConflict, "email is already registered")
		}
	}
	user.ID = uuid.New()
	m.store[user.ID] = &user
	return user.ID, nil
}

func (m *mockUserRepo) UpdateUser(_ context.Context, userID uuid.UUID, username, email string) error {
	u, ok := m.store[userID]
	if !ok || u.Status != domain.UserStatusActive {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	u.Username = username
	u.Email = email
	return nil
}

func (m *mockUserRepo) SoftDeleteUser(_ context.Context, userID uuid.UUID) error {
	u, ok := m.store[userID]
	if !ok || u.Status != domain.UserStatusActive {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	u.Status = domain.UserStatusDeleted
	return nil
}

type mockTokens struct {
	issued map[string]uuid.UUID
}

func newMockTokens() *mockTokens {
	return &mockTokens{issued: make(map[string]uuid.UUID)}
}

func (m *mockTokens) Issue(userID uuid.UUID) (string, error) {
	token := "token-" + userID.String()
	m.issued[token] = userID
	return token, nil
}

func (m *mockTokens) Verify(token string) (uuid.UUID, error) {
	userID, ok := m.issued[token]
	if !ok {
		return uuid.Nil, apperr.New(apperr.KindUnauthenticated, "credentials invalid")
	}
	return userID, nil
}

type mockBlob struct {
	uploads map[string][]byte

	uploadErr error
}

func newMockBlob() *mockBlob {
	return &mockBlob{uploads: make(map[string][]byte)}
}

func (m *mockBlob) Upload(_ context.Context, path string, data []byte) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	m.uploads[path] = data
	return nil
}

func (m *mockBlob) URL(_ context.Context, path string) (string, error) {
	return "http://localhost:8080/images/" + path, nil
}
