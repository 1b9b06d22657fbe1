// Package handler is the HTTP boundary: routing, request decoding, session
// handling and the single place where typed errors map to status codes.
package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/nikolayk812/marketgo/internal/port"
	"github.com/nikolayk812/marketgo/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	users    *service.UserService
	products *service.ProductService
	carts    *service.CartService

	userRepo port.UserRepository
	tokens   port.TokenIssuer

	log logrus.FieldLogger
	dev bool
}

func New(
	users *service.UserService,
	products *service.ProductService,
	carts *service.CartService,
	userRepo port.UserRepository,
	tokens port.TokenIssuer,
	log logrus.FieldLogger,
	dev bool,
) *Handler {
	return &Handler{
		users:    users,
		products: products,
		carts:    carts,
		userRepo: userRepo,
		tokens:   tokens,
		log:      log,
		dev:      dev,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.Use(h.logRequests)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Users
	api.HandleFunc("/users", h.signUp).Methods(http.MethodPost)
	api.HandleFunc("/users/login", h.login).Methods(http.MethodPost)

	users := api.PathPrefix("/users").Subrouter()
	users.Use(h.protectSession)
	users.HandleFunc("/me", h.myProducts).Methods(http.MethodGet)
	users.HandleFunc("/orders", h.listOrders).Methods(http.MethodGet)
	users.HandleFunc("/orders/{id}", h.getOrder).Methods(http.MethodGet)
	users.HandleFunc("/{id}", h.updateUser).Methods(http.MethodPatch)
	users.HandleFunc("/{id}", h.deleteUser).Methods(http.MethodDelete)

	// Products, list/detail/categories are public
	api.HandleFunc("/products/categories", h.listCategories).Methods(http.MethodGet)
	api.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.getProduct).Methods(http.MethodGet)

	products := api.PathPrefix("/products").Subrouter()
	products.Use(h.protectSession)
	products.HandleFunc("", h.createProduct).Methods(http.MethodPost)
	products.HandleFunc("/categories", h.createCategory).Methods(http.MethodPost)
	products.HandleFunc("/categories/{id}", h.updateCategory).Methods(http.MethodPatch)
	products.HandleFunc("/{id}", h.updateProduct).Methods(http.MethodPatch)
	products.HandleFunc("/{id}", h.deleteProduct).Methods(http.MethodDelete)

	// Carts
	carts := api.PathPrefix("/carts").Subrouter()
	carts.Use(h.protectSession)
	carts.HandleFunc("/add-product", h.addProductToCart).Methods(http.MethodPost)
	carts.HandleFunc("/update-cart", h.updateCart).Methods(http.MethodPatch)
	carts.HandleFunc("/purchase", h.purchaseCart).Methods(http.MethodPost)
	carts.HandleFunc("/{productId}", h.deleteProductFromCart).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(h.notFound)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusNotFound, map[string]string{
		"status":  "error",
		"message": r.Method + " " + r.URL.Path + " not found in this server",
	})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Debug("request")
		next.ServeHTTP(w, r)
	})
}
