package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nikolayk812/marketgo/internal/apperr"
	"github.com/nikolayk812/marketgo/internal/service"
)

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// signUp handles POST /api/v1/users
func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	user, err := h.users.SignUp(r.Context(), service.SignUpInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"status":  "success",
		"newUser": toUserResponse(user),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login handles POST /api/v1/users/login
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"token":  token,
	})
}

// myProducts handles GET /api/v1/users/me
func (h *Handler) myProducts(w http.ResponseWriter, r *http.Request) {
	user, ok := h.session(w, r)
	if !ok {
		return
	}

	products, err := h.products.ListByOwner(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"products": toProductResponses(products),
	})
}

// listOrders handles GET /api/v1/users/orders
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := h.session(w, r)
	if !ok {
		return
	}

	orders, err := h.users.Orders(r.Context(), user)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"orders": toOrderResponses(orders),
	})
}

// getOrder handles GET /api/v1/users/orders/{id}
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := h.session(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, apperr.New(apperr.KindValidation, "order id must be a valid id"))
		return
	}

	order, err := h.users.Order(r.Context(), user, orderID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"order":  toOrderResponse(order),
	})
}

type updateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// updateUser handles PATCH /api/v1/users/{id}
func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.session(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, apperr.New(apperr.KindValidation, "user id must be a valid id"))
		return
	}

	var req updateUserRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.users.Update(r.Context(), user, userID, req.Username, req.Email); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deleteUser handles DELETE /api/v1/users/{id}
func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.session(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, apperr.New(apperr.KindValidation, "user id must be a valid id"))
		return
	}

	if err := h.users.Delete(r.Context(), user, userID); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
