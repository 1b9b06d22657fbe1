package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nikolayk812/marketgo/internal/apperr"
)

type addProductRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// addProductToCart handles POST /api/v1/carts/add-product
func (h *Handler) addProductToCart(w http.ResponseWriter, r *http.Request) {
	user, ok := h.session(w, r)
	if !ok {
		return
	}

	var req addProductRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	if req.ProductID == uuid.Nil {
		h.respondError(w, apperr.New(apperr.KindValidation, "productId is required"))
		return
	}

	if err := h.carts.AddProduct(r.Context(), user, req.ProductID, req.Quantity); err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"status": "success"})
}

type updateCartRequest struct {
	ProductID uuid.UUID `json:"productId"`
	NewQty    int       `json:"newQty"`
}

// updateCart handles PATCH /api/v1/carts/update-cart
func (h *Handler) updateCart(w http.ResponseWriter, r *http.Request) {
	user, ok := h.session(w, r)
	if !ok {
		return
	}

	var req updateCartRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	if req.ProductID == uuid.Nil {
		h.respondError(w, apperr.New(apperr.KindValidation, "productId is required"))
		return
	}

	if err := h.carts.UpdateQuantity(r.Context(), user, req.ProductID, req.NewQty); err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// deleteProductFromCart handles DELETE /api/v1/carts/{productId}
func (h *Handler) deleteProductFromCart(w http.ResponseWriter, r *http.Request) {
	user, ok := h.session(w, r)
	if !ok {
		return
	}

	productID, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		h.respondError(w, apperr.New(apperr.KindValidation, "productId must be a valid id"))
		return
	}

	if err := h.carts.RemoveProduct(r.Context(), user, productID); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// purchaseCart handles POST /api/v1/carts/purchase
func (h *Handler) purchaseCart(w http.ResponseWriter, r *http.Request) {
	user, ok := h.session(w, r)
	if !ok {
		return
	}

	order, err := h.carts.Purchase(r.Context(), user)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"order":  toOrderResponse(order),
	})
}
