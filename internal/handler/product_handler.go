package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nikolayk812/marketgo/internal/apperr"
	"github.com/nikolayk812/marketgo/internal/domain"
	"github.com/nikolayk812/marketgo/internal/service"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const maxUploadBytes = 32 << 20

// listProducts handles GET /api/v1/products
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"products": toProductResponses(products),
	})
}

// getProduct handles GET /api/v1/products/{id}
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, apperr.New(apperr.KindValidation, "product id must be a valid id"))
		return
	}

	product, err := h.products.Get(r.Context(), productID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"product": toProductResponse(product),
	})
}

type createProductRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Quantity    int             `json:"quantity"`
	CategoryID  uuid.UUID       `json:"categoryId"`
}

// createProduct handles POST /api/v1/products. Multipart bodies carry the
// same fields as form values plus up to five "productImg" files.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	user, ok := h.session(w, r)
	if !ok {
		return
	}

	in, err := h.decodeCreateProduct(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	product, err := h.products.Create(r.Context(), user, in)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"status":     "success",
		"newProduct": toProductResponse(product),
	})
}

func (h *Handler) decodeCreateProduct(r *http.Request) (service.CreateProductInput, error) {
	var in service.CreateProductInput

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return h.decodeCreateProductForm(r)
	}

	var req createProductRequest
	if err := h.decodeJSON(r, &req); err != nil {
		return in, err
	}

	price, err := toMoney(req.Price, req.Currency)
	if err != nil {
		return in, err
	}

	return service.CreateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       price,
		Quantity:    req.Quantity,
		CategoryID:  req.CategoryID,
	}, nil
}

func (h *Handler) decodeCreateProductForm(r *http.Request) (service.CreateProductInput, error) {
	var in service.CreateProductInput

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return in, apperr.Wrap(apperr.KindValidation, "invalid multipart body", err)
	}

	amount, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil {
		return in, apperr.New(apperr.KindValidation, "price must be a decimal number")
	}

	price, err := toMoney(amount, r.FormValue("currency"))
	if err != nil {
		return in, err
	}

	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		return in, apperr.New(apperr.KindValidation, "quantity must be an integer")
	}

	categoryID, err := uuid.Parse(r.FormValue("categoryId"))
	if err != nil {
		return in, apperr.New(apperr.KindValidation, "categoryId must be a valid id")
	}

	in = service.CreateProductInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       price,
		Quantity:    quantity,
		CategoryID:  categoryID,
	}

	for _, header := range r.MultipartForm.File["productImg"] {
		file, err := header.Open()
		if err != nil {
			return in, apperr.Wrap(apperr.KindValidation, "reading uploaded file", err)
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return in, apperr.Wrap(apperr.KindValidation, "reading uploaded file", err)
		}

		in.Images = append(in.Images, service.ImageUpload{Name: header.Filename, Data: data})
	}

	return in, nil
}

func toMoney(amount decimal.Decimal, currencyCode string) (domain.Money, error) {
	if currencyCode == "" {
		currencyCode = "USD"
	}

	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return domain.Money{}, apperr.New(apperr.KindValidation, "currency must be a valid ISO code")
	}

	return domain.Money{Amount: amount, Currency: unit}, nil
}

type updateProductRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Quantity    int             `json:"quantity"`
}

// updateProduct handles PATCH /api/v1/products/{id}
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	user, ok := h.session(w, r)
	if !ok {
		return
	}

	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, apperr.New(apperr.KindValidation, "product id must be a valid id"))
		return
	}

	var req updateProductRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	price, err := toMoney(req.Price, req.Currency)
	if err != nil {
		h.respondError(w, err)
		return
	}

	in := service.UpdateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       price,
		Quantity:    req.Quantity,
	}

	if err := h.products.Update(r.Context(), user, productID, in); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deleteProduct handles DELETE /api/v1/products/{id}
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	user, ok := h.session(w, r)
	if !ok {
		return
	}

	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, apperr.New(apperr.KindValidation, "product id must be a valid id"))
		return
	}

	if err := h.products.Delete(r.Context(), user, productID); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listCategories handles GET /api/v1/products/categories
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.products.ListCategories(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"categories": toCategoryResponses(categories),
	})
}

type categoryRequest struct {
	Name string `json:"name"`
}

// createCategory handles POST /api/v1/products/categories
func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := h.session(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	category, err := h.products.CreateCategory(r.Context(), user, req.Name)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"status":      "success",
		"newCategory": categoryResponse{ID: category.ID, Name: category.Name},
	})
}

// updateCategory handles PATCH /api/v1/products/categories/{id}
func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := h.session(w, r)
	if !ok {
		return
	}

	categoryID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, apperr.New(apperr.KindValidation, "category id must be a valid id"))
		return
	}

	var req categoryRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.products.UpdateCategory(r.Context(), user, categoryID, req.Name); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
