package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/marketgo/internal/domain"
	"github.com/shopspring/decimal"
)

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
	}
}

type productResponse struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     uuid.UUID       `json:"userId"`
	CategoryID  uuid.UUID       `json:"categoryId"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Quantity    int             `json:"quantity"`
	Status      string          `json:"status"`
	Images      []string        `json:"images,omitempty"`
}

func toProductResponse(p domain.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		CategoryID:  p.CategoryID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price.Amount,
		Currency:    p.Price.Currency.String(),
		Quantity:    p.Quantity,
		Status:      string(p.Status),
	}

	for _, img := range p.Images {
		url := img.URL
		if url == "" {
			url = img.Path
		}
		resp.Images = append(resp.Images, url)
	}

	return resp
}

func toProductResponses(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

type categoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func toCategoryResponses(categories []domain.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name})
	}
	return out
}

type lineResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
}

type orderResponse struct {
	ID         uuid.UUID       `json:"id"`
	CartID     uuid.UUID       `json:"cartId"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Currency   string          `json:"currency"`
	CreatedAt  time.Time       `json:"createdAt"`
	Lines      []lineResponse  `json:"products,omitempty"`
}

func toOrderResponse(o domain.Order) orderResponse {
	resp := orderResponse{
		ID:         o.ID,
		CartID:     o.CartID,
		TotalPrice: o.Total.Amount,
		Currency:   o.Total.Currency.String(),
		CreatedAt:  o.CreatedAt,
	}

	for _, line := range o.Lines {
		resp.Lines = append(resp.Lines, lineResponse{
			ID:        line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Status:    string(line.Status),
		})
	}

	return resp
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}
