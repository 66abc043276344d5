package http

import (
	"encoding/json"

	"github.com/nikolayk812/cafe-cart/internal/domain"
)

type CartItemResponse struct {
	ID        int64       `json:"id"`
	ProductID int64       `json:"productId"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Quantity  int         `json:"quantity"`
}

type CartResponse struct {
	ID            int64              `json:"id"`
	UserID        int64              `json:"userId"`
	Status        string             `json:"status"`
	TotalQuantity int                `json:"totalQuantity"`
	TotalAmount   json.Number        `json:"totalAmount"`
	Items         []CartItemResponse `json:"items"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func toCartItemResponse(v domain.CartItemView) CartItemResponse {
	return CartItemResponse{
		ID:        v.ID,
		ProductID: v.ProductID,
		Name:      v.Name,
		Price:     amount(v.Price),
		Quantity:  v.Quantity,
	}
}

func toCartItemResponses(views []domain.CartItemView) []CartItemResponse {
	out := make([]CartItemResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toCartItemResponse(v))
	}
	return out
}

func toCartResponse(cart domain.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, toCartItemResponse(item.View()))
	}

	return CartResponse{
		ID:            cart.ID,
		UserID:        cart.UserID,
		Status:        string(cart.Status),
		TotalQuantity: cart.TotalQuantity,
		TotalAmount:   amount(cart.TotalAmount),
		Items:         items,
	}
}

// amount renders money as a bare JSON number.
func amount(m domain.Money) json.Number {
	return json.Number(m.Amount.String())
}
