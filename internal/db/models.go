package db

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID            int64
	UserID        int64
	Status        string
	TotalQuantity int32
	TotalAmount   decimal.Decimal
	TotalCurrency string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CartItem struct {
	ID            int64
	CartID        int64
	ProductID     int64
	ProductName   string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Quantity      int32
	OptionsJson   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
