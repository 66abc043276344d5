package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DefaultCurrency is the only currency carts are priced in.
var DefaultCurrency = currency.KRW

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount int64) Money {
	return Money{
		Amount:   decimal.NewFromInt(amount),
		Currency: DefaultCurrency,
	}
}

func ZeroMoney() Money {
	return Money{Amount: decimal.Zero, Currency: DefaultCurrency}
}

func (m Money) Mul(quantity int) Money {
	return Money{
		Amount:   m.Amount.Mul(decimal.NewFromInt(int64(quantity))),
		Currency: m.Currency,
	}
}

// Add keeps the receiver's currency; mixed currencies are not supported.
func (m Money) Add(other Money) Money {
	return Money{
		Amount:   m.Amount.Add(other.Amount),
		Currency: m.Currency,
	}
}

func (m Money) Equal(other Money) bool {
	return m.Amount.Equal(other.Amount) && m.Currency.String() == other.Currency.String()
}
