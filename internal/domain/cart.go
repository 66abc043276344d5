package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// MaxQuantity bounds a line quantity and the cart total quantity; both are
// stored as 32-bit integers.
const MaxQuantity = math.MaxInt32

type CartStatus string

const (
	CartStatusOpen      CartStatus = "OPEN"
	CartStatusOrdered   CartStatus = "ORDERED"
	CartStatusAbandoned CartStatus = "ABANDONED"
)

func ParseCartStatus(s string) (CartStatus, error) {
	switch status := CartStatus(s); status {
	case CartStatusOpen, CartStatusOrdered, CartStatusAbandoned:
		return status, nil
	default:
		return "", fmt.Errorf("cart status[%s] is not valid", s)
	}
}

// Cart is the sole owner of its Items. TotalQuantity and TotalAmount are
// derived from Items and must only be changed through Recalculate.
type Cart struct {
	ID     int64
	UserID int64
	Status CartStatus

	TotalQuantity int
	TotalAmount   Money

	Items []CartItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartItem struct {
	ID int64
	// CartID refers back to the owning cart, it does not own anything.
	CartID int64

	ProductID   int64
	ProductName string
	UnitPrice   Money
	Quantity    int
	Options     json.RawMessage

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductSnapshot is the catalog view of a product at lookup time.
type ProductSnapshot struct {
	ID    int64
	Name  string
	Price Money
}

type CartItemView struct {
	ID        int64
	ProductID int64
	Name      string
	Price     Money
	Quantity  int
}

func (c *Cart) IsOpen() bool {
	return c.Status == CartStatusOpen
}

func (c *Cart) Recalculate() {
	qty := 0
	amount := ZeroMoney()

	for _, item := range c.Items {
		qty += item.Quantity
		amount = amount.Add(item.UnitPrice.Mul(item.Quantity))
	}

	c.TotalQuantity = qty
	c.TotalAmount = amount
}

func (c *Cart) ItemByID(itemID int64) (*CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

func (c *Cart) ItemByProduct(productID int64) (*CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

func (c *Cart) AddItem(item CartItem) {
	item.CartID = c.ID
	c.Items = append(c.Items, item)
	c.Recalculate()
}

func (c *Cart) RemoveItem(itemID int64) bool {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Recalculate()
			return true
		}
	}
	return false
}

func (c *Cart) ClearItems() {
	c.Items = nil
	c.Recalculate()
}

func (i CartItem) View() CartItemView {
	return CartItemView{
		ID:        i.ID,
		ProductID: i.ProductID,
		Name:      i.ProductName,
		Price:     i.UnitPrice,
		Quantity:  i.Quantity,
	}
}
