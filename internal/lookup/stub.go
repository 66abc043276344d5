package lookup

import (
	"context"

	"github.com/nikolayk812/cafe-cart/internal/domain"
	"github.com/nikolayk812/cafe-cart/internal/port"
)

type stubProduct struct {
	name  string
	price int64
}

var (
	stubProducts = map[int64]stubProduct{
		1: {name: "Americano", price: 2000},
		2: {name: "Caramel Macchiato", price: 3000},
	}
	stubFallback = stubProduct{name: "Iced Tea", price: 2500}
)

type stub struct{}

// NewStub returns a lookup backed by a fixed product table. Unknown ids
// resolve to a fallback product, so it never fails.
func NewStub() port.ProductLookup {
	return stub{}
}

func (stub) GetSnapshot(_ context.Context, productID int64) (domain.ProductSnapshot, error) {
	p, ok := stubProducts[productID]
	if !ok {
		p = stubFallback
	}

	return domain.ProductSnapshot{
		ID:    productID,
		Name:  p.name,
		Price: domain.NewMoney(p.price),
	}, nil
}
