package port

import (
	"context"

	"github.com/nikolayk812/cafe-cart/internal/domain"
)

type CartRepository interface {
	// Transact runs fn against a repository bound to a single transaction.
	// The transaction is committed when fn returns nil and rolled back otherwise.
	Transact(ctx context.Context, fn func(repo CartRepository) error) error

	// GetOrCreateOpenCart never yields two OPEN carts for the same user.
	GetOrCreateOpenCart(ctx context.Context, userID int64) (domain.Cart, error)
	// LockOpenCart is GetOrCreateOpenCart plus a lock held until the
	// surrounding transaction ends.
	LockOpenCart(ctx context.Context, userID int64) (domain.Cart, error)

	AddItem(ctx context.Context, item domain.CartItem) (domain.CartItem, error)
	UpdateItemQuantity(ctx context.Context, cartID, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, cartID, itemID int64) (bool, error)
	DeleteItems(ctx context.Context, cartID int64) error
	UpdateTotals(ctx context.Context, cart domain.Cart) error
}

type ProductLookup interface {
	GetSnapshot(ctx context.Context, productID int64) (domain.ProductSnapshot, error)
}
