package db

import (
	"context"

	"github.com/shopspring/decimal"
)

const createOpenCart = `
INSERT INTO carts (user_id, status, total_quantity, total_amount, total_currency)
VALUES ($1, 'OPEN', 0, 0, $2)
ON CONFLICT (user_id) WHERE status = 'OPEN' DO NOTHING
`

type CreateOpenCartParams struct {
	UserID        int64
	TotalCurrency string
}

func (q *Queries) CreateOpenCart(ctx context.Context, arg CreateOpenCartParams) (int64, error) {
	result, err := q.db.Exec(ctx, createOpenCart, arg.UserID, arg.TotalCurrency)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getOpenCart = `
SELECT id, user_id, status, total_quantity, total_amount, total_currency, created_at, updated_at
FROM carts
WHERE user_id = $1 AND status = 'OPEN'
`

func (q *Queries) GetOpenCart(ctx context.Context, userID int64) (Cart, error) {
	row := q.db.QueryRow(ctx, getOpenCart, userID)
	var i Cart
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Status,
		&i.TotalQuantity,
		&i.TotalAmount,
		&i.TotalCurrency,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getOpenCartForUpdate = getOpenCart + `FOR UPDATE
`

func (q *Queries) GetOpenCartForUpdate(ctx context.Context, userID int64) (Cart, error) {
	row := q.db.QueryRow(ctx, getOpenCartForUpdate, userID)
	var i Cart
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Status,
		&i.TotalQuantity,
		&i.TotalAmount,
		&i.TotalCurrency,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateCartTotals = `
UPDATE carts
SET total_quantity = $2,
    total_amount   = $3,
    total_currency = $4,
    updated_at     = NOW()
WHERE id = $1
`

type UpdateCartTotalsParams struct {
	ID            int64
	TotalQuantity int32
	TotalAmount   decimal.Decimal
	TotalCurrency string
}

func (q *Queries) UpdateCartTotals(ctx context.Context, arg UpdateCartTotalsParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateCartTotals,
		arg.ID,
		arg.TotalQuantity,
		arg.TotalAmount,
		arg.TotalCurrency,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listCartItems = `
SELECT id, cart_id, product_id, product_name, price_amount, price_currency, quantity, options_json, created_at, updated_at
FROM cart_items
WHERE cart_id = $1
ORDER BY id
`

func (q *Queries) ListCartItems(ctx context.Context, cartID int64) ([]CartItem, error) {
	rows, err := q.db.Query(ctx, listCartItems, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CartItem
	for rows.Next() {
		var i CartItem
		if err := rows.Scan(
			&i.ID,
			&i.CartID,
			&i.ProductID,
			&i.ProductName,
			&i.PriceAmount,
			&i.PriceCurrency,
			&i.Quantity,
			&i.OptionsJson,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const addCartItem = `
INSERT INTO cart_items (cart_id, product_id, product_name, price_amount, price_currency, quantity, options_json)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, cart_id, product_id, product_name, price_amount, price_currency, quantity, options_json, created_at, updated_at
`

type AddCartItemParams struct {
	CartID        int64
	ProductID     int64
	ProductName   string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Quantity      int32
	OptionsJson   *string
}

func (q *Queries) AddCartItem(ctx context.Context, arg AddCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, addCartItem,
		arg.CartID,
		arg.ProductID,
		arg.ProductName,
		arg.PriceAmount,
		arg.PriceCurrency,
		arg.Quantity,
		arg.OptionsJson,
	)
	var i CartItem
	err := row.Scan(
		&i.ID,
		&i.CartID,
		&i.ProductID,
		&i.ProductName,
		&i.PriceAmount,
		&i.PriceCurrency,
		&i.Quantity,
		&i.OptionsJson,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateCartItemQuantity = `
UPDATE cart_items
SET quantity   = $3,
    updated_at = NOW()
WHERE cart_id = $1 AND id = $2
`

type UpdateCartItemQuantityParams struct {
	CartID   int64
	ID       int64
	Quantity int32
}

func (q *Queries) UpdateCartItemQuantity(ctx context.Context, arg UpdateCartItemQuantityParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateCartItemQuantity, arg.CartID, arg.ID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteCartItem = `
DELETE FROM cart_items
WHERE cart_id = $1 AND id = $2
`

type DeleteCartItemParams struct {
	CartID int64
	ID     int64
}

func (q *Queries) DeleteCartItem(ctx context.Context, arg DeleteCartItemParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartItem, arg.CartID, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteCartItems = `
DELETE FROM cart_items
WHERE cart_id = $1
`

func (q *Queries) DeleteCartItems(ctx context.Context, cartID int64) error {
	_, err := q.db.Exec(ctx, deleteCartItems, cartID)
	return err
}
