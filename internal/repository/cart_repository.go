package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cafe-cart/internal/db"
	"github.com/nikolayk812/cafe-cart/internal/domain"
	"github.com/nikolayk812/cafe-cart/internal/port"
	"golang.org/x/text/currency"
)

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *cartRepository) Transact(ctx context.Context, fn func(repo port.CartRepository) error) error {
	_, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (struct{}, error) {
		return struct{}{}, fn(&cartRepository{q: q})
	})
	return err
}

func (r *cartRepository) GetOrCreateOpenCart(ctx context.Context, userID int64) (domain.Cart, error) {
	if userID == 0 {
		return domain.Cart{}, fmt.Errorf("userID is empty")
	}

	return openCart(ctx, r.q, userID, r.q.GetOpenCart)
}

func (r *cartRepository) LockOpenCart(ctx context.Context, userID int64) (domain.Cart, error) {
	if userID == 0 {
		return domain.Cart{}, fmt.Errorf("userID is empty")
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Cart, error) {
		return openCart(ctx, q, userID, q.GetOpenCartForUpdate)
	})
}

// openCart reads the user's OPEN cart and creates it when absent. A racing
// creator loses on the partial unique index and simply re-reads.
func openCart(
	ctx context.Context,
	q *db.Queries,
	userID int64,
	get func(ctx context.Context, userID int64) (db.Cart, error),
) (domain.Cart, error) {
	dbCart, err := get(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		_, err = q.CreateOpenCart(ctx, db.CreateOpenCartParams{
			UserID:        userID,
			TotalCurrency: domain.DefaultCurrency.String(),
		})
		if err != nil {
			return domain.Cart{}, fmt.Errorf("q.CreateOpenCart: %w", err)
		}

		dbCart, err = get(ctx, userID)
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("get open cart: %w", err)
	}

	dbItems, err := q.ListCartItems(ctx, dbCart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.ListCartItems: %w", err)
	}

	cart, err := mapCartToDomain(dbCart, dbItems)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapCartToDomain: %w", err)
	}

	return cart, nil
}

func (r *cartRepository) AddItem(ctx context.Context, item domain.CartItem) (domain.CartItem, error) {
	if item.CartID == 0 {
		return domain.CartItem{}, fmt.Errorf("cartID is empty")
	}

	var options *string
	if len(item.Options) > 0 {
		s := string(item.Options)
		options = &s
	}

	quantity, err := quantityParam(item.Quantity)
	if err != nil {
		return domain.CartItem{}, err
	}

	row, err := r.q.AddCartItem(ctx, db.AddCartItemParams{
		CartID:        item.CartID,
		ProductID:     item.ProductID,
		ProductName:   item.ProductName,
		PriceAmount:   item.UnitPrice.Amount,
		PriceCurrency: item.UnitPrice.Currency.String(),
		Quantity:      quantity,
		OptionsJson:   options,
	})
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("q.AddCartItem: %w", err)
	}

	added, err := mapCartItemToDomain(row)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("mapCartItemToDomain: %w", err)
	}

	return added, nil
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, cartID, itemID int64, quantity int) error {
	q32, err := quantityParam(quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := r.q.UpdateCartItemQuantity(ctx, db.UpdateCartItemQuantityParams{
		CartID:   cartID,
		ID:       itemID,
		Quantity: q32,
	})
	if err != nil {
		return fmt.Errorf("q.UpdateCartItemQuantity: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: cart item %d", domain.ErrNotFound, itemID)
	}

	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, cartID, itemID int64) (bool, error) {
	rowsAffected, err := r.q.DeleteCartItem(ctx, db.DeleteCartItemParams{
		CartID: cartID,
		ID:     itemID,
	})
	if err != nil {
		return false, fmt.Errorf("q.DeleteCartItem: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *cartRepository) DeleteItems(ctx context.Context, cartID int64) error {
	if err := r.q.DeleteCartItems(ctx, cartID); err != nil {
		return fmt.Errorf("q.DeleteCartItems: %w", err)
	}

	return nil
}

func (r *cartRepository) UpdateTotals(ctx context.Context, cart domain.Cart) error {
	totalQuantity, err := quantityParam(cart.TotalQuantity)
	if err != nil {
		return err
	}

	rowsAffected, err := r.q.UpdateCartTotals(ctx, db.UpdateCartTotalsParams{
		ID:            cart.ID,
		TotalQuantity: totalQuantity,
		TotalAmount:   cart.TotalAmount.Amount,
		TotalCurrency: cart.TotalAmount.Currency.String(),
	})
	if err != nil {
		return fmt.Errorf("q.UpdateCartTotals: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: cart %d", domain.ErrNotFound, cart.ID)
	}

	return nil
}

// quantityParam narrows a quantity to its column type, refusing values
// that would not survive the conversion.
func quantityParam(quantity int) (int32, error) {
	if quantity < 0 || quantity > domain.MaxQuantity {
		return 0, fmt.Errorf("%w: %d", domain.ErrQuantityOutOfRange, quantity)
	}
	return int32(quantity), nil
}

func mapCartToDomain(row db.Cart, itemRows []db.CartItem) (domain.Cart, error) {
	status, err := domain.ParseCartStatus(row.Status)
	if err != nil {
		return domain.Cart{}, err
	}

	totalCurrency, err := currency.ParseISO(row.TotalCurrency)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("currency[%s] is not valid: %w", row.TotalCurrency, err)
	}

	items, err := mapCartItemsToDomain(itemRows)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapCartItemsToDomain: %w", err)
	}

	return domain.Cart{
		ID:            row.ID,
		UserID:        row.UserID,
		Status:        status,
		TotalQuantity: int(row.TotalQuantity),
		TotalAmount:   domain.Money{Amount: row.TotalAmount, Currency: totalCurrency},
		Items:         items,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

func mapCartItemToDomain(row db.CartItem) (domain.CartItem, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	var options json.RawMessage
	if row.OptionsJson != nil {
		options = json.RawMessage(*row.OptionsJson)
	}

	return domain.CartItem{
		ID:          row.ID,
		CartID:      row.CartID,
		ProductID:   row.ProductID,
		ProductName: row.ProductName,
		UnitPrice:   domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		Quantity:    int(row.Quantity),
		Options:     options,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func mapCartItemsToDomain(rows []db.CartItem) ([]domain.CartItem, error) {
	var items []domain.CartItem

	for _, row := range rows {
		item, err := mapCartItemToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapCartItemToDomain: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
