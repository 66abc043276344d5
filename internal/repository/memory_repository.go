package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nikolayk812/cafe-cart/internal/domain"
	"github.com/nikolayk812/cafe-cart/internal/port"
)

// memoryState keeps line items in an arena keyed by item id. A cart owns
// the ids of its lines; each line points back to its cart by id only.
type memoryState struct {
	nextCartID int64
	nextItemID int64

	carts map[int64]*memoryCart
	items map[int64]domain.CartItem
}

type memoryCart struct {
	cart    domain.Cart // Items is always nil here
	itemIDs []int64
}

type memoryRepository struct {
	mu    *sync.Mutex
	state *memoryState
	inTx  bool
}

// NewMemoryCart returns a process-local repository. All operations are
// serialized on one mutex, which also gives Transact its isolation.
func NewMemoryCart() port.CartRepository {
	return &memoryRepository{
		mu: &sync.Mutex{},
		state: &memoryState{
			carts: make(map[int64]*memoryCart),
			items: make(map[int64]domain.CartItem),
		},
	}
}

func (r *memoryRepository) Transact(ctx context.Context, fn func(repo port.CartRepository) error) error {
	if r.inTx {
		return fn(r)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := r.state.clone()

	err := fn(&memoryRepository{mu: r.mu, state: r.state, inTx: true})
	if err != nil {
		*r.state = *snapshot
		return err
	}

	return nil
}

func (r *memoryRepository) GetOrCreateOpenCart(ctx context.Context, userID int64) (domain.Cart, error) {
	if userID == 0 {
		return domain.Cart{}, fmt.Errorf("userID is empty")
	}

	var cart domain.Cart
	err := r.locked(ctx, func(s *memoryState) error {
		cart = s.openCart(userID)
		return nil
	})

	return cart, err
}

// LockOpenCart is equivalent to GetOrCreateOpenCart: inside Transact the
// store mutex is already held for the whole unit of work.
func (r *memoryRepository) LockOpenCart(ctx context.Context, userID int64) (domain.Cart, error) {
	return r.GetOrCreateOpenCart(ctx, userID)
}

func (r *memoryRepository) AddItem(ctx context.Context, item domain.CartItem) (domain.CartItem, error) {
	if item.CartID == 0 {
		return domain.CartItem{}, fmt.Errorf("cartID is empty")
	}
	if err := checkQuantity(item.Quantity); err != nil {
		return domain.CartItem{}, err
	}

	err := r.locked(ctx, func(s *memoryState) error {
		mc, ok := s.carts[item.CartID]
		if !ok {
			return fmt.Errorf("%w: cart %d", domain.ErrNotFound, item.CartID)
		}

		for _, id := range mc.itemIDs {
			if s.items[id].ProductID == item.ProductID {
				return fmt.Errorf("product %d is already in cart %d", item.ProductID, item.CartID)
			}
		}

		now := time.Now().UTC()
		s.nextItemID++
		item.ID = s.nextItemID
		item.Options = cloneRaw(item.Options)
		item.CreatedAt = now
		item.UpdatedAt = now

		s.items[item.ID] = item
		mc.itemIDs = append(mc.itemIDs, item.ID)
		return nil
	})
	if err != nil {
		return domain.CartItem{}, err
	}

	return item, nil
}

func (r *memoryRepository) UpdateItemQuantity(ctx context.Context, cartID, itemID int64, quantity int) error {
	if err := checkQuantity(quantity); err != nil {
		return err
	}

	return r.locked(ctx, func(s *memoryState) error {
		item, ok := s.items[itemID]
		if !ok || item.CartID != cartID {
			return fmt.Errorf("%w: cart item %d", domain.ErrNotFound, itemID)
		}

		item.Quantity = quantity
		item.UpdatedAt = time.Now().UTC()
		s.items[itemID] = item
		return nil
	})
}

func (r *memoryRepository) DeleteItem(ctx context.Context, cartID, itemID int64) (bool, error) {
	var deleted bool

	err := r.locked(ctx, func(s *memoryState) error {
		item, ok := s.items[itemID]
		if !ok || item.CartID != cartID {
			return nil
		}

		mc := s.carts[cartID]
		mc.itemIDs = slices.DeleteFunc(mc.itemIDs, func(id int64) bool { return id == itemID })
		delete(s.items, itemID)
		deleted = true
		return nil
	})

	return deleted, err
}

func (r *memoryRepository) DeleteItems(ctx context.Context, cartID int64) error {
	return r.locked(ctx, func(s *memoryState) error {
		mc, ok := s.carts[cartID]
		if !ok {
			return nil
		}

		for _, id := range mc.itemIDs {
			delete(s.items, id)
		}
		mc.itemIDs = nil
		return nil
	})
}

func (r *memoryRepository) UpdateTotals(ctx context.Context, cart domain.Cart) error {
	if err := checkQuantity(cart.TotalQuantity); err != nil {
		return err
	}

	return r.locked(ctx, func(s *memoryState) error {
		mc, ok := s.carts[cart.ID]
		if !ok {
			return fmt.Errorf("%w: cart %d", domain.ErrNotFound, cart.ID)
		}

		mc.cart.TotalQuantity = cart.TotalQuantity
		mc.cart.TotalAmount = cart.TotalAmount
		mc.cart.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// checkQuantity applies the postgres column range so both stores agree.
func checkQuantity(quantity int) error {
	if quantity < 0 || quantity > domain.MaxQuantity {
		return fmt.Errorf("%w: %d", domain.ErrQuantityOutOfRange, quantity)
	}
	return nil
}

func (r *memoryRepository) locked(ctx context.Context, fn func(s *memoryState) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !r.inTx {
		r.mu.Lock()
		defer r.mu.Unlock()
	}

	return fn(r.state)
}

func (s *memoryState) openCart(userID int64) domain.Cart {
	for _, mc := range s.carts {
		if mc.cart.UserID == userID && mc.cart.IsOpen() {
			return s.assemble(mc)
		}
	}

	now := time.Now().UTC()
	s.nextCartID++
	mc := &memoryCart{
		cart: domain.Cart{
			ID:          s.nextCartID,
			UserID:      userID,
			Status:      domain.CartStatusOpen,
			TotalAmount: domain.ZeroMoney(),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	s.carts[mc.cart.ID] = mc

	return s.assemble(mc)
}

func (s *memoryState) assemble(mc *memoryCart) domain.Cart {
	cart := mc.cart
	cart.Items = nil

	for _, id := range mc.itemIDs {
		item := s.items[id]
		item.Options = cloneRaw(item.Options)
		cart.Items = append(cart.Items, item)
	}

	return cart
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		nextCartID: s.nextCartID,
		nextItemID: s.nextItemID,
		carts:      make(map[int64]*memoryCart, len(s.carts)),
		items:      make(map[int64]domain.CartItem, len(s.items)),
	}

	for id, mc := range s.carts {
		c.carts[id] = &memoryCart{
			cart:    mc.cart,
			itemIDs: slices.Clone(mc.itemIDs),
		}
	}

	for id, item := range s.items {
		c.items[id] = item
	}

	return c
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return slices.Clone(raw)
}
