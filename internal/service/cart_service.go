package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/cafe-cart/internal/domain"
	"github.com/nikolayk812/cafe-cart/internal/port"
	"go.uber.org/zap"
)

const DefaultLookupTimeout = 2 * time.Second

type AddItemRequest struct {
	ProductID int64           `json:"productId" validate:"required"`
	Quantity  int             `json:"quantity" validate:"min=1,max=2147483647"`
	Options   json.RawMessage `json:"options,omitempty"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=1,max=2147483647"`
}

// Service manages the single OPEN cart of each user. Every operation
// resolves (and if needed creates) that cart first.
type Service interface {
	GetOrCreateOpenCart(ctx context.Context, userID int64) (domain.Cart, error)
	ListItems(ctx context.Context, userID int64) ([]domain.CartItemView, error)
	AddItem(ctx context.Context, userID int64, req AddItemRequest) (domain.CartItemView, error)
	UpdateQuantity(ctx context.Context, userID, itemID int64, req UpdateQuantityRequest) (domain.CartItemView, error)
	RemoveItem(ctx context.Context, userID, itemID int64) error
	Clear(ctx context.Context, userID int64) error
}

type Config struct {
	// LookupTimeout bounds a single product lookup. Zero means DefaultLookupTimeout.
	LookupTimeout time.Duration
	Logger        *zap.Logger
}

type service struct {
	repo          port.CartRepository
	lookup        port.ProductLookup
	lookupTimeout time.Duration
	logger        *zap.Logger
}

func New(repo port.CartRepository, lookup port.ProductLookup, cfg Config) Service {
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = DefaultLookupTimeout
	}

	l := zap.L().Named("cart.service")
	if cfg.Logger != nil {
		l = cfg.Logger.Named("cart.service")
	}

	return &service{
		repo:          repo,
		lookup:        lookup,
		lookupTimeout: cfg.LookupTimeout,
		logger:        l,
	}
}

func (s *service) GetOrCreateOpenCart(ctx context.Context, userID int64) (domain.Cart, error) {
	if err := validateUserID(userID); err != nil {
		return domain.Cart{}, err
	}

	cart, err := s.repo.GetOrCreateOpenCart(ctx, userID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("repo.GetOrCreateOpenCart: %w", err)
	}

	return cart, nil
}

func (s *service) ListItems(ctx context.Context, userID int64) ([]domain.CartItemView, error) {
	cart, err := s.GetOrCreateOpenCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.CartItemView, 0, len(cart.Items))
	for _, item := range cart.Items {
		views = append(views, item.View())
	}

	return views, nil
}

func (s *service) AddItem(ctx context.Context, userID int64, req AddItemRequest) (domain.CartItemView, error) {
	if err := validateUserID(userID); err != nil {
		return domain.CartItemView{}, err
	}
	if err := validate.Struct(req); err != nil {
		return domain.CartItemView{}, mapValidationError(err)
	}

	current, err := s.GetOrCreateOpenCart(ctx, userID)
	if err != nil {
		return domain.CartItemView{}, err
	}

	if err := checkCartQuantity(current.TotalQuantity, req.Quantity); err != nil {
		return domain.CartItemView{}, err
	}

	// The catalog is consulted outside the transaction, and only when the
	// product is not in the cart yet. An existing line keeps its snapshot.
	var snap *domain.ProductSnapshot
	if _, ok := current.ItemByProduct(req.ProductID); !ok {
		fetched, err := s.snapshot(ctx, req.ProductID)
		if err != nil {
			return domain.CartItemView{}, err
		}
		snap = &fetched
	}

	var view domain.CartItemView

	err = s.repo.Transact(ctx, func(repo port.CartRepository) error {
		cart, err := lockOpenCart(ctx, repo, userID)
		if err != nil {
			return err
		}

		if err := checkCartQuantity(cart.TotalQuantity, req.Quantity); err != nil {
			return err
		}

		if item, ok := cart.ItemByProduct(req.ProductID); ok {
			item.Quantity += req.Quantity
			if err := repo.UpdateItemQuantity(ctx, cart.ID, item.ID, item.Quantity); err != nil {
				return fmt.Errorf("repo.UpdateItemQuantity: %w", err)
			}
			view = item.View()
		} else {
			// the line we saw earlier was removed meanwhile
			if snap == nil {
				fetched, err := s.snapshot(ctx, req.ProductID)
				if err != nil {
					return err
				}
				snap = &fetched
			}

			added, err := repo.AddItem(ctx, domain.CartItem{
				CartID:      cart.ID,
				ProductID:   req.ProductID,
				ProductName: snap.Name,
				UnitPrice:   snap.Price,
				Quantity:    req.Quantity,
				Options:     req.Options,
			})
			if err != nil {
				return fmt.Errorf("repo.AddItem: %w", err)
			}
			cart.AddItem(added)
			view = added.View()
		}

		cart.Recalculate()
		if err := repo.UpdateTotals(ctx, cart); err != nil {
			return fmt.Errorf("repo.UpdateTotals: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.CartItemView{}, err
	}

	s.logger.Debug("cart item added",
		zap.Int64("user_id", userID),
		zap.Int64("product_id", req.ProductID),
		zap.Int64("item_id", view.ID),
		zap.Int("quantity", view.Quantity),
	)

	return view, nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID, itemID int64, req UpdateQuantityRequest) (domain.CartItemView, error) {
	if err := validateUserID(userID); err != nil {
		return domain.CartItemView{}, err
	}
	if err := validate.Struct(req); err != nil {
		return domain.CartItemView{}, mapValidationError(err)
	}

	var view domain.CartItemView

	err := s.repo.Transact(ctx, func(repo port.CartRepository) error {
		cart, err := lockOpenCart(ctx, repo, userID)
		if err != nil {
			return err
		}

		item, ok := cart.ItemByID(itemID)
		if !ok {
			return itemNotFound(itemID)
		}

		if err := checkCartQuantity(cart.TotalQuantity-item.Quantity, req.Quantity); err != nil {
			return err
		}

		item.Quantity = req.Quantity
		if err := repo.UpdateItemQuantity(ctx, cart.ID, item.ID, item.Quantity); err != nil {
			return fmt.Errorf("repo.UpdateItemQuantity: %w", err)
		}
		view = item.View()

		cart.Recalculate()
		if err := repo.UpdateTotals(ctx, cart); err != nil {
			return fmt.Errorf("repo.UpdateTotals: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.CartItemView{}, err
	}

	return view, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID int64) error {
	if err := validateUserID(userID); err != nil {
		return err
	}

	return s.repo.Transact(ctx, func(repo port.CartRepository) error {
		cart, err := lockOpenCart(ctx, repo, userID)
		if err != nil {
			return err
		}

		if !cart.RemoveItem(itemID) {
			return itemNotFound(itemID)
		}

		deleted, err := repo.DeleteItem(ctx, cart.ID, itemID)
		if err != nil {
			return fmt.Errorf("repo.DeleteItem: %w", err)
		}
		if !deleted {
			return itemNotFound(itemID)
		}

		if err := repo.UpdateTotals(ctx, cart); err != nil {
			return fmt.Errorf("repo.UpdateTotals: %w", err)
		}

		return nil
	})
}

func (s *service) Clear(ctx context.Context, userID int64) error {
	if err := validateUserID(userID); err != nil {
		return err
	}

	return s.repo.Transact(ctx, func(repo port.CartRepository) error {
		cart, err := lockOpenCart(ctx, repo, userID)
		if err != nil {
			return err
		}

		if err := repo.DeleteItems(ctx, cart.ID); err != nil {
			return fmt.Errorf("repo.DeleteItems: %w", err)
		}

		cart.ClearItems()
		if err := repo.UpdateTotals(ctx, cart); err != nil {
			return fmt.Errorf("repo.UpdateTotals: %w", err)
		}

		return nil
	})
}

func (s *service) snapshot(ctx context.Context, productID int64) (domain.ProductSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	snap, err := s.lookup.GetSnapshot(ctx, productID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
		}

		s.logger.Warn("product lookup failed", zap.Int64("product_id", productID), zap.Error(err))
		return domain.ProductSnapshot{}, fmt.Errorf("lookup.GetSnapshot: %w", err)
	}

	return snap, nil
}

// lockOpenCart locks the caller's cart for the rest of the transaction.
func lockOpenCart(ctx context.Context, repo port.CartRepository, userID int64) (domain.Cart, error) {
	cart, err := repo.LockOpenCart(ctx, userID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("repo.LockOpenCart: %w", err)
	}

	if !cart.IsOpen() {
		return domain.Cart{}, fmt.Errorf("%w: cart %d is %s", domain.ErrCartNotOpen, cart.ID, cart.Status)
	}

	return cart, nil
}

// checkCartQuantity rejects a change that would push the cart total past
// MaxQuantity; others is the quantity held by the untouched lines.
func checkCartQuantity(others, added int) error {
	if others > domain.MaxQuantity-added {
		return fmt.Errorf("%w: cart would exceed quantity %d", domain.ErrQuantityOutOfRange, domain.MaxQuantity)
	}
	return nil
}

func validateUserID(userID int64) error {
	if userID == 0 {
		return fmt.Errorf("%w: userID is required", domain.ErrInvalidArgument)
	}
	return nil
}

func itemNotFound(itemID int64) error {
	return fmt.Errorf("%w: cart item %d", domain.ErrNotFound, itemID)
}
