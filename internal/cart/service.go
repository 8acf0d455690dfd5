package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/secondserve/secondserve-backend/pkg/db/models"
	pkgerrors "github.com/secondserve/secondserve-backend/pkg/errors"
	"github.com/secondserve/secondserve-backend/pkg/metrics"
)

const orderPlacedMessage = "Order placed. Pickup details will be shared soon."

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type listingLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

// Service exposes the cart operations, checkout included.
type Service interface {
	AddItem(ctx context.Context, userID, listingID uuid.UUID) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, listingID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	Fetch(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	Checkout(ctx context.Context, userID uuid.UUID) (*CheckoutResult, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	listings  listingLoader
	analytics *metrics.MarketplaceMetrics
}

// NewService builds a cart service backed by the provided stack. The
// metrics recorder may be nil.
func NewService(repo Repository, tx txRunner, listings listingLoader, analytics *metrics.MarketplaceMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if listings == nil {
		return nil, fmt.Errorf("listing loader required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		listings:  listings,
		analytics: analytics,
	}, nil
}

// AddItem merges the listing into the cart: a new line starts at
// quantity one, an existing line gains one.
func (s *service) AddItem(ctx context.Context, userID, listingID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}

	if _, err := s.listings.FindByID(ctx, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading listing")
	}

	item := &models.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ListingID: listingID,
		Quantity:  1,
	}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding cart line")
	}
	return s.Fetch(ctx, userID)
}

// RemoveItem drops the line for the listing. Removing an absent line
// is a no-op, not an error.
func (s *service) RemoveItem(ctx context.Context, userID, listingID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	if err := s.repo.Delete(ctx, userID, listingID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart line")
	}
	return s.Fetch(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.repo.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
	}
	return nil
}

func (s *service) Fetch(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	return buildCartDTO(items), nil
}

// Checkout reads the total, empties the cart in one transaction, and
// returns the order confirmation.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID) (*CheckoutResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	var cart *CartDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		items, err := repo.ListByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
		}
		cart = buildCartDTO(items)
		if err := repo.Clear(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	totalDollars, _ := decimal.NewFromInt(cart.TotalCents).Shift(-2).Float64()
	s.analytics.ObserveCheckout(totalDollars)

	return &CheckoutResult{
		TotalCents: cart.TotalCents,
		Total:      cart.Total,
		Message:    orderPlacedMessage,
	}, nil
}

func buildCartDTO(items []models.CartItem) *CartDTO {
	dto := &CartDTO{Items: make([]LineDTO, 0, len(items))}
	for _, item := range items {
		line := newLineDTO(item)
		dto.Items = append(dto.Items, line)
		dto.TotalCents += line.LineTotalCents
	}
	dto.Total = formatDollars(dto.TotalCents)
	return dto
}
