package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/secondserve/secondserve-backend/internal/ledger"
	"github.com/secondserve/secondserve-backend/internal/rules"
	"github.com/secondserve/secondserve-backend/pkg/enums"
	pkgerrors "github.com/secondserve/secondserve-backend/pkg/errors"
	"github.com/secondserve/secondserve-backend/pkg/metrics"
)

// Confirmation copy shown after a successful submission.
const (
	donationSubmittedMessage = "Thank you for donating, we will get back to you soon!"
	saleSubmittedMessage     = "Your product was submitted and is pending approval."
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the catalog operations: submission, browsing, and
// the review transitions.
type Service interface {
	Submit(ctx context.Context, ownerID uuid.UUID, draft rules.Draft) (*SubmissionResult, error)
	Get(ctx context.Context, id uuid.UUID) (*ListingDTO, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]ListingDTO, error)
	ListActive(ctx context.Context, query string) ([]ListingDTO, error)
	Approve(ctx context.Context, id uuid.UUID) (*ListingDTO, error)
	Reject(ctx context.Context, id uuid.UUID) (*ListingDTO, error)
	Complete(ctx context.Context, id uuid.UUID) (*ListingDTO, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	ledger    ledger.Service
	analytics *metrics.MarketplaceMetrics
	now       func() time.Time
}

// NewService builds a catalog service backed by the provided stack.
// The metrics recorder may be nil.
func NewService(repo Repository, tx txRunner, ledgerSvc ledger.Service, analytics *metrics.MarketplaceMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		ledger:    ledgerSvc,
		analytics: analytics,
		now:       time.Now,
	}, nil
}

// Submit finalizes the draft, stores the listing, and credits the
// owner's reward points in a single transaction.
func (s *service) Submit(ctx context.Context, ownerID uuid.UUID, draft rules.Draft) (*SubmissionResult, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}

	listing := rules.FinalizeDraft(draft, ownerID, uuid.New(), s.now().UTC())
	event, points := rules.RewardFor(listing)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, &listing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing listing")
		}
		_, err := s.ledger.Credit(ctx, tx, ledger.CreditInput{
			UserID:    ownerID,
			ListingID: listing.ID,
			Type:      event,
			Points:    points,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.analytics.IncSubmission(rules.TransactionToken(listing.IsDonation))
	s.analytics.AddPointsCredited(event.String(), points)

	message := saleSubmittedMessage
	if listing.IsDonation {
		message = donationSubmittedMessage
	}
	return &SubmissionResult{
		Listing:       NewListingDTO(&listing),
		PointsAwarded: points,
		Message:       message,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ListingDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading listing")
	}
	dto := NewListingDTO(listing)
	return &dto, nil
}

// ListForOwner returns the owner's listings in insertion order.
func (s *service) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]ListingDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	listings, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing by owner")
	}
	return newListingDTOs(listings), nil
}

// ListActive returns the browsable listings, optionally narrowed by a
// search query. Listings awaiting approval are browsable on purpose:
// visibility precedes approval.
func (s *service) ListActive(ctx context.Context, query string) ([]ListingDTO, error) {
	listings, err := s.repo.ListByStatuses(ctx,
		enums.ListingStatusActive,
		enums.ListingStatusPendingApproval,
	)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing active")
	}
	return newListingDTOs(FilterListings(listings, query)), nil
}

func (s *service) Approve(ctx context.Context, id uuid.UUID) (*ListingDTO, error) {
	return s.transition(ctx, id, enums.ListingStatusActive)
}

func (s *service) Reject(ctx context.Context, id uuid.UUID) (*ListingDTO, error) {
	return s.transition(ctx, id, enums.ListingStatusRejected)
}

func (s *service) Complete(ctx context.Context, id uuid.UUID) (*ListingDTO, error) {
	return s.transition(ctx, id, enums.ListingStatusCompleted)
}

func (s *service) transition(ctx context.Context, id uuid.UUID, to enums.ListingStatus) (*ListingDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}

	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading listing")
	}

	if !rules.CanTransition(listing.Status, to) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move listing from %s to %s", listing.Status, to))
	}

	moved, err := s.repo.UpdateStatus(ctx, id, listing.Status, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating listing status")
	}
	if moved == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing status changed concurrently")
	}

	listing.Status = to
	dto := NewListingDTO(listing)
	return &dto, nil
}
