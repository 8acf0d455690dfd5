package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/secondserve/secondserve-backend/pkg/db/models"
	"github.com/secondserve/secondserve-backend/pkg/enums"
	pkgerrors "github.com/secondserve/secondserve-backend/pkg/errors"
)

// Service defines operations over the points ledger. The ledger is the
// only writer of a user's points balance.
type Service interface {
	Credit(ctx context.Context, tx *gorm.DB, input CreditInput) (*models.PointsEntry, error)
	Balance(ctx context.Context, userID uuid.UUID) (int, error)
	History(ctx context.Context, userID uuid.UUID) ([]models.PointsEntry, error)
}

type service struct {
	repo Repository
}

// CreditInput captures the immutable data a points credit requires.
type CreditInput struct {
	UserID    uuid.UUID
	ListingID uuid.UUID
	Type      enums.PointsEventType
	Points    int
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

// Credit appends an entry and moves the balance in the same transaction
// when tx is non-nil. Credits must be strictly positive.
func (s *service) Credit(ctx context.Context, tx *gorm.DB, input CreditInput) (*models.PointsEntry, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ListingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid points event type %q", input.Type))
	}
	if input.Points <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "points must be positive")
	}

	repo := s.repo.WithTx(tx)

	entry := &models.PointsEntry{
		ID:        uuid.New(),
		UserID:    input.UserID,
		ListingID: input.ListingID,
		Type:      input.Type,
		Points:    input.Points,
	}
	if err := repo.CreateEntry(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording points entry")
	}

	moved, err := repo.AdjustBalance(ctx, input.UserID, input.Points)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating points balance")
	}
	if moved == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "balance update rejected")
	}
	return entry, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	balance, err := s.repo.Balance(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading points balance")
	}
	return balance, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID) ([]models.PointsEntry, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	entries, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing points entries")
	}
	return entries, nil
}
