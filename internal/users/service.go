package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/secondserve/secondserve-backend/pkg/db/models"
	pkgerrors "github.com/secondserve/secondserve-backend/pkg/errors"
)

// Service exposes account profile operations. Identity itself is
// established by an external service; callers hand us a user id.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*UserDTO, error)
	UpdatePreferences(ctx context.Context, id uuid.UUID, preferences []string) (*UserDTO, error)
	UpdatePrivacy(ctx context.Context, id uuid.UUID, input UpdatePrivacyInput) (*UserDTO, error)
}

// UpdateProfileInput carries the profile form fields. Empty fields keep
// their previous values.
type UpdateProfileInput struct {
	DisplayName string
	Email       string
	Phone       string
	RadiusMiles *float64
}

// UpdatePrivacyInput carries the privacy toggles and consents.
type UpdatePrivacyInput struct {
	MaskAddress        bool
	InAppMessagingOnly bool
	AIDataOptIn        bool
	AIDataProgram      bool
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires a user service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewUserDTO(user), nil
}

// UpdateProfile applies the submitted fields, keeping previous values
// where the form left a field blank.
func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != "" {
		user.DisplayName = input.DisplayName
	}
	if input.Email != "" {
		email := input.Email
		user.Email = &email
	}
	if input.Phone != "" {
		phone := input.Phone
		user.Phone = &phone
	}
	if input.RadiusMiles != nil {
		if *input.RadiusMiles <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "radius must be positive")
		}
		user.RadiusMiles = input.RadiusMiles
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving profile")
	}
	return NewUserDTO(user), nil
}

// UpdatePreferences replaces the dietary tag list.
func (s *service) UpdatePreferences(ctx context.Context, id uuid.UUID, preferences []string) (*UserDTO, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	user.DietaryPreferences = append(user.DietaryPreferences[:0], preferences...)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving preferences")
	}
	return NewUserDTO(user), nil
}

// UpdatePrivacy stores the toggles and stamps the consent time whenever
// the consent state changes.
func (s *service) UpdatePrivacy(ctx context.Context, id uuid.UUID, input UpdatePrivacyInput) (*UserDTO, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	user.MaskAddress = input.MaskAddress
	user.InAppMessagingOnly = input.InAppMessagingOnly
	user.AIDataOptIn = input.AIDataOptIn
	if user.AIDataConsent != input.AIDataProgram {
		now := s.now().UTC()
		user.ConsentedAt = &now
	}
	user.AIDataConsent = input.AIDataProgram

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving privacy settings")
	}
	return NewUserDTO(user), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	return user, nil
}
