package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/secondserve/secondserve-backend/internal/catalog"
	"github.com/secondserve/secondserve-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ListingExpiryJobParams configure the listing expiry sweep.
type ListingExpiryJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository catalog.Repository
}

// NewListingExpiryJob builds the job that completes active listings
// whose expiry date has passed.
func NewListingExpiryJob(params ListingExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &listingExpiryJob{
		logg: params.Logger,
		db:   params.DB,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type listingExpiryJob struct {
	logg *logger.Logger
	db   txRunner
	repo catalog.Repository
	now  func() time.Time
}

func (j *listingExpiryJob) Name() string { return "listing-expiry" }

func (j *listingExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	var expired int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		expired, txErr = j.repo.WithTx(tx).ExpireActiveBefore(ctx, cutoff)
		return txErr
	})
	if err != nil {
		return fmt.Errorf("expire listings: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "expired", expired), "listing expiry sweep complete")
	return nil
}
