package cron

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/secondserve/secondserve-backend/internal/cart"
	"github.com/secondserve/secondserve-backend/pkg/logger"
)

// CartCleanupJobParams configure the stale cart sweep.
type CartCleanupJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository cart.Repository
}

// NewCartCleanupJob builds the job that drops cart lines pointing at
// listings no longer in the browsable set.
func NewCartCleanupJob(params CartCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	return &cartCleanupJob{
		logg: params.Logger,
		db:   params.DB,
		repo: params.Repository,
	}, nil
}

type cartCleanupJob struct {
	logg *logger.Logger
	db   txRunner
	repo cart.Repository
}

func (j *cartCleanupJob) Name() string { return "cart-cleanup" }

func (j *cartCleanupJob) Run(ctx context.Context) error {
	var pruned int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		pruned, txErr = j.repo.WithTx(tx).PruneInactive(ctx)
		return txErr
	})
	if err != nil {
		return fmt.Errorf("prune cart lines: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "pruned", pruned), "cart cleanup complete")
	return nil
}
