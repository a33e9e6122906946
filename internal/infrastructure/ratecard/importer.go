package ratecard

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/garyjia/courier-billing/internal/application/port"
	"github.com/garyjia/courier-billing/internal/domain/rating"
	"go.uber.org/zap"
)

// Result summarizes an import
type Result struct {
	FranchiseID     int64  `json:"franchise_id"`
	SnapshotVersion string `json:"snapshot_version"`
	Sectors         int    `json:"sectors"`
	Rates           int    `json:"rates"`
	CompanyRates    int    `json:"company_rates"`
	Discounts       int    `json:"discounts"`
	Overlaps        int    `json:"overlaps"`
}

// Invalidator drops cached snapshots after a card is stored
type Invalidator interface {
	Invalidate(franchiseID int64)
	InvalidateAll()
}

// Importer validates rate cards and stores them
type Importer struct {
	configs     port.ConfigRepository
	tx          port.TransactionManager
	invalidator Invalidator
	logger      *zap.Logger
}

// NewImporter creates a new rate card importer
func NewImporter(configs port.ConfigRepository, tx port.TransactionManager, logger *zap.Logger) *Importer {
	return &Importer{
		configs: configs,
		tx:      tx,
		logger:  logger,
	}
}

// WithInvalidator sets the cache to invalidate after each successful import
func (im *Importer) WithInvalidator(inv Invalidator) *Importer {
	im.invalidator = inv
	return im
}

// ImportFile imports the workbook at path
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rate card: %w", err)
	}
	defer file.Close()

	return im.Import(ctx, file)
}

// Import parses a workbook, validates it as a snapshot and replaces the
// franchise configuration in one transaction. Nothing is written when
// validation fails.
func (im *Importer) Import(ctx context.Context, src io.Reader) (*Result, error) {
	card, err := Parse(src)
	if err != nil {
		return nil, err
	}
	cfg := card.Config

	if !card.HasCompanyRates {
		current, err := im.configs.LoadFranchiseConfig(ctx, cfg.FranchiseID)
		if err != nil {
			return nil, err
		}
		if current != nil {
			cfg.CompanyRates = current.CompanyRates
		}
	}

	snap, err := rating.Build(cfg)
	if err != nil {
		im.logger.Error("Rate card rejected",
			zap.Int64("franchise_id", cfg.FranchiseID),
			zap.Error(err))
		return nil, err
	}

	err = im.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if card.HasCompanyRates {
			if err := im.configs.ReplaceCompanyRates(ctx, cfg.CompanyRates); err != nil {
				return err
			}
		}
		return im.configs.ReplaceFranchiseConfig(ctx, &cfg)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store rate card: %w", err)
	}

	if im.invalidator != nil {
		if card.HasCompanyRates {
			im.invalidator.InvalidateAll()
		} else {
			im.invalidator.Invalidate(cfg.FranchiseID)
		}
	}

	res := &Result{
		FranchiseID:     cfg.FranchiseID,
		SnapshotVersion: snap.Version(),
		Sectors:         len(cfg.Sectors),
		Rates:           len(cfg.Rates),
		CompanyRates:    len(cfg.CompanyRates),
		Discounts:       len(cfg.Discounts),
		Overlaps:        len(snap.Overlaps()),
	}
	im.logger.Info("Rate card imported",
		zap.Int64("franchise_id", res.FranchiseID),
		zap.String("snapshot_version", res.SnapshotVersion),
		zap.Int("sectors", res.Sectors),
		zap.Int("rates", res.Rates),
		zap.Int("discounts", res.Discounts),
		zap.Int("overlaps", res.Overlaps))
	for _, o := range snap.Overlaps() {
		im.logger.Warn("Overlapping rate rules imported",
			zap.Int64("franchise_id", res.FranchiseID),
			zap.String("level", string(o.Level)),
			zap.Int64("first_rule_id", o.FirstID),
			zap.Int64("second_rule_id", o.SecondID))
	}
	return res, nil
}
