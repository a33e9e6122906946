package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/garyjia/courier-billing/internal/application/port"
	"github.com/garyjia/courier-billing/internal/domain/entity"
	"github.com/garyjia/courier-billing/internal/domain/rating"
)

// LineGenerator turns rating results into invoice lines
type LineGenerator interface {
	// Write persists one line for result on the header, or returns the line
	// already written for the same shipment and snapshot version. created
	// reports whether a new line was inserted.
	Write(ctx context.Context, franchiseID, headerID int64, result *entity.RatingResult) (line *entity.InvoiceLine, created bool, err error)
}

type lineGeneratorImpl struct {
	invoices port.InvoiceRepository
	tx       port.TransactionManager
	locks    *HeaderLocks
	logger   Logger
}

// NewLineGenerator creates a line generator. locks must be shared with the
// invoice service so status changes and line writes on a header serialize.
func NewLineGenerator(invoices port.InvoiceRepository, tx port.TransactionManager, locks *HeaderLocks, logger Logger) LineGenerator {
	return &lineGeneratorImpl{
		invoices: invoices,
		tx:       tx,
		locks:    locks,
		logger:   logger,
	}
}

func (g *lineGeneratorImpl) Write(ctx context.Context, franchiseID, headerID int64, result *entity.RatingResult) (*entity.InvoiceLine, bool, error) {
	if got := result.GrossMinor - result.DiscountMinor + result.TaxMinor; got != result.AmountMinor {
		return nil, false, fmt.Errorf("rating result for shipment %s does not reconcile: %d != %d", result.ShipmentID, got, result.AmountMinor)
	}

	unlock, err := g.locks.Lock(ctx, headerID)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	var (
		line    *entity.InvoiceLine
		created bool
	)
	err = g.tx.WithTransaction(ctx, func(ctx context.Context) error {
		header, err := g.invoices.GetHeader(ctx, headerID)
		if err != nil {
			return err
		}
		if header == nil {
			return fmt.Errorf("%w: %d", ErrHeaderNotFound, headerID)
		}
		if header.FranchiseID != franchiseID {
			return fmt.Errorf("%w: header %d belongs to franchise %d", ErrFranchiseMismatch, headerID, header.FranchiseID)
		}
		if !header.AcceptsLines() {
			return rating.NewError(rating.ErrInvoiceFrozen, result.ShipmentID, rating.StageInvoice, map[string]any{
				"header_id": headerID,
				"status":    string(header.Status),
			})
		}

		existing, err := g.invoices.FindLineByShipment(ctx, headerID, result.ShipmentID)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.SnapshotVersion != result.SnapshotVersion {
				return fmt.Errorf("%w: shipment %s on header %d has snapshot %s, rated with %s",
					ErrLineConflict, result.ShipmentID, headerID, existing.SnapshotVersion, result.SnapshotVersion)
			}
			line = existing
			return nil
		}

		line, err = buildLine(headerID, result)
		if err != nil {
			return err
		}
		if err := g.invoices.CreateLine(ctx, line); err != nil {
			return err
		}
		if _, err := g.invoices.RecomputeTotals(ctx, headerID); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		g.logger.Info("Invoice line written",
			"header_id", headerID,
			"shipment_id", result.ShipmentID,
			"line_id", line.ID,
			"amount_minor", line.AmountMinor,
		)
	}
	return line, created, nil
}

func buildLine(headerID int64, result *entity.RatingResult) (*entity.InvoiceLine, error) {
	audit, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode rating audit: %w", err)
	}

	return &entity.InvoiceLine{
		HeaderID:        headerID,
		ShipmentID:      result.ShipmentID,
		SnapshotVersion: result.SnapshotVersion,
		Description: fmt.Sprintf("%s %s-%s %skg",
			result.ServiceType, result.FromZone, result.ToZone, result.Weight.String()),
		Quantity:       1,
		UnitPriceMinor: result.GrossMinor,
		GSTPercentage:  result.GSTPercentage,
		GrossMinor:     result.GrossMinor,
		DiscountMinor:  result.DiscountMinor,
		TaxMinor:       result.TaxMinor,
		RoundingMinor:  result.RoundingMinor,
		AmountMinor:    result.AmountMinor,
		RatingAudit:    string(audit),
	}, nil
}
