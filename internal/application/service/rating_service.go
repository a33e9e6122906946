package service

import (
	"context"
	"fmt"

	"github.com/garyjia/courier-billing/internal/application/port"
	"github.com/garyjia/courier-billing/internal/domain/condition"
	"github.com/garyjia/courier-billing/internal/domain/entity"
	"github.com/garyjia/courier-billing/internal/domain/event"
	"github.com/garyjia/courier-billing/internal/domain/rating"
	"golang.org/x/sync/errgroup"
)

// RateOutcome is the result of rating one shipment onto an invoice
type RateOutcome struct {
	Line    *entity.InvoiceLine  `json:"line"`
	Result  *entity.RatingResult `json:"result"`
	Created bool                 `json:"created"`
}

// ShipmentOutcome reports one shipment of a bulk run
type ShipmentOutcome struct {
	ShipmentID  string `json:"shipment_id"`
	LineID      int64  `json:"line_id,omitempty"`
	AmountMinor int64  `json:"amount_minor,omitempty"`
	Created     bool   `json:"created"`
	Code        string `json:"code,omitempty"`
	Error       string `json:"error,omitempty"`
}

// BulkReport summarizes a bulk rating run
type BulkReport struct {
	HeaderID int64             `json:"header_id"`
	Written  int               `json:"written"`
	Existing int               `json:"existing"`
	Failed   int               `json:"failed"`
	Outcomes []ShipmentOutcome `json:"outcomes"`
}

// RechargeQuote is the discount outcome for a wallet recharge
type RechargeQuote struct {
	FranchiseID     int64                         `json:"franchise_id"`
	SnapshotVersion string                        `json:"snapshot_version"`
	CustomerID      string                        `json:"customer_id"`
	AmountMinor     int64                         `json:"amount_minor"`
	Discounts       []entity.DiscountContribution `json:"discounts"`
	DiscountMinor   int64                         `json:"discount_minor"`
	DiscountClamped bool                          `json:"discount_clamped"`
	PayableMinor    int64                         `json:"payable_minor"`
}

// RatingService rates shipments and bills them onto invoices
type RatingService interface {
	// Quote runs the pure rating stages without writing anything
	Quote(ctx context.Context, franchiseID int64, shipment entity.Shipment) (*entity.RatingResult, error)

	// QuoteRecharge applies the RECHARGE discount rules to a wallet top-up
	QuoteRecharge(ctx context.Context, franchiseID int64, customerID string, amountMinor int64) (*RechargeQuote, error)

	// RateShipment rates shipment and writes its line on the header.
	// Repeating the call with the same configuration returns the same line.
	RateShipment(ctx context.Context, franchiseID int64, shipment entity.Shipment, headerID int64) (*RateOutcome, error)

	// RateShipments rates many shipments onto one header. Failures are
	// reported per shipment; the returned error is set only when the run
	// could not start or ctx ended.
	RateShipments(ctx context.Context, franchiseID, headerID int64, shipments []entity.Shipment) (*BulkReport, error)
}

type ratingServiceImpl struct {
	snapshots   SnapshotProvider
	lines       LineGenerator
	invoices    port.InvoiceRepository
	events      port.EventPublisher
	logger      Logger
	concurrency int
}

// NewRatingService creates a rating service. concurrency bounds the number
// of shipments rated in parallel by RateShipments.
func NewRatingService(
	snapshots SnapshotProvider,
	lines LineGenerator,
	invoices port.InvoiceRepository,
	events port.EventPublisher,
	logger Logger,
	concurrency int,
) RatingService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ratingServiceImpl{
		snapshots:   snapshots,
		lines:       lines,
		invoices:    invoices,
		events:      events,
		logger:      logger,
		concurrency: concurrency,
	}
}

func (s *ratingServiceImpl) Quote(ctx context.Context, franchiseID int64, shipment entity.Shipment) (*entity.RatingResult, error) {
	snap, err := s.snapshots.Get(ctx, franchiseID)
	if err != nil {
		return nil, err
	}
	return snap.Rate(shipment)
}

func (s *ratingServiceImpl) QuoteRecharge(ctx context.Context, franchiseID int64, customerID string, amountMinor int64) (*RechargeQuote, error) {
	if amountMinor <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amountMinor)
	}

	snap, err := s.snapshots.Get(ctx, franchiseID)
	if err != nil {
		return nil, err
	}

	out := snap.Discount(entity.AppliesToRecharge, amountMinor, condition.Facts{CustomerID: customerID})
	applied := out.Applied
	if applied == nil {
		applied = []entity.DiscountContribution{}
	}
	return &RechargeQuote{
		FranchiseID:     franchiseID,
		SnapshotVersion: snap.Version(),
		CustomerID:      customerID,
		AmountMinor:     amountMinor,
		Discounts:       applied,
		DiscountMinor:   out.Total,
		DiscountClamped: out.Clamped,
		PayableMinor:    out.Payable,
	}, nil
}

func (s *ratingServiceImpl) RateShipment(ctx context.Context, franchiseID int64, shipment entity.Shipment, headerID int64) (*RateOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap, err := s.snapshots.Get(ctx, franchiseID)
	if err != nil {
		return nil, err
	}

	outcome, err := s.rateOne(ctx, snap, franchiseID, headerID, shipment)
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *ratingServiceImpl) rateOne(ctx context.Context, snap *rating.Snapshot, franchiseID, headerID int64, shipment entity.Shipment) (*RateOutcome, error) {
	result, err := snap.Rate(shipment)
	if err != nil {
		s.logger.Error("Shipment rating failed",
			"franchise_id", franchiseID,
			"header_id", headerID,
			"shipment_id", shipment.ID,
			"error", err,
		)
		s.publish(ctx, event.NewEvent(event.TypeRatingFailed, franchiseID, headerID, shipment.ID, map[string]interface{}{
			"code":  ErrorCode(err),
			"error": err.Error(),
		}))
		return nil, err
	}

	line, created, err := s.lines.Write(ctx, franchiseID, headerID, result)
	if err != nil {
		return nil, err
	}

	rated := event.NewEvent(event.TypeShipmentRated, franchiseID, headerID, shipment.ID, map[string]interface{}{
		"snapshot_version": result.SnapshotVersion,
		"rate_rule_id":     result.RateRuleID,
		"rate_level":       string(result.RateLevel),
		"amount_minor":     result.AmountMinor,
		"discount_clamped": result.DiscountClamped,
	})
	s.publish(ctx, rated)
	if created {
		s.publish(ctx, event.NewEvent(event.TypeInvoiceLineWritten, franchiseID, headerID, shipment.ID, map[string]interface{}{
			"line_id":      line.ID,
			"amount_minor": line.AmountMinor,
		}).WithCorrelation(rated.CorrelationID))
	}

	return &RateOutcome{Line: line, Result: result, Created: created}, nil
}

func (s *ratingServiceImpl) RateShipments(ctx context.Context, franchiseID, headerID int64, shipments []entity.Shipment) (*BulkReport, error) {
	header, err := s.invoices.GetHeader(ctx, headerID)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, fmt.Errorf("%w: %d", ErrHeaderNotFound, headerID)
	}
	if header.FranchiseID != franchiseID {
		return nil, fmt.Errorf("%w: header %d belongs to franchise %d", ErrFranchiseMismatch, headerID, header.FranchiseID)
	}
	if !header.AcceptsLines() {
		return nil, rating.NewError(rating.ErrInvoiceFrozen, "", rating.StageInvoice, map[string]any{
			"header_id": headerID,
			"status":    string(header.Status),
		})
	}

	snap, err := s.snapshots.Get(ctx, franchiseID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]ShipmentOutcome, len(shipments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range shipments {
		i := i
		g.Go(func() error {
			sh := shipments[i]
			outcomes[i].ShipmentID = sh.ID
			if err := gctx.Err(); err != nil {
				outcomes[i].Code = ErrorCode(err)
				outcomes[i].Error = err.Error()
				return nil
			}

			res, err := s.rateOne(gctx, snap, franchiseID, headerID, sh)
			if err != nil {
				outcomes[i].Code = ErrorCode(err)
				outcomes[i].Error = err.Error()
				return nil
			}
			outcomes[i].LineID = res.Line.ID
			outcomes[i].AmountMinor = res.Line.AmountMinor
			outcomes[i].Created = res.Created
			return nil
		})
	}
	_ = g.Wait()

	report := &BulkReport{HeaderID: headerID, Outcomes: outcomes}
	for _, o := range outcomes {
		switch {
		case o.Error != "":
			report.Failed++
		case o.Created:
			report.Written++
		default:
			report.Existing++
		}
	}

	s.logger.Info("Bulk rating finished",
		"franchise_id", franchiseID,
		"header_id", headerID,
		"shipments", len(shipments),
		"written", report.Written,
		"existing", report.Existing,
		"failed", report.Failed,
	)
	return report, ctx.Err()
}

func (s *ratingServiceImpl) publish(ctx context.Context, evt *event.Event) {
	if s.events != nil {
		s.events.DispatchAsync(ctx, evt)
	}
}
