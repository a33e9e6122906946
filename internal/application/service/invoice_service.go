package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/garyjia/courier-billing/internal/application/port"
	"github.com/garyjia/courier-billing/internal/domain/entity"
	"github.com/garyjia/courier-billing/internal/domain/event"
	"github.com/garyjia/courier-billing/internal/domain/workflow"
	"github.com/google/uuid"
)

// InvoiceView is a header together with its lines
type InvoiceView struct {
	Header *entity.InvoiceHeader `json:"header"`
	Lines  []*entity.InvoiceLine `json:"lines"`
}

// InvoiceService manages invoice headers and their lifecycle
type InvoiceService interface {
	// CreateDraft opens a new draft header for a customer of the franchise
	CreateDraft(ctx context.Context, franchiseID int64, customerID string) (*entity.InvoiceHeader, error)

	// Get returns the header with its lines
	Get(ctx context.Context, headerID int64) (*InvoiceView, error)

	// Transition fires trigger on the header lifecycle and persists the new status
	Transition(ctx context.Context, headerID int64, trigger workflow.Trigger) (*entity.InvoiceHeader, error)
}

type invoiceServiceImpl struct {
	invoices  port.InvoiceRepository
	tx        port.TransactionManager
	snapshots SnapshotProvider
	locks     *HeaderLocks
	events    port.EventPublisher
	logger    Logger
}

// NewInvoiceService creates an invoice service sharing locks with the line generator
func NewInvoiceService(
	invoices port.InvoiceRepository,
	tx port.TransactionManager,
	snapshots SnapshotProvider,
	locks *HeaderLocks,
	events port.EventPublisher,
	logger Logger,
) InvoiceService {
	return &invoiceServiceImpl{
		invoices:  invoices,
		tx:        tx,
		snapshots: snapshots,
		locks:     locks,
		events:    events,
		logger:    logger,
	}
}

func (s *invoiceServiceImpl) CreateDraft(ctx context.Context, franchiseID int64, customerID string) (*entity.InvoiceHeader, error) {
	if _, err := s.snapshots.Get(ctx, franchiseID); err != nil {
		return nil, err
	}

	header := &entity.InvoiceHeader{
		FranchiseID:   franchiseID,
		InvoiceNumber: invoiceNumber(franchiseID),
		CustomerID:    strings.TrimSpace(customerID),
		Status:        entity.InvoiceStatusDraft,
	}
	if err := s.invoices.CreateHeader(ctx, header); err != nil {
		return nil, fmt.Errorf("create invoice header: %w", err)
	}

	s.logger.Info("Invoice draft created",
		"header_id", header.ID,
		"franchise_id", franchiseID,
		"invoice_number", header.InvoiceNumber,
	)
	s.publish(ctx, event.NewEvent(event.TypeInvoiceCreated, franchiseID, header.ID, "", map[string]interface{}{
		"invoice_number": header.InvoiceNumber,
		"customer_id":    header.CustomerID,
	}))
	return header, nil
}

func (s *invoiceServiceImpl) Get(ctx context.Context, headerID int64) (*InvoiceView, error) {
	header, err := s.invoices.GetHeader(ctx, headerID)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, fmt.Errorf("%w: %d", ErrHeaderNotFound, headerID)
	}

	lines, err := s.invoices.ListLines(ctx, headerID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []*entity.InvoiceLine{}
	}
	return &InvoiceView{Header: header, Lines: lines}, nil
}

func (s *invoiceServiceImpl) Transition(ctx context.Context, headerID int64, trigger workflow.Trigger) (*entity.InvoiceHeader, error) {
	unlock, err := s.locks.Lock(ctx, headerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		header *entity.InvoiceHeader
		from   entity.InvoiceStatus
	)
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		header, err = s.invoices.GetHeader(ctx, headerID)
		if err != nil {
			return err
		}
		if header == nil {
			return fmt.Errorf("%w: %d", ErrHeaderNotFound, headerID)
		}
		from = header.Status

		machine, err := workflow.NewInvoiceLifecycle(header)
		if err != nil {
			return err
		}
		if err := machine.Fire(ctx, trigger); err != nil {
			return err
		}

		to := machine.State().Status()
		if err := s.invoices.UpdateHeaderStatus(ctx, headerID, to); err != nil {
			return err
		}
		header.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice status changed",
		"header_id", headerID,
		"from", string(from),
		"to", string(header.Status),
		"trigger", trigger.String(),
	)
	s.publish(ctx, event.NewEvent(event.TypeInvoiceStatusChanged, header.FranchiseID, headerID, "", map[string]interface{}{
		"from":    string(from),
		"to":      string(header.Status),
		"trigger": trigger.String(),
	}))
	return header, nil
}

func (s *invoiceServiceImpl) publish(ctx context.Context, evt *event.Event) {
	if s.events != nil {
		s.events.DispatchAsync(ctx, evt)
	}
}

// invoiceNumber carries a full random UUID so numbers stay unique across
// franchises without a database sequence.
func invoiceNumber(franchiseID int64) string {
	return fmt.Sprintf("INV-%d-%s", franchiseID, strings.ToUpper(uuid.NewString()))
}
