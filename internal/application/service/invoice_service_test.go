package service

import (
	"context"
	"strings"
	"testing"

	"github.com/garyjia/courier-billing/internal/application/dispatcher"
	"github.com/garyjia/courier-billing/internal/domain/entity"
	"github.com/garyjia/courier-billing/internal/domain/event"
	"github.com/garyjia/courier-billing/internal/domain/rating"
	"github.com/garyjia/courier-billing/internal/domain/workflow"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDraft(t *testing.T) {
	f := newFixture()

	header, err := f.invoice.CreateDraft(context.Background(), testFranchise, " CUST-1 ")
	require.NoError(t, err)
	assert.NotZero(t, header.ID)
	assert.Equal(t, entity.InvoiceStatusDraft, header.Status)
	assert.Equal(t, "CUST-1", header.CustomerID)
	assert.True(t, strings.HasPrefix(header.InvoiceNumber, "INV-1-"))
	assert.Len(t, f.events.ofType(event.TypeInvoiceCreated), 1)

	suffix := strings.TrimPrefix(header.InvoiceNumber, "INV-1-")
	_, err = uuid.Parse(suffix)
	require.NoError(t, err, "invoice number %s", header.InvoiceNumber)
	assert.Equal(t, strings.ToUpper(suffix), suffix)

	second, err := f.invoice.CreateDraft(context.Background(), testFranchise, "CUST-1")
	require.NoError(t, err)
	assert.NotEqual(t, header.InvoiceNumber, second.InvoiceNumber)

	_, err = f.invoice.CreateDraft(context.Background(), 77, "CUST-1")
	assert.ErrorIs(t, err, ErrFranchiseNotFound)
}

func TestGet(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	header, err := f.invoice.CreateDraft(ctx, testFranchise, "CUST-1")
	require.NoError(t, err)

	view, err := f.invoice.Get(ctx, header.ID)
	require.NoError(t, err)
	assert.NotNil(t, view.Lines)
	assert.Empty(t, view.Lines)

	_, err = f.rating.RateShipment(ctx, testFranchise, shipment("AWB-1"), header.ID)
	require.NoError(t, err)

	view, err = f.invoice.Get(ctx, header.ID)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 1)
	assert.Equal(t, int64(15296), view.Header.TotalMinor)

	_, err = f.invoice.Get(ctx, 404)
	assert.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestTransition(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	header, err := f.invoice.CreateDraft(ctx, testFranchise, "CUST-1")
	require.NoError(t, err)

	_, err = f.invoice.Transition(ctx, header.ID, workflow.TriggerSend)
	assert.ErrorIs(t, err, workflow.ErrGuardFailed, "empty invoice cannot be sent")

	_, err = f.rating.RateShipment(ctx, testFranchise, shipment("AWB-1"), header.ID)
	require.NoError(t, err)

	sent, err := f.invoice.Transition(ctx, header.ID, workflow.TriggerSend)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusSent, sent.Status)

	_, err = f.rating.RateShipment(ctx, testFranchise, shipment("AWB-2"), header.ID)
	assert.ErrorIs(t, err, rating.ErrInvoiceFrozen)

	paid, err := f.invoice.Transition(ctx, header.ID, workflow.TriggerPay)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPaid, paid.Status)

	_, err = f.invoice.Transition(ctx, header.ID, workflow.TriggerCancel)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

	changes := f.events.ofType(event.TypeInvoiceStatusChanged)
	require.Len(t, changes, 2)
	assert.Equal(t, "sent", changes[0].GetPayloadString("to"))
	assert.Equal(t, "paid", changes[1].GetPayloadString("to"))
}

func TestTransition_Cancel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	headerID := f.invoices.putHeader(entity.InvoiceStatusDraft)

	cancelled, err := f.invoice.Transition(ctx, headerID, workflow.TriggerCancel)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusCancelled, cancelled.Status)

	_, err = f.invoice.Transition(ctx, headerID, workflow.TriggerSend)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

	_, err = f.invoice.Transition(ctx, 999, workflow.TriggerCancel)
	assert.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestRegisterAuditTrail(t *testing.T) {
	logger := &recordingLogger{}
	d := dispatcher.NewDispatcher()
	RegisterAuditTrail(d, logger)

	assert.Len(t, d.ListHandlers(event.TypeShipmentRated), 1)
	assert.Len(t, d.ListHandlers(event.TypeConfigDefect), 1)

	evt := event.NewEvent(event.TypeRatingFailed, testFranchise, 3, "AWB-1", map[string]interface{}{"code": "zone_unresolved"})
	require.NoError(t, d.Dispatch(context.Background(), evt))
	assert.Equal(t, 1, logger.count())
	assert.Equal(t, "ERROR Billing event", logger.entries[0])
}
