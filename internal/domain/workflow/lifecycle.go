package workflow

import (
	"context"

	"github.com/garyjia/courier-billing/internal/domain/entity"
)

// NewInvoiceLifecycle builds the header lifecycle for header:
//
//	draft --SEND--> sent --PAY--> paid
//	draft --CANCEL--> cancelled
//
// Sending requires at least one line.
func NewInvoiceLifecycle(header *entity.InvoiceHeader) (StateMachine, error) {
	hasLines := func(context.Context) bool { return header.LineCount > 0 }

	b := NewBuilder()
	b.Configure(StateDraft).
		PermitIf(TriggerSend, StateSent, hasLines).
		Permit(TriggerCancel, StateCancelled)
	b.Configure(StateSent).
		Permit(TriggerPay, StatePaid)

	return b.Build(State(header.Status))
}
