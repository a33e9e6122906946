package service

import (
	"context"

	"github.com/garyjia/courier-billing/internal/application/dispatcher"
	"github.com/garyjia/courier-billing/internal/domain/event"
)

var auditedEvents = []event.Type{
	event.TypeShipmentRated,
	event.TypeRatingFailed,
	event.TypeInvoiceCreated,
	event.TypeInvoiceLineWritten,
	event.TypeInvoiceStatusChanged,
	event.TypeConfigDefect,
}

// RegisterAuditTrail subscribes a handler that logs every billing event
func RegisterAuditTrail(d dispatcher.Dispatcher, logger Logger) {
	handler := func(ctx context.Context, evt *event.Event) error {
		kv := []interface{}{
			"event_id", evt.ID,
			"event_type", evt.Type.String(),
			"franchise_id", evt.FranchiseID,
			"correlation_id", evt.CorrelationID,
		}
		if evt.HeaderID != 0 {
			kv = append(kv, "header_id", evt.HeaderID)
		}
		if evt.ShipmentID != "" {
			kv = append(kv, "shipment_id", evt.ShipmentID)
		}
		for k, v := range evt.Payload {
			kv = append(kv, k, v)
		}

		if evt.Type == event.TypeRatingFailed || evt.Type == event.TypeConfigDefect {
			logger.Error("Billing event", kv...)
		} else {
			logger.Info("Billing event", kv...)
		}
		return nil
	}

	for _, t := range auditedEvents {
		d.SubscribeNamed(t, "audit-trail", handler)
	}
}
