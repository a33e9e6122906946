package port

import (
	"context"

	"github.com/garyjia/courier-billing/internal/domain/event"
)

// EventPublisher hands domain events to subscribers without blocking the caller
type EventPublisher interface {
	DispatchAsync(ctx context.Context, evt *event.Event)
}
