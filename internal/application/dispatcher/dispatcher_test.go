package dispatcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/garyjia/courier-billing/internal/domain/event"
)

type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockLogger) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

func newEvent(t event.Type) *event.Event {
	return event.NewEvent(t, 1, 10, "CN-1", map[string]interface{}{})
}

func TestDispatch_RunsHandlersInOrder(t *testing.T) {
	d := NewDispatcher()
	var order []string

	d.SubscribeNamed(event.TypeShipmentRated, "first", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "first")
		return nil
	})
	d.SubscribeNamed(event.TypeShipmentRated, "second", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "second")
		return nil
	})
	d.Subscribe(event.TypeRatingFailed, func(ctx context.Context, evt *event.Event) error {
		order = append(order, "other")
		return nil
	})

	if err := d.Dispatch(context.Background(), newEvent(event.TypeShipmentRated)); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("order = %v, want [first second]", order)
	}
}

func TestDispatch_StopsAtFirstError(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))
	boom := errors.New("boom")
	var calledAfter bool

	d.SubscribeNamed(event.TypeInvoiceLineWritten, "failing", func(ctx context.Context, evt *event.Event) error {
		return boom
	})
	d.SubscribeNamed(event.TypeInvoiceLineWritten, "after", func(ctx context.Context, evt *event.Event) error {
		calledAfter = true
		return nil
	})

	err := d.Dispatch(context.Background(), newEvent(event.TypeInvoiceLineWritten))
	if !errors.Is(err, boom) {
		t.Fatalf("Dispatch() error = %v, want wrapped boom", err)
	}
	if calledAfter {
		t.Error("handler after failure should not run")
	}
	if logger.ErrorCount() != 1 {
		t.Errorf("ErrorCount() = %d, want 1", logger.ErrorCount())
	}
}

func TestDispatch_RecoversPanics(t *testing.T) {
	d := NewDispatcher()
	d.Subscribe(event.TypeShipmentRated, func(ctx context.Context, evt *event.Event) error {
		panic("bad handler")
	})

	err := d.Dispatch(context.Background(), newEvent(event.TypeShipmentRated))
	if err == nil {
		t.Fatal("expected panic to surface as error")
	}
}

func TestDispatchAsync_SurvivesCallerCancellation(t *testing.T) {
	d := NewDispatcher()
	var seenErr atomic.Value
	var calls atomic.Int32

	d.Subscribe(event.TypeShipmentRated, func(ctx context.Context, evt *event.Event) error {
		time.Sleep(10 * time.Millisecond)
		seenErr.Store(ctx.Err() == nil)
		calls.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	d.DispatchAsync(ctx, newEvent(event.TypeShipmentRated))
	cancel()

	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
	if ok, _ := seenErr.Load().(bool); !ok {
		t.Error("async handler context should not be cancelled with the caller")
	}
}

func TestDispatchAsync_LogsHandlerErrors(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))
	d.Subscribe(event.TypeRatingFailed, func(ctx context.Context, evt *event.Event) error {
		return errors.New("sink down")
	})

	d.DispatchAsync(context.Background(), newEvent(event.TypeRatingFailed))
	_ = d.Close()

	if logger.ErrorCount() != 1 {
		t.Errorf("ErrorCount() = %d, want 1", logger.ErrorCount())
	}
}

func TestClose(t *testing.T) {
	d := NewDispatcher()

	if err := d.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := d.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close() error = %v, want ErrClosed", err)
	}
	if err := d.Dispatch(context.Background(), newEvent(event.TypeShipmentRated)); !errors.Is(err, ErrClosed) {
		t.Errorf("Dispatch() after Close error = %v, want ErrClosed", err)
	}
}

func TestListHandlers(t *testing.T) {
	d := NewDispatcher()
	noop := func(ctx context.Context, evt *event.Event) error { return nil }
	d.Subscribe(event.TypeInvoiceStatusChanged, noop)
	d.Subscribe(event.TypeInvoiceStatusChanged, noop)

	handlers := d.ListHandlers(event.TypeInvoiceStatusChanged)
	if len(handlers) != 2 {
		t.Fatalf("len = %d, want 2", len(handlers))
	}
	if handlers[0].Name != "handler-0" || handlers[1].Name != "handler-1" {
		t.Errorf("names = %s, %s", handlers[0].Name, handlers[1].Name)
	}
	if handlers[0].Handler != nil {
		t.Error("ListHandlers must not expose handler funcs")
	}
	if len(d.ListHandlers(event.TypeConfigDefect)) != 0 {
		t.Error("expected no handlers for unsubscribed type")
	}
}
