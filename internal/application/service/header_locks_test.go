package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/garyjia/courier-billing/internal/domain/rating"
	"github.com/garyjia/courier-billing/internal/domain/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderLocks_Exclusive(t *testing.T) {
	locks := NewHeaderLocks()
	ctx := context.Background()

	unlock, err := locks.Lock(ctx, 1)
	require.NoError(t, err)

	other, err := locks.Lock(ctx, 2)
	require.NoError(t, err, "different headers never contend")
	other()

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = locks.Lock(waitCtx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()
	assert.Equal(t, 0, locks.Len())

	again, err := locks.Lock(ctx, 1)
	require.NoError(t, err)
	again()
}

func TestHeaderLocks_SerializesCounter(t *testing.T) {
	locks := NewHeaderLocks()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locks.Lock(context.Background(), 7)
			if err != nil {
				return
			}
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, locks.Len())
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{rating.NewError(rating.ErrZoneUnresolved, "A", rating.StageZone, nil), "zone_unresolved"},
		{rating.NewError(rating.ErrRateAmbiguous, "A", rating.StageRate, nil), "rate_ambiguous"},
		{fmt.Errorf("wrap: %w", ErrLineConflict), "line_conflict"},
		{fmt.Errorf("wrap: %w", workflow.ErrGuardFailed), "transition_refused"},
		{context.Canceled, "cancelled"},
		{errors.New("disk full"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}
