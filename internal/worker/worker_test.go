package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"shop-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrderSource struct {
	stale     []models.Order
	gotCutoff time.Time
	gotLimit  int
	err       error
}

func (s *stubOrderSource) GetStaleOrders(_ context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	s.gotCutoff = cutoff
	s.gotLimit = limit
	return s.stale, s.err
}

type stubExpirer struct {
	expired []string
	failFor map[string]error
}

func (s *stubExpirer) Expire(_ context.Context, order *models.Order) error {
	if err, ok := s.failFor[order.ID]; ok {
		return err
	}
	s.expired = append(s.expired, order.ID)
	return nil
}

func TestSweepExpiresStaleOrders(t *testing.T) {
	source := &stubOrderSource{stale: []models.Order{
		{ID: "o1", Status: models.OrderStatusCreated},
		{ID: "o2", Status: models.OrderStatusCreated},
	}}
	expirer := &stubExpirer{}
	sweeper := NewExpirySweeper(source, expirer, time.Minute, time.Hour)

	require.NoError(t, sweeper.Sweep(context.Background()))

	assert.Equal(t, []string{"o1", "o2"}, expirer.expired)
	assert.Equal(t, sweepBatchSize, source.gotLimit)
	// The cutoff sits roughly maxAge in the past.
	assert.WithinDuration(t, time.Now().Add(-time.Hour), source.gotCutoff, 5*time.Second)
}

func TestSweepIsolatesPerOrderFailures(t *testing.T) {
	source := &stubOrderSource{stale: []models.Order{
		{ID: "o1"}, {ID: "bad"}, {ID: "o3"},
	}}
	expirer := &stubExpirer{failFor: map[string]error{"bad": errors.New("boom")}}
	sweeper := NewExpirySweeper(source, expirer, time.Minute, time.Hour)

	require.NoError(t, sweeper.Sweep(context.Background()))

	// The failing order does not block the rest of the batch.
	assert.Equal(t, []string{"o1", "o3"}, expirer.expired)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	source := &stubOrderSource{}
	sweeper := NewExpirySweeper(source, &stubExpirer{}, 10*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- sweeper.Start(ctx)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
