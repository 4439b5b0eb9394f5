package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/domain/entity"
	"github.com/jguyet/wallet-compose-interest-tracker/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingTracker struct {
	calls   atomic.Int32
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (b *blockingTracker) TrackWallet(context.Context, string, time.Time) (entity.TrackingSummary, error) {
	return entity.TrackingSummary{}, nil
}

func (b *blockingTracker) RunAllWallets(ctx context.Context, _ time.Time) []entity.TrackingSummary {
	b.calls.Add(1)
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return []entity.TrackingSummary{{WalletAddress: "0x1"}}
}

func TestNewRejectsInvalidSchedule(t *testing.T) {
	_, err := New("every now and then", &blockingTracker{}, logger.Nop{})
	assert.Error(t, err)
}

func TestRunOnceCallsTracker(t *testing.T) {
	tr := &blockingTracker{release: make(chan struct{}), started: make(chan struct{})}
	close(tr.release)
	s, err := New("@hourly", tr, logger.Nop{})
	require.NoError(t, err)

	s.RunOnce()
	assert.EqualValues(t, 1, tr.calls.Load())
}

func TestOverlappingTicksAreSkipped(t *testing.T) {
	tr := &blockingTracker{release: make(chan struct{}), started: make(chan struct{})}
	s, err := New("@every 1s", tr, logger.Nop{})
	require.NoError(t, err)

	s.Start()
	select {
	case <-tr.started:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled run did not start")
	}
	// Let at least two more ticks pass while the first run is blocked.
	time.Sleep(2500 * time.Millisecond)
	assert.EqualValues(t, 1, tr.calls.Load())

	close(tr.release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestStopCancelsInFlightRun(t *testing.T) {
	tr := &blockingTracker{release: make(chan struct{}), started: make(chan struct{})}
	s, err := New("@every 1s", tr, logger.Nop{})
	require.NoError(t, err)

	s.Start()
	select {
	case <-tr.started:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled run did not start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	s.RunOnce()
	assert.EqualValues(t, 1, tr.calls.Load())
}
