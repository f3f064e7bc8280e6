package accountdata

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atr-trader/internal/connectivity"
	"atr-trader/internal/gate"
	"atr-trader/internal/snapshot"
	"atr-trader/internal/types"
)

type fakeBroker struct {
	snap types.AccountSnapshot
	err  error
}

func (f *fakeBroker) FetchRecentBars(ctx context.Context, symbol string, n int) ([]types.Bar, error) {
	return nil, nil
}

func (f *fakeBroker) FetchAccountSnapshot(ctx context.Context, symbol string) (types.AccountSnapshot, error) {
	return f.snap, f.err
}

func (f *fakeBroker) PlaceBracketOrder(ctx context.Context, req types.BracketOrderReq) (types.OrderResp, error) {
	return types.OrderResp{}, nil
}

func (f *fakeBroker) ClosePosition(ctx context.Context, symbol string, qty int) (types.OrderResp, error) {
	return types.OrderResp{}, nil
}

type fakeCalendar struct{ window bool }

func (f *fakeCalendar) IsWithinTradingHours(symbol string) bool { return f.window }
func (f *fakeCalendar) IsWithinFetchWindow() bool               { return f.window }

func newTestProducer(t *testing.T, brk *fakeBroker, window bool) (*Producer, *snapshot.State) {
	t.Helper()
	conn, err := connectivity.NewManager(connectivity.Config{
		DegradedThreshold:     3,
		DisconnectedThreshold: 6,
		BackoffMultiplier:     2.0,
		MaxRetryDelaySeconds:  60,
	})
	require.NoError(t, err)

	state := snapshot.New()
	t.Cleanup(state.Close)
	g := gate.NewController(&fakeCalendar{window: window}, conn, state, "RELIANCE", time.Second)
	var wg sync.WaitGroup
	wg.Add(1)
	go g.Run(context.Background(), &wg)
	require.Eventually(t, func() bool { return g.AllowFetch() == window }, time.Second, 5*time.Millisecond)

	return NewProducer(brk, g, conn, state, "RELIANCE", time.Second), state
}

func TestPollPublishesAccountSnapshot(t *testing.T) {
	brk := &fakeBroker{snap: types.AccountSnapshot{
		Equity:      50000,
		Position:    types.PositionDetails{Quantity: 10, CurrentValue: 1024},
		ExposurePct: 2.05,
	}}
	p, state := newTestProducer(t, brk, true)

	p.pollOnce(context.Background())

	a, ok := state.LatestAccount()
	require.True(t, ok)
	assert.Equal(t, 50000.0, a.Equity)
	assert.Equal(t, 10, a.Position.Quantity)
}

func TestPollAbsorbsFetchError(t *testing.T) {
	brk := &fakeBroker{err: errors.New("network")}
	p, state := newTestProducer(t, brk, true)

	p.pollOnce(context.Background())

	_, ok := state.LatestAccount()
	assert.False(t, ok, "failed fetch must not publish")
}

func TestPollSuppressedWhenGateClosed(t *testing.T) {
	brk := &fakeBroker{snap: types.AccountSnapshot{Equity: 50000}}
	p, state := newTestProducer(t, brk, false)

	p.pollOnce(context.Background())

	_, ok := state.LatestAccount()
	assert.False(t, ok)
}
