package marketdata

import (
	"context"
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
	bars []types.Bar
	err  error
}

func (f *fakeBroker) FetchRecentBars(ctx context.Context, symbol string, n int) ([]types.Bar, error) {
	return f.bars, f.err
}

func (f *fakeBroker) FetchAccountSnapshot(ctx context.Context, symbol string) (types.AccountSnapshot, error) {
	return types.AccountSnapshot{}, nil
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

func steadyBars(n int) []types.Bar {
	bars := make([]types.Bar, n)
	for i := range bars {
		bars[i] = types.Bar{
			Ts:     int64(i * 60),
			Open:   100,
			High:   101,
			Low:    99,
			Close:  100,
			Volume: 1000,
		}
	}
	return bars
}

func producerConfig() Config {
	return Config{
		Symbol:       "RELIANCE",
		ATRPeriod:    5,
		AvgATRPeriod: 10,
		AvgVolPeriod: 5,
		PollInterval: time.Second,
	}
}

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

	return NewProducer(brk, g, conn, state, producerConfig()), state
}

// awaitMarket pairs a dummy account snapshot with the wait so only the
// market side decides the outcome.
func awaitMarket(state *snapshot.State, timeout time.Duration) (types.MarketSnapshot, bool) {
	state.PublishAccount(types.AccountSnapshot{Equity: 1})
	m, _, ok := state.AwaitFreshMarket(timeout)
	return m, ok
}

func TestPollPublishesSnapshot(t *testing.T) {
	brk := &fakeBroker{bars: steadyBars(20)}
	p, state := newTestProducer(t, brk, true)

	p.pollOnce(context.Background())

	snap, ok := awaitMarket(state, time.Second)
	require.True(t, ok)
	assert.InDelta(t, 2.0, snap.ATR, 1e-9)
	assert.InDelta(t, 2.0, snap.AvgATR, 1e-9)
	assert.InDelta(t, 1000, snap.AvgVol, 1e-9)
	assert.Equal(t, int64(19*60), snap.Curr.Ts)
	assert.Equal(t, int64(18*60), snap.Prev.Ts)
}

func TestPollSkipsOnInsufficientBars(t *testing.T) {
	brk := &fakeBroker{bars: steadyBars(4)}
	p, state := newTestProducer(t, brk, true)

	p.pollOnce(context.Background())

	_, ok := awaitMarket(state, 30*time.Millisecond)
	assert.False(t, ok, "short history must not publish")
}

func TestPollSuppressedWhenGateClosed(t *testing.T) {
	brk := &fakeBroker{bars: steadyBars(20)}
	p, state := newTestProducer(t, brk, false)

	p.pollOnce(context.Background())

	_, ok := awaitMarket(state, 30*time.Millisecond)
	assert.False(t, ok, "closed gate must suppress the fetch")
}
