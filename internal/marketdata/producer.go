package marketdata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"atr-trader/internal/connectivity"
	"atr-trader/internal/gate"
	"atr-trader/internal/interfaces"
	"atr-trader/internal/logger"
	"atr-trader/internal/snapshot"
	"atr-trader/internal/ta"
	"atr-trader/internal/types"
)

// errSkipCycle marks data-quality conditions: the cycle is dropped with a
// logged reason and the loop keeps running.
var errSkipCycle = errors.New("cycle skipped")

// Config holds the indicator parameters of the market producer.
type Config struct {
	Symbol       string
	ATRPeriod    int
	AvgATRPeriod int
	AvgVolPeriod int
	PollInterval time.Duration
}

// Producer periodically fetches bars, computes the volatility/volume view
// and publishes a MarketSnapshot. The snapshot is built entirely on the
// producer's stack; the shared state only ever sees finished copies.
type Producer struct {
	brk   interfaces.Broker
	gate  *gate.Controller
	conn  *connectivity.Manager
	state *snapshot.State
	cfg   Config
}

func NewProducer(brk interfaces.Broker, g *gate.Controller, conn *connectivity.Manager, state *snapshot.State, cfg Config) *Producer {
	return &Producer{brk: brk, gate: g, conn: conn, state: state, cfg: cfg}
}

// Run polls until shutdown. Any single bad cycle is logged and absorbed;
// the loop itself never exits on error.
func (p *Producer) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	p.pollOnce(ctx)
	for {
		select {
		case <-ticker.C:
			p.pollOnce(ctx)
		case <-p.state.Done():
			logger.Info(ctx, "Market data producer stopped", "symbol", p.cfg.Symbol)
			return
		}
	}
}

func (p *Producer) pollOnce(ctx context.Context) {
	if !p.gate.AllowFetch() {
		logger.Debug(ctx, "Market fetch suppressed - gate closed", "symbol", p.cfg.Symbol)
		return
	}
	if !p.conn.ShouldAttempt() {
		logger.Debug(ctx, "Market fetch suppressed - connectivity backoff", "symbol", p.cfg.Symbol)
		return
	}

	snap, err := p.buildSnapshot(ctx)
	if err != nil {
		if errors.Is(err, errSkipCycle) {
			logger.Warn(ctx, "Market cycle skipped", "symbol", p.cfg.Symbol, "reason", err.Error())
		} else {
			logger.ErrorWithErr(ctx, "Market data fetch failed", err, "symbol", p.cfg.Symbol)
		}
		return
	}

	p.state.PublishMarket(snap)
	logger.Debug(ctx, "Market snapshot published",
		"symbol", p.cfg.Symbol,
		"close", snap.Curr.Close,
		"atr", snap.ATR,
		"avg_atr", snap.AvgATR,
		"avg_vol", snap.AvgVol,
	)
}

func (p *Producer) buildSnapshot(ctx context.Context) (types.MarketSnapshot, error) {
	// Enough history for the ATR warm-up plus the longer averaging window.
	want := p.cfg.ATRPeriod + p.cfg.AvgATRPeriod + 1
	bars, err := p.brk.FetchRecentBars(ctx, p.cfg.Symbol, want)
	if err != nil {
		return types.MarketSnapshot{}, err
	}
	if len(bars) < p.cfg.ATRPeriod+2 {
		return types.MarketSnapshot{}, fmt.Errorf("%w: insufficient bars (%d < %d)",
			errSkipCycle, len(bars), p.cfg.ATRPeriod+2)
	}

	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	vols := make([]int64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
		vols[i] = b.Volume
	}

	atr := ta.ATR(highs, lows, closes, p.cfg.ATRPeriod)
	if math.IsNaN(atr) || atr <= 0 {
		return types.MarketSnapshot{}, fmt.Errorf("%w: unusable ATR %v", errSkipCycle, atr)
	}

	avgATR := ta.AvgATR(highs, lows, closes, p.cfg.ATRPeriod, p.cfg.AvgATRPeriod)
	if math.IsNaN(avgATR) || avgATR <= 0 {
		return types.MarketSnapshot{}, fmt.Errorf("%w: unusable average ATR %v", errSkipCycle, avgATR)
	}

	avgVol := ta.AvgVolume(vols, min(p.cfg.AvgVolPeriod, len(vols)))

	return types.MarketSnapshot{
		ATR:    atr,
		AvgATR: avgATR,
		AvgVol: avgVol,
		Curr:   bars[len(bars)-1],
		Prev:   bars[len(bars)-2],
	}, nil
}
