package accountdata

import (
	"context"
	"sync"
	"time"

	"atr-trader/internal/connectivity"
	"atr-trader/internal/gate"
	"atr-trader/internal/interfaces"
	"atr-trader/internal/logger"
	"atr-trader/internal/snapshot"
)

// Producer periodically fetches equity, position and open-order state and
// publishes an AccountSnapshot. Account data is allowed to be older than
// market data within a decision cycle; equity moves slower than price.
type Producer struct {
	brk      interfaces.Broker
	gate     *gate.Controller
	conn     *connectivity.Manager
	state    *snapshot.State
	symbol   string
	interval time.Duration
}

func NewProducer(brk interfaces.Broker, g *gate.Controller, conn *connectivity.Manager, state *snapshot.State, symbol string, interval time.Duration) *Producer {
	return &Producer{brk: brk, gate: g, conn: conn, state: state, symbol: symbol, interval: interval}
}

func (p *Producer) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.pollOnce(ctx)
	for {
		select {
		case <-ticker.C:
			p.pollOnce(ctx)
		case <-p.state.Done():
			logger.Info(ctx, "Account data producer stopped", "symbol", p.symbol)
			return
		}
	}
}

func (p *Producer) pollOnce(ctx context.Context) {
	if !p.gate.AllowFetch() {
		logger.Debug(ctx, "Account fetch suppressed - gate closed", "symbol", p.symbol)
		return
	}
	if !p.conn.ShouldAttempt() {
		logger.Debug(ctx, "Account fetch suppressed - connectivity backoff", "symbol", p.symbol)
		return
	}

	snap, err := p.brk.FetchAccountSnapshot(ctx, p.symbol)
	if err != nil {
		logger.ErrorWithErr(ctx, "Account fetch failed", err, "symbol", p.symbol)
		return
	}

	p.state.PublishAccount(snap)
	logger.Debug(ctx, "Account snapshot published",
		"symbol", p.symbol,
		"equity", snap.Equity,
		"position_qty", snap.Position.Quantity,
		"exposure_pct", snap.ExposurePct,
		"open_orders", snap.OpenOrders,
	)
}
