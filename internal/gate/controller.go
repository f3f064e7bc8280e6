package gate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"atr-trader/internal/connectivity"
	"atr-trader/internal/interfaces"
	"atr-trader/internal/logger"
	"atr-trader/internal/snapshot"
)

// Controller is the market gate: a two-state machine (open/closed) driven by
// the calendar's fetch-window predicate. Producers consult AllowFetch before
// every poll. Transitions are logged once per edge, never per poll, and the
// connectivity manager's status is watched the same way.
type Controller struct {
	cal      interfaces.Calendar
	conn     *connectivity.Manager
	state    *snapshot.State
	symbol   string
	interval time.Duration

	allowFetch atomic.Bool

	// Owned by the gate loop; read nowhere else.
	started    bool
	lastOpen   bool
	lastStatus connectivity.Status
}

func NewController(cal interfaces.Calendar, conn *connectivity.Manager, state *snapshot.State, symbol string, interval time.Duration) *Controller {
	return &Controller{
		cal:        cal,
		conn:       conn,
		state:      state,
		symbol:     symbol,
		interval:   interval,
		lastStatus: connectivity.StatusConnected,
	}
}

// AllowFetch reports whether producers may fetch right now.
func (c *Controller) AllowFetch() bool {
	return c.allowFetch.Load()
}

// Run polls the calendar until shutdown. It evaluates once immediately so
// producers never observe a default-closed gate during a live session.
func (c *Controller) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	c.poll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.poll(ctx)
		case <-c.state.Done():
			logger.Info(ctx, "Market gate monitor stopped")
			return
		}
	}
}

func (c *Controller) poll(ctx context.Context) {
	open := c.cal.IsWithinFetchWindow()
	c.allowFetch.Store(open)

	if !c.started || open != c.lastOpen {
		if open {
			logger.Info(ctx, "Market gate opened", "symbol", c.symbol)
		} else {
			logger.Info(ctx, "Market gate closed - fetch and trading suppressed", "symbol", c.symbol)
		}
		c.started = true
		c.lastOpen = open
	}

	if status := c.conn.Snapshot().Status; status != c.lastStatus {
		logger.Warn(ctx, "API connectivity status",
			"from", string(c.lastStatus),
			"to", string(status),
		)
		c.lastStatus = status
	}
}
