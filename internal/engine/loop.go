package engine

import (
	"context"
	"sync"
	"time"

	"atr-trader/internal/interfaces"
	"atr-trader/internal/logger"
	"atr-trader/internal/snapshot"
)

// Loop drives the decision engine: one Cycle, then a pause whose length
// depends on the cycle's terminal state. Shutdown is cooperative; the pause
// itself is interruptible.
type Loop struct {
	eng   interfaces.Engine
	state *snapshot.State
	halt  time.Duration
	sleep time.Duration
}

func NewLoop(eng interfaces.Engine, state *snapshot.State, halt, sleep time.Duration) *Loop {
	return &Loop{eng: eng, state: state, halt: halt, sleep: sleep}
}

func (l *Loop) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for l.state.Running() {
		res, err := l.eng.Cycle(ctx)
		if err != nil {
			// A single bad cycle never terminates the loop.
			logger.ErrorWithErr(ctx, "Decision cycle failed", err)
			l.pause(l.sleep)
			continue
		}
		switch res.State {
		case StateWaiting:
			// Cycle already blocked for the full wait window.
		case StateHalted:
			l.pause(l.halt)
		default:
			l.pause(l.sleep)
		}
	}
	logger.Info(ctx, "Trading decision loop stopped")
}

func (l *Loop) pause(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-l.state.Done():
	}
}
