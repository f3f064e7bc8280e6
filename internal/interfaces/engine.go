package interfaces

import (
	"context"

	"atr-trader/internal/types"
)

// CycleResult summarizes one decision cycle for logging and middleware.
type CycleResult struct {
	Symbol string
	State  string
	Gate   types.TradeGateResult
	Sizing types.PositionSizing
	Orders []types.OrderResp
	Reason string
}

// Engine runs one full trading decision cycle.
type Engine interface {
	Cycle(ctx context.Context) (*CycleResult, error)
}
