package interfaces

import (
	"context"

	"atr-trader/internal/types"
)

// Broker is the outbound trading interface the engine consumes. Implementations
// own HTTP transport, timeouts and per-call retries; callers own the backoff
// policy that decides whether a call is attempted at all.
type Broker interface {
	FetchRecentBars(ctx context.Context, symbol string, n int) ([]types.Bar, error)
	FetchAccountSnapshot(ctx context.Context, symbol string) (types.AccountSnapshot, error)
	PlaceBracketOrder(ctx context.Context, req types.BracketOrderReq) (types.OrderResp, error)
	// ClosePosition flattens qty shares; qty is signed the way the position
	// is held (positive long, negative short).
	ClosePosition(ctx context.Context, symbol string, qty int) (types.OrderResp, error)
}
