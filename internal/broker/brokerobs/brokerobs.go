package brokerobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"atr-trader/internal/connectivity"
	"atr-trader/internal/interfaces"
	"atr-trader/internal/logger"
	"atr-trader/internal/trace"
	"atr-trader/internal/types"
)

// observableBroker wraps a Broker with tracing and is the single place every
// outbound call's outcome is reported to the connectivity manager.
type observableBroker struct {
	broker interfaces.Broker
	conn   *connectivity.Manager
}

var _ interfaces.Broker = (*observableBroker)(nil)

func Wrap(brk interfaces.Broker, conn *connectivity.Manager) interfaces.Broker {
	return &observableBroker{broker: brk, conn: conn}
}

func (ob *observableBroker) FetchRecentBars(ctx context.Context, symbol string, n int) ([]types.Bar, error) {
	ctx, span := trace.StartSpan(ctx, "broker.FetchRecentBars")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol), attribute.Int("count", n))

	start := time.Now()
	bars, err := ob.broker.FetchRecentBars(ctx, symbol, n)
	ob.report(ctx, "FetchRecentBars", start, err)
	return bars, err
}

func (ob *observableBroker) FetchAccountSnapshot(ctx context.Context, symbol string) (types.AccountSnapshot, error) {
	ctx, span := trace.StartSpan(ctx, "broker.FetchAccountSnapshot")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	start := time.Now()
	snap, err := ob.broker.FetchAccountSnapshot(ctx, symbol)
	ob.report(ctx, "FetchAccountSnapshot", start, err)
	return snap, err
}

func (ob *observableBroker) PlaceBracketOrder(ctx context.Context, req types.BracketOrderReq) (types.OrderResp, error) {
	ctx, span := trace.StartSpan(ctx, "broker.PlaceBracketOrder")
	defer span.End()
	span.SetAttributes(
		attribute.String("symbol", req.Symbol),
		attribute.String("side", string(req.Side)),
		attribute.Int("qty", req.Qty),
	)

	start := time.Now()
	resp, err := ob.broker.PlaceBracketOrder(ctx, req)
	ob.report(ctx, "PlaceBracketOrder", start, err)
	return resp, err
}

func (ob *observableBroker) ClosePosition(ctx context.Context, symbol string, qty int) (types.OrderResp, error) {
	ctx, span := trace.StartSpan(ctx, "broker.ClosePosition")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol), attribute.Int("qty", qty))

	start := time.Now()
	resp, err := ob.broker.ClosePosition(ctx, symbol, qty)
	ob.report(ctx, "ClosePosition", start, err)
	return resp, err
}

func (ob *observableBroker) report(ctx context.Context, op string, start time.Time, err error) {
	if err != nil {
		ob.conn.ReportFailure(ctx, err.Error())
		logger.ErrorWithErrSkip(ctx, 1, "Broker call failed", err,
			"operation", op,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	ob.conn.ReportSuccess()
	logger.Debug(ctx, "Broker call completed",
		"operation", op,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
