package engine

import (
	"context"

	"atr-trader/internal/interfaces"
	"atr-trader/internal/logger"
	"atr-trader/internal/tradelog"
	"atr-trader/internal/types"
)

// orderExecutor handles order placement and trade journaling.
type orderExecutor struct {
	broker  interfaces.Broker
	journal *tradelog.Journal
}

func newOrderExecutor(broker interfaces.Broker, journal *tradelog.Journal) *orderExecutor {
	return &orderExecutor{broker: broker, journal: journal}
}

// placeBracket submits the entry order with its exit legs. Failures are
// logged with full order context and returned; the decision loop continues
// and re-evaluates from fresh state next cycle.
func (oe *orderExecutor) placeBracket(ctx context.Context, req types.BracketOrderReq, reason string) (types.OrderResp, error) {
	resp, err := oe.broker.PlaceBracketOrder(ctx, req)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to place bracket order", err,
			"symbol", req.Symbol,
			"side", string(req.Side),
			"qty", req.Qty,
			"entry_price", req.EntryPrice,
			"take_profit", req.TakeProfit,
			"stop_loss", req.StopLoss,
		)
		return types.OrderResp{}, err
	}

	logger.Trade(ctx, req.Symbol, string(req.Side), req.Qty, req.EntryPrice, resp.OrderID,
		"take_profit", req.TakeProfit,
		"stop_loss", req.StopLoss,
		"tag", req.Tag,
	)

	oe.journal.Append(tradelog.Entry{
		Symbol:     req.Symbol,
		Side:       string(req.Side),
		Qty:        req.Qty,
		Price:      req.EntryPrice,
		TakeProfit: req.TakeProfit,
		StopLoss:   req.StopLoss,
		OrderID:    resp.OrderID,
		Reason:     reason,
	})

	return resp, nil
}

// closePosition flattens the current position. qty is the signed held
// quantity; the broker derives the closing side from its sign.
func (oe *orderExecutor) closePosition(ctx context.Context, symbol string, qty int, price float64, reason string) (types.OrderResp, error) {
	resp, err := oe.broker.ClosePosition(ctx, symbol, qty)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to close position", err,
			"symbol", symbol,
			"qty", qty,
		)
		return types.OrderResp{}, err
	}

	logger.Trade(ctx, symbol, "CLOSE", qty, price, resp.OrderID, "reason", reason)

	oe.journal.Append(tradelog.Entry{
		Symbol:  symbol,
		Side:    "CLOSE",
		Qty:     qty,
		Price:   price,
		OrderID: resp.OrderID,
		Reason:  reason,
	})

	return resp, nil
}
