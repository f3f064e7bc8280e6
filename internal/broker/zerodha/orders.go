package zerodha

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"atr-trader/internal/types"
)

// PlaceBracketOrder submits the entry with its squareoff and stoploss legs.
// Kite expresses both legs as point distances from the entry price.
func (z *Zerodha) PlaceBracketOrder(ctx context.Context, req types.BracketOrderReq) (types.OrderResp, error) {
	if z.p.Mode == "DRY_RUN" {
		return types.OrderResp{
			OrderID: fmt.Sprintf("SIM-%d", time.Now().UnixNano()),
			Status:  "SIMULATED",
			Message: "dry-run",
		}, nil
	}
	if z.p.APIKey == "" || z.p.AccessToken == "" {
		return types.OrderResp{}, errors.New("missing API key/access token")
	}

	if err := z.limiter.Wait(ctx); err != nil {
		return types.OrderResp{}, err
	}

	resp, err := z.kc.PlaceOrder(kiteconnect.VarietyBO, kiteconnect.OrderParams{
		Exchange:        z.p.Exchange,
		Tradingsymbol:   req.Symbol,
		Validity:        kiteconnect.ValidityDay,
		Product:         z.p.Product,
		OrderType:       kiteconnect.OrderTypeLimit,
		TransactionType: transactionType(req.Side),
		Quantity:        req.Qty,
		Price:           req.EntryPrice,
		Squareoff:       math.Abs(req.TakeProfit - req.EntryPrice),
		Stoploss:        math.Abs(req.EntryPrice - req.StopLoss),
		Tag:             req.Tag,
	})
	if err != nil {
		return types.OrderResp{}, fmt.Errorf("bracket order: %w", err)
	}

	return types.OrderResp{OrderID: resp.OrderID, Status: "PLACED", Message: "ok"}, nil
}

// ClosePosition flattens the held quantity with a market order on the
// opposite side.
func (z *Zerodha) ClosePosition(ctx context.Context, symbol string, qty int) (types.OrderResp, error) {
	if qty == 0 {
		return types.OrderResp{}, errors.New("nothing to close")
	}

	if z.p.Mode == "DRY_RUN" {
		return types.OrderResp{
			OrderID: fmt.Sprintf("SIM-%d", time.Now().UnixNano()),
			Status:  "SIMULATED",
			Message: "dry-run",
		}, nil
	}
	if z.p.APIKey == "" || z.p.AccessToken == "" {
		return types.OrderResp{}, errors.New("missing API key/access token")
	}

	side := types.SideSell
	if qty < 0 {
		side = types.SideBuy
		qty = -qty
	}

	if err := z.limiter.Wait(ctx); err != nil {
		return types.OrderResp{}, err
	}

	resp, err := z.kc.PlaceOrder(kiteconnect.VarietyRegular, kiteconnect.OrderParams{
		Exchange:        z.p.Exchange,
		Tradingsymbol:   symbol,
		Validity:        kiteconnect.ValidityDay,
		Product:         z.p.Product,
		OrderType:       kiteconnect.OrderTypeMarket,
		TransactionType: transactionType(side),
		Quantity:        qty,
	})
	if err != nil {
		return types.OrderResp{}, fmt.Errorf("close position: %w", err)
	}

	return types.OrderResp{OrderID: resp.OrderID, Status: "PLACED", Message: "ok"}, nil
}

func transactionType(side types.Side) string {
	if side == types.SideBuy {
		return kiteconnect.TransactionTypeBuy
	}
	return kiteconnect.TransactionTypeSell
}
