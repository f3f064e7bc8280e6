package zerodha

import (
	"context"
	"fmt"
	"math"

	"atr-trader/internal/types"
)

// Open order statuses that count toward the account snapshot. Kite reports
// the stop leg of a bracket as TRIGGER PENDING.
func isOpenOrderStatus(status string) bool {
	switch status {
	case "OPEN", "TRIGGER PENDING", "AMO REQ RECEIVED":
		return true
	}
	return false
}

// FetchAccountSnapshot assembles equity, position and open-order state from
// the margins, positions and orders endpoints.
func (z *Zerodha) FetchAccountSnapshot(ctx context.Context, symbol string) (types.AccountSnapshot, error) {
	if z.sim != nil {
		return z.sim.accountSnapshot(), nil
	}

	if err := z.limiter.Wait(ctx); err != nil {
		return types.AccountSnapshot{}, err
	}
	margins, err := z.kc.GetUserMargins()
	if err != nil {
		return types.AccountSnapshot{}, fmt.Errorf("margins: %w", err)
	}

	if err := z.limiter.Wait(ctx); err != nil {
		return types.AccountSnapshot{}, err
	}
	positions, err := z.kc.GetPositions()
	if err != nil {
		return types.AccountSnapshot{}, fmt.Errorf("positions: %w", err)
	}

	if err := z.limiter.Wait(ctx); err != nil {
		return types.AccountSnapshot{}, err
	}
	orders, err := z.kc.GetOrders()
	if err != nil {
		return types.AccountSnapshot{}, fmt.Errorf("orders: %w", err)
	}

	snap := types.AccountSnapshot{
		Equity:      margins.Equity.Net,
		BuyingPower: margins.Equity.Available.Cash,
	}

	for _, pos := range positions.Net {
		if pos.Tradingsymbol != symbol {
			continue
		}
		snap.Position = types.PositionDetails{
			Quantity:     pos.Quantity,
			CurrentValue: pos.Value,
			UnrealizedPL: pos.Unrealised,
		}
		break
	}

	for _, o := range orders {
		if o.TradingSymbol == symbol && isOpenOrderStatus(o.Status) {
			snap.OpenOrders++
		}
	}

	if snap.Equity > 0 {
		snap.ExposurePct = math.Abs(snap.Position.CurrentValue) / snap.Equity * 100
	}

	return snap, nil
}
