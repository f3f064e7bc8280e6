package engine

import (
	"context"
	"time"

	"atr-trader/internal/interfaces"
	"atr-trader/internal/logger"
	"atr-trader/internal/risk"
	"atr-trader/internal/sizing"
	"atr-trader/internal/snapshot"
	"atr-trader/internal/tradelog"
	"atr-trader/internal/types"
)

// Terminal states of one decision cycle.
const (
	StateWaiting      = "WAITING_FOR_DATA"
	StateHalted       = "HALTED"
	StateNoSignal     = "NO_SIGNAL"
	StateFiltered     = "FILTERED"
	StateNoOp         = "NO_OP"
	StateSkipSmallQty = "SKIP_SMALL_QTY"
	StateOrderFailed  = "ORDER_FAILED"
	StateExecuted     = "EXECUTED"
)

// Config is the decision engine's view of the configuration.
type Config struct {
	Symbol           string
	Signal           SignalConfig
	Exits            ExitConfig
	Gate             risk.GateConfig
	Sizing           sizing.Config
	CloseOnReverse   bool
	AvgATRMultiplier float64
	DecisionWait     time.Duration
}

type engineImpl struct {
	cfg   Config
	cal   interfaces.Calendar
	state *snapshot.State
	exec  *orderExecutor

	// Captured from the first observed account snapshot; the daily P/L
	// baseline for the rest of the process lifetime.
	initialEquity float64
	baselineSet   bool
}

var _ interfaces.Engine = (*engineImpl)(nil)

// New builds the decision engine. Everything it talks to is injected; the
// engine holds no package-level state.
func New(cfg Config, brk interfaces.Broker, cal interfaces.Calendar, state *snapshot.State, journal *tradelog.Journal) interfaces.Engine {
	return &engineImpl{
		cfg:   cfg,
		cal:   cal,
		state: state,
		exec:  newOrderExecutor(brk, journal),
	}
}

// Cycle runs one pass of the decision state machine:
// WaitForData -> Gate -> Signal -> Filters -> Size -> Execute.
// It consumes exactly one fresh market snapshot and reads the latest account
// snapshot; the caller owns inter-cycle sleeping.
func (e *engineImpl) Cycle(ctx context.Context) (*interfaces.CycleResult, error) {
	res := &interfaces.CycleResult{Symbol: e.cfg.Symbol}

	market, account, ok := e.state.AwaitFreshMarket(e.cfg.DecisionWait)
	if !ok {
		res.State = StateWaiting
		return res, nil
	}

	if !e.baselineSet {
		e.initialEquity = account.Equity
		e.baselineSet = true
		logger.Info(ctx, "Equity baseline captured", "symbol", e.cfg.Symbol, "initial_equity", e.initialEquity)
	}

	hoursOK := e.cal.IsWithinTradingHours(e.cfg.Symbol)
	gateRes := risk.EvaluateTradeGate(e.initialEquity, account.Equity, account.ExposurePct, hoursOK, e.cfg.Gate)
	res.Gate = gateRes

	if !gateRes.Allowed {
		// All three checks are computed above; only the operator message
		// short-circuits on the first failure.
		reason := firstFailingCheck(gateRes)
		logger.Risk(ctx, e.cfg.Symbol, "TRADING_HALTED",
			"check", reason,
			"daily_pnl", gateRes.DailyPnL,
			"exposure_pct", account.ExposurePct,
			"hours_ok", gateRes.HoursOK,
			"pnl_ok", gateRes.PnLOK,
			"exposure_ok", gateRes.ExposureOK,
		)
		res.State, res.Reason = StateHalted, reason
		e.journalDecision(res, market, account)
		return res, nil
	}

	side, hasSignal := detectSignal(market.Curr, market.Prev, e.cfg.Signal)
	if !hasSignal {
		res.State = StateNoSignal
		return res, nil
	}

	if pass, failed := passFilters(market, e.cfg.AvgATRMultiplier); !pass {
		logger.Debug(ctx, "Signal rejected by filter",
			"symbol", e.cfg.Symbol,
			"side", string(side),
			"filter", failed,
		)
		res.State, res.Reason = StateFiltered, failed
		return res, nil
	}

	posQty := account.Position.Quantity
	posValue := account.Position.CurrentValue
	if posQty != 0 {
		sameDirection := (posQty > 0 && side == types.SideBuy) || (posQty < 0 && side == types.SideSell)
		switch {
		case sameDirection && !e.cfg.Sizing.AllowMultiplePositions:
			logger.Info(ctx, "Signal in held direction ignored - scaling disabled",
				"symbol", e.cfg.Symbol, "side", string(side), "position_qty", posQty)
			res.State, res.Reason = StateNoOp, "already positioned"
			return res, nil
		case !sameDirection && e.cfg.CloseOnReverse:
			if _, err := e.exec.closePosition(ctx, e.cfg.Symbol, posQty, market.Curr.Close, "reverse signal"); err != nil {
				res.State, res.Reason = StateOrderFailed, err.Error()
				e.journalDecision(res, market, account)
				return res, nil
			}
			// Flat now; size the new entry as a fresh position.
			posQty, posValue = 0, 0
		case !sameDirection:
			logger.Info(ctx, "Reverse signal ignored - close_on_reverse disabled",
				"symbol", e.cfg.Symbol, "side", string(side), "position_qty", posQty)
			res.State, res.Reason = StateNoOp, "opposite position held"
			return res, nil
		}
	}

	siz := sizing.Calculate(sizing.Inputs{
		Equity:               account.Equity,
		CurrentPrice:         market.Curr.Close,
		RiskAmount:           market.ATR,
		CurrentPositionValue: posValue,
		CurrentQty:           posQty,
		BuyingPower:          account.BuyingPower,
	}, e.cfg.Sizing)
	res.Sizing = siz

	if siz.Quantity < 1 {
		// Not an error: every cap was honored and nothing remained.
		logger.Info(ctx, "Trade skipped - sized below one share",
			"symbol", e.cfg.Symbol,
			"side", string(side),
			"risk_based_qty", siz.RiskBasedQty,
			"exposure_qty", siz.ExposureQty,
		)
		res.State, res.Reason = StateSkipSmallQty, "quantity below 1"
		e.journalDecision(res, market, account)
		return res, nil
	}

	entry := market.Curr.Close
	takeProfit, stopLoss := computeExits(side, entry, siz.RiskAmount, e.cfg.Exits)

	resp, err := e.exec.placeBracket(ctx, types.BracketOrderReq{
		Symbol:     e.cfg.Symbol,
		Side:       side,
		Qty:        siz.Quantity,
		EntryPrice: entry,
		TakeProfit: takeProfit,
		StopLoss:   stopLoss,
		Tag:        "ATR",
	}, "bar signal")
	if err != nil {
		res.State, res.Reason = StateOrderFailed, err.Error()
		e.journalDecision(res, market, account)
		return res, nil
	}

	res.Orders = append(res.Orders, resp)
	res.State = StateExecuted
	e.journalDecision(res, market, account)
	return res, nil
}

func firstFailingCheck(g types.TradeGateResult) string {
	switch {
	case !g.HoursOK:
		return "trading_hours"
	case !g.PnLOK:
		return "daily_pnl"
	default:
		return "exposure"
	}
}

func (e *engineImpl) journalDecision(res *interfaces.CycleResult, market types.MarketSnapshot, account types.AccountSnapshot) {
	e.exec.journal.AppendDecision(tradelog.DecisionEntry{
		Symbol: res.Symbol,
		State:  res.State,
		Reason: res.Reason,
		Fields: map[string]any{
			"close":        market.Curr.Close,
			"atr":          market.ATR,
			"avg_atr":      market.AvgATR,
			"equity":       account.Equity,
			"exposure_pct": account.ExposurePct,
			"daily_pnl":    res.Gate.DailyPnL,
			"quantity":     res.Sizing.Quantity,
		},
	})
}
