package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"atr-trader/internal/broker/brokerobs"
	"atr-trader/internal/broker/zerodha"
	"atr-trader/internal/connectivity"
	"atr-trader/internal/engine"
	"atr-trader/internal/engine/engineobs"
	"atr-trader/internal/interfaces"
	"atr-trader/internal/logger"
	"atr-trader/internal/risk"
	"atr-trader/internal/sizing"
	"atr-trader/internal/snapshot"
	"atr-trader/internal/store"
	"atr-trader/internal/tradelog"
)

// newConnectivityManager builds the shared backoff policy from config.
func newConnectivityManager(cfg *store.Config) (*connectivity.Manager, error) {
	return connectivity.NewManager(connectivity.Config{
		DegradedThreshold:     cfg.Connectivity.DegradedThreshold,
		DisconnectedThreshold: cfg.Connectivity.DisconnectedThreshold,
		BackoffMultiplier:     cfg.Connectivity.BackoffMultiplier,
		MaxRetryDelaySeconds:  cfg.Connectivity.MaxRetryDelaySeconds,
	})
}

// initializeBroker builds the Kite adapter and wraps it with the
// observability middleware that reports every call to the connectivity
// manager.
func initializeBroker(ctx context.Context, cfg *store.Config, conn *connectivity.Manager) interfaces.Broker {
	brk := zerodha.NewZerodha(zerodha.Params{
		Mode:        cfg.Mode,
		DataSource:  cfg.DataSource,
		APIKey:      os.Getenv("KITE_API_KEY"),
		AccessToken: os.Getenv("KITE_ACCESS_TOKEN"),
		Exchange:    cfg.Exchange,
	})

	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	}
	if cfg.DataSource == "LIVE" {
		logger.Info(ctx, "Using LIVE data from Zerodha")
	} else {
		logger.Info(ctx, "Using STATIC simulated data for testing")
	}

	return brokerobs.Wrap(brk, conn)
}

// initializeEngine builds the decision engine with observability middleware.
func initializeEngine(cfg *store.Config, brk interfaces.Broker, cal interfaces.Calendar, state *snapshot.State, journal *tradelog.Journal) interfaces.Engine {
	eng := engine.New(engine.Config{
		Symbol: cfg.Symbol,
		Signal: engine.SignalConfig{
			AllowEqualClose:   cfg.Signal.AllowEqualClose,
			RequireHigherHigh: cfg.Signal.RequireHigherHigh,
			RequireHigherLow:  cfg.Signal.RequireHigherLow,
		},
		Exits: engine.ExitConfig{
			RRRatio:        cfg.Exits.RRRatio,
			PriceBufferPct: cfg.Exits.PriceBufferPct,
			MinPriceBuffer: cfg.Exits.MinPriceBuffer,
			MaxPriceBuffer: cfg.Exits.MaxPriceBuffer,
		},
		Gate: risk.GateConfig{
			DailyMaxLoss:      cfg.Risk.DailyMaxLoss,
			DailyProfitTarget: cfg.Risk.DailyProfitTarget,
			MaxExposurePct:    cfg.Risk.MaxExposurePct,
		},
		Sizing: sizing.Config{
			RiskPerTrade:           cfg.Risk.PerTradeRisk,
			MaxExposurePct:         cfg.Risk.MaxExposurePct,
			MaxValuePerTrade:       cfg.Sizing.MaxValuePerTrade,
			BuyingPowerUsageFactor: cfg.Sizing.BuyingPowerUsage,
			AllowMultiplePositions: cfg.Sizing.AllowMultiplePositions,
			ScaleInMultiplier:      cfg.Sizing.ScaleInMultiplier,
		},
		CloseOnReverse:   cfg.Sizing.CloseOnReverse,
		AvgATRMultiplier: cfg.Indicators.AvgATRMultiplier,
		DecisionWait:     time.Duration(cfg.Poll.DecisionWaitMS) * time.Millisecond,
	}, brk, cal, state, journal)

	return engineobs.Wrap(eng)
}

// compressOldLogs gzips old journal files when retention is configured.
func compressOldLogs(ctx context.Context, journal *tradelog.Journal) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := journal.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}
