package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"atr-trader/internal/accountdata"
	"atr-trader/internal/calendar"
	"atr-trader/internal/engine"
	"atr-trader/internal/eod"
	"atr-trader/internal/gate"
	"atr-trader/internal/logger"
	"atr-trader/internal/marketdata"
	"atr-trader/internal/snapshot"
	"atr-trader/internal/store"
	"atr-trader/internal/trace"
	"atr-trader/internal/tradelog"
)

func main() {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	ctx := context.Background()

	cfgPath := os.Getenv("TRADER_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := store.LoadConfig(cfgPath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", cfgPath)
		os.Exit(1)
	}

	journal := tradelog.New("", 256)
	compressOldLogs(ctx, journal)

	conn, err := newConnectivityManager(cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Invalid connectivity configuration", err)
		os.Exit(1)
	}

	state := snapshot.New()
	cal := calendar.New(cfg.Session.PreOpenMinutes, cfg.Session.PostCloseMinutes)
	brk := initializeBroker(ctx, cfg, conn)
	gateCtrl := gate.NewController(cal, conn, state, cfg.Symbol,
		time.Duration(cfg.Poll.GateSeconds)*time.Second)
	eng := initializeEngine(cfg, brk, cal, state, journal)

	marketProducer := marketdata.NewProducer(brk, gateCtrl, conn, state, marketdata.Config{
		Symbol:       cfg.Symbol,
		ATRPeriod:    cfg.Indicators.ATRPeriod,
		AvgATRPeriod: cfg.Indicators.AvgATRPeriod,
		AvgVolPeriod: cfg.Indicators.AvgVolPeriod,
		PollInterval: time.Duration(cfg.Poll.MarketSeconds) * time.Second,
	})
	accountProducer := accountdata.NewProducer(brk, gateCtrl, conn, state, cfg.Symbol,
		time.Duration(cfg.Poll.AccountSeconds)*time.Second)
	loop := engine.NewLoop(eng, state,
		time.Duration(cfg.Poll.HaltSeconds)*time.Second,
		time.Duration(cfg.Poll.SleepSeconds)*time.Second)

	var wg sync.WaitGroup
	wg.Add(4)
	go gateCtrl.Run(ctx, &wg)
	go marketProducer.Run(ctx, &wg)
	go accountProducer.Run(ctx, &wg)
	go loop.Run(ctx, &wg)

	logger.Info(ctx, "Trader started",
		"symbol", cfg.Symbol,
		"mode", cfg.Mode,
		"data_source", cfg.DataSource,
	)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	logger.Info(ctx, "Shutting down...")
	state.Close()
	wg.Wait()

	if p, err := eod.SummarizeToday(); err == nil && p != "" {
		logger.Info(ctx, "EOD summary written", "path", p)
	}
	journal.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := trace.Shutdown(shutdownCtx); err != nil {
		logger.Warn(ctx, "Tracer shutdown failed", "error", err)
	}
}
