package zerodha

import (
	"context"
	"fmt"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	"golang.org/x/time/rate"

	"atr-trader/internal/interfaces"
	"atr-trader/internal/types"
)

// Kite allows 3 requests per second per app.
const apiRequestsPerSecond = 3

type Params struct {
	Mode        string // DRY_RUN or LIVE order placement
	DataSource  string // STATIC or LIVE market/account data
	APIKey      string
	AccessToken string
	Exchange    string
	Product     string // MIS or CNC
	Interval    string // historical candle interval, e.g. "5minute"
}

// Zerodha implements the Broker interface against the Kite Connect REST API.
// All outbound calls go through one rate limiter.
type Zerodha struct {
	p       Params
	kc      *kiteconnect.Client
	limiter *rate.Limiter

	mu     sync.Mutex
	tokens map[string]int // tradingsymbol -> instrument token

	sim *simulator
}

var _ interfaces.Broker = (*Zerodha)(nil)

func NewZerodha(p Params) *Zerodha {
	if p.Product == "" {
		p.Product = kiteconnect.ProductMIS
	}
	if p.Interval == "" {
		p.Interval = "5minute"
	}
	z := &Zerodha{
		p:       p,
		limiter: rate.NewLimiter(rate.Limit(apiRequestsPerSecond), apiRequestsPerSecond),
		tokens:  make(map[string]int),
	}
	if p.DataSource == "LIVE" || p.Mode == "LIVE" {
		z.kc = kiteconnect.New(p.APIKey)
		z.kc.SetAccessToken(p.AccessToken)
	}
	if p.DataSource == "STATIC" {
		z.sim = newSimulator()
	}
	return z
}

// FetchRecentBars returns the last n historical bars for the symbol.
func (z *Zerodha) FetchRecentBars(ctx context.Context, symbol string, n int) ([]types.Bar, error) {
	if z.sim != nil {
		return z.sim.recentBars(n), nil
	}

	if err := z.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	token, err := z.instrumentToken(ctx, symbol)
	if err != nil {
		return nil, err
	}

	// One bar per interval; over-fetch the window slightly so weekends and
	// session gaps do not starve the request.
	lookback := time.Duration(n*3) * intervalDuration(z.p.Interval)
	to := time.Now()
	from := to.Add(-lookback)

	data, err := z.kc.GetHistoricalData(token, z.p.Interval, from, to, false, false)
	if err != nil {
		return nil, fmt.Errorf("historical data for %s: %w", symbol, err)
	}

	bars := make([]types.Bar, 0, len(data))
	for _, d := range data {
		bars = append(bars, types.Bar{
			Ts:     d.Date.Unix(),
			Open:   d.Open,
			High:   d.High,
			Low:    d.Low,
			Close:  d.Close,
			Volume: int64(d.Volume),
		})
	}
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return bars, nil
}

// instrumentToken resolves and caches the instrument token for a symbol.
func (z *Zerodha) instrumentToken(ctx context.Context, symbol string) (int, error) {
	z.mu.Lock()
	if t, ok := z.tokens[symbol]; ok {
		z.mu.Unlock()
		return t, nil
	}
	z.mu.Unlock()

	if err := z.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	instruments, err := z.kc.GetInstrumentsByExchange(z.p.Exchange)
	if err != nil {
		return 0, fmt.Errorf("instrument dump: %w", err)
	}
	for _, inst := range instruments {
		if inst.Tradingsymbol == symbol {
			z.mu.Lock()
			z.tokens[symbol] = inst.InstrumentToken
			z.mu.Unlock()
			return inst.InstrumentToken, nil
		}
	}
	return 0, fmt.Errorf("symbol %s not found on %s", symbol, z.p.Exchange)
}

func intervalDuration(interval string) time.Duration {
	switch interval {
	case "minute":
		return time.Minute
	case "3minute":
		return 3 * time.Minute
	case "5minute":
		return 5 * time.Minute
	case "10minute":
		return 10 * time.Minute
	case "15minute":
		return 15 * time.Minute
	case "30minute":
		return 30 * time.Minute
	case "60minute":
		return time.Hour
	case "day":
		return 24 * time.Hour
	default:
		return 5 * time.Minute
	}
}
