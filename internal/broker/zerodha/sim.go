package zerodha

import (
	"math/rand"
	"sync"
	"time"

	"atr-trader/internal/types"
)

// simulator backs the STATIC data source: a random-walk bar series and a
// fixed paper account, enough to exercise the full decision pipeline without
// network access.
type simulator struct {
	mu    sync.Mutex
	price float64
	rng   *rand.Rand
}

func newSimulator() *simulator {
	return &simulator{
		price: 1000,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *simulator) recentBars(n int) []types.Bar {
	s.mu.Lock()
	defer s.mu.Unlock()

	bars := make([]types.Bar, 0, n)
	now := time.Now().Unix()
	price := s.price
	for i := n; i > 0; i-- {
		open := price
		price += (s.rng.Float64() - 0.5) * 6
		if price < 1 {
			price = 1
		}
		high := open
		if price > high {
			high = price
		}
		high += s.rng.Float64() * 2
		low := open
		if price < low {
			low = price
		}
		low -= s.rng.Float64() * 2
		bars = append(bars, types.Bar{
			Ts:     now - int64(i*60),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 500 + int64(s.rng.Intn(1500)),
		})
	}
	s.price = price
	return bars
}

func (s *simulator) accountSnapshot() types.AccountSnapshot {
	return types.AccountSnapshot{
		Equity:      1_000_000,
		BuyingPower: 1_000_000,
	}
}
