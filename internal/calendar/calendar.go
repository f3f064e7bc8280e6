package calendar

import (
	"time"

	"atr-trader/internal/interfaces"
)

// NSE core session in IST.
const (
	sessionOpenHour   = 9
	sessionOpenMinute = 15
	sessionCloseHour  = 15
	sessionCloseMin   = 30
)

var ist = time.FixedZone("IST", 19800) // UTC+5:30

// Sessions implements the trading-hours predicates for the NSE cash session,
// with configurable pre-open and post-close buffers for the fetch window.
type Sessions struct {
	preOpen   time.Duration
	postClose time.Duration
	now       func() time.Time
}

var _ interfaces.Calendar = (*Sessions)(nil)

func New(preOpenMinutes, postCloseMinutes int) *Sessions {
	return &Sessions{
		preOpen:   time.Duration(preOpenMinutes) * time.Minute,
		postClose: time.Duration(postCloseMinutes) * time.Minute,
		now:       time.Now,
	}
}

// IsWithinTradingHours reports whether the core session is open right now.
func (s *Sessions) IsWithinTradingHours(symbol string) bool {
	n := s.now().In(ist)
	open, close := sessionBounds(n)
	return isWeekday(n) && !n.Before(open) && n.Before(close)
}

// IsWithinFetchWindow reports whether data fetching is allowed: the core
// session widened by the pre-open and post-close buffers.
func (s *Sessions) IsWithinFetchWindow() bool {
	n := s.now().In(ist)
	open, close := sessionBounds(n)
	return isWeekday(n) && !n.Before(open.Add(-s.preOpen)) && n.Before(close.Add(s.postClose))
}

func sessionBounds(n time.Time) (time.Time, time.Time) {
	open := time.Date(n.Year(), n.Month(), n.Day(), sessionOpenHour, sessionOpenMinute, 0, 0, ist)
	close := time.Date(n.Year(), n.Month(), n.Day(), sessionCloseHour, sessionCloseMin, 0, 0, ist)
	return open, close
}

func isWeekday(n time.Time) bool {
	return n.Weekday() != time.Saturday && n.Weekday() != time.Sunday
}
