package interfaces

// Calendar owns trading-session logic: whether the core session is open for
// trading and whether data fetching is allowed (session plus buffers).
type Calendar interface {
	IsWithinTradingHours(symbol string) bool
	IsWithinFetchWindow() bool
}
