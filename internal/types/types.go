package types

// Bar is a single OHLCV bar. Immutable once fetched.
type Bar struct {
	Ts     int64
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// MarketSnapshot is the indicator view published by the market data producer.
// It is owned by the producer until published; readers always work on copies.
type MarketSnapshot struct {
	ATR    float64
	AvgATR float64
	AvgVol float64
	Curr   Bar
	Prev   Bar
}

// PositionDetails describes the open position for the traded symbol.
// Quantity is signed: positive long, negative short, zero flat.
type PositionDetails struct {
	Quantity     int
	CurrentValue float64
	UnrealizedPL float64
}

// AccountSnapshot is the account view published by the account data producer.
type AccountSnapshot struct {
	Equity      float64
	Position    PositionDetails
	OpenOrders  int
	ExposurePct float64
	BuyingPower float64
}

// TradeGateResult is the outcome of one risk-gate evaluation. All three checks
// are always computed; Allowed is their conjunction.
type TradeGateResult struct {
	DailyPnL   float64
	HoursOK    bool
	PnLOK      bool
	ExposureOK bool
	Allowed    bool
}

// PositionSizing is the outcome of one sizing computation. The four component
// quantities are kept for observability only; Quantity is their minimum.
type PositionSizing struct {
	Quantity       int
	RiskAmount     float64
	SizeMultiplier float64
	RiskBasedQty   int
	ExposureQty    int
	MaxValueQty    int
	BuyingPowerQty int
}

// Side of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// BracketOrderReq is an entry order paired with automatic exit legs.
type BracketOrderReq struct {
	Symbol     string
	Side       Side
	Qty        int
	EntryPrice float64
	TakeProfit float64
	StopLoss   float64
	Tag        string
}

// OrderResp is the broker acknowledgement for a placed order.
type OrderResp struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}
