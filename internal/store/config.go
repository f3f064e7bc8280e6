package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode       string `yaml:"mode"`
	DataSource string `yaml:"data_source"`
	Symbol     string `yaml:"symbol"`
	Exchange   string `yaml:"exchange"`

	Poll struct {
		MarketSeconds  int `yaml:"market_seconds"`
		AccountSeconds int `yaml:"account_seconds"`
		GateSeconds    int `yaml:"gate_seconds"`
		DecisionWaitMS int `yaml:"decision_wait_ms"`
		HaltSeconds    int `yaml:"halt_seconds"`
		SleepSeconds   int `yaml:"sleep_seconds"`
	} `yaml:"poll"`

	Risk struct {
		PerTradeRisk      float64 `yaml:"per_trade_risk"`
		DailyMaxLoss      float64 `yaml:"daily_max_loss"`
		DailyProfitTarget float64 `yaml:"daily_profit_target"`
		MaxExposurePct    float64 `yaml:"max_exposure_pct"`
	} `yaml:"risk"`

	Sizing struct {
		AllowMultiplePositions bool    `yaml:"allow_multiple_positions"`
		ScaleInMultiplier      float64 `yaml:"scale_in_multiplier"`
		CloseOnReverse         bool    `yaml:"close_on_reverse"`
		MaxValuePerTrade       float64 `yaml:"max_value_per_trade"`
		BuyingPowerUsage       float64 `yaml:"buying_power_usage_factor"`
	} `yaml:"sizing"`

	Signal struct {
		AllowEqualClose   bool `yaml:"allow_equal_close"`
		RequireHigherHigh bool `yaml:"require_higher_high"`
		RequireHigherLow  bool `yaml:"require_higher_low"`
	} `yaml:"signal"`

	Indicators struct {
		ATRPeriod        int     `yaml:"atr_period"`
		AvgATRPeriod     int     `yaml:"avg_atr_period"`
		AvgVolPeriod     int     `yaml:"avg_vol_period"`
		AvgATRMultiplier float64 `yaml:"avg_atr_multiplier"`
	} `yaml:"indicators"`

	Exits struct {
		RRRatio        float64 `yaml:"rr_ratio"`
		PriceBufferPct float64 `yaml:"price_buffer_pct"`
		MinPriceBuffer float64 `yaml:"min_price_buffer"`
		MaxPriceBuffer float64 `yaml:"max_price_buffer"`
	} `yaml:"exits"`

	Connectivity struct {
		DegradedThreshold     int     `yaml:"degraded_threshold"`
		DisconnectedThreshold int     `yaml:"disconnected_threshold"`
		BackoffMultiplier     float64 `yaml:"backoff_multiplier"`
		MaxRetryDelaySeconds  int     `yaml:"max_retry_delay_seconds"`
	} `yaml:"connectivity"`

	Session struct {
		PreOpenMinutes   int `yaml:"pre_open_minutes"`
		PostCloseMinutes int `yaml:"post_close_minutes"`
	} `yaml:"session"`
}

// Validate rejects missing or out-of-range required values. A config that does
// not pass must abort process startup; nothing here is silently defaulted.
func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.DataSource != "STATIC" && c.DataSource != "LIVE" {
		return fmt.Errorf("invalid data_source '%s': must be 'STATIC' or 'LIVE'", c.DataSource)
	}
	if c.Symbol == "" {
		return errors.New("symbol cannot be empty")
	}
	if c.Risk.PerTradeRisk <= 0 || c.Risk.PerTradeRisk > 1 {
		return fmt.Errorf("risk.per_trade_risk must be in (0,1], got %v", c.Risk.PerTradeRisk)
	}
	if c.Risk.DailyMaxLoss >= 0 {
		return fmt.Errorf("risk.daily_max_loss must be negative, got %v", c.Risk.DailyMaxLoss)
	}
	if c.Risk.DailyProfitTarget <= 0 {
		return fmt.Errorf("risk.daily_profit_target must be positive, got %v", c.Risk.DailyProfitTarget)
	}
	if c.Risk.MaxExposurePct <= 0 || c.Risk.MaxExposurePct > 100 {
		return fmt.Errorf("risk.max_exposure_pct must be in (0,100], got %v", c.Risk.MaxExposurePct)
	}
	if c.Sizing.ScaleInMultiplier <= 0 || c.Sizing.ScaleInMultiplier > 1 {
		return fmt.Errorf("sizing.scale_in_multiplier must be in (0,1], got %v", c.Sizing.ScaleInMultiplier)
	}
	if c.Sizing.MaxValuePerTrade < 0 {
		return fmt.Errorf("sizing.max_value_per_trade must be >= 0, got %v", c.Sizing.MaxValuePerTrade)
	}
	if c.Sizing.BuyingPowerUsage <= 0 || c.Sizing.BuyingPowerUsage > 1 {
		return fmt.Errorf("sizing.buying_power_usage_factor must be in (0,1], got %v", c.Sizing.BuyingPowerUsage)
	}
	if c.Indicators.ATRPeriod < 2 {
		return fmt.Errorf("indicators.atr_period must be >= 2, got %d", c.Indicators.ATRPeriod)
	}
	if c.Indicators.AvgATRPeriod <= c.Indicators.ATRPeriod {
		return fmt.Errorf("indicators.avg_atr_period must exceed atr_period, got %d", c.Indicators.AvgATRPeriod)
	}
	if c.Indicators.AvgVolPeriod < 2 {
		return fmt.Errorf("indicators.avg_vol_period must be >= 2, got %d", c.Indicators.AvgVolPeriod)
	}
	if c.Indicators.AvgATRMultiplier <= 0 {
		return fmt.Errorf("indicators.avg_atr_multiplier must be positive, got %v", c.Indicators.AvgATRMultiplier)
	}
	if c.Exits.RRRatio <= 0 {
		return fmt.Errorf("exits.rr_ratio must be positive, got %v", c.Exits.RRRatio)
	}
	if c.Exits.PriceBufferPct < 0 {
		return fmt.Errorf("exits.price_buffer_pct must be >= 0, got %v", c.Exits.PriceBufferPct)
	}
	if c.Exits.MinPriceBuffer < 0 || c.Exits.MaxPriceBuffer < c.Exits.MinPriceBuffer {
		return fmt.Errorf("exits price buffer bounds invalid: min=%v max=%v", c.Exits.MinPriceBuffer, c.Exits.MaxPriceBuffer)
	}
	if c.Connectivity.DegradedThreshold <= 0 {
		return fmt.Errorf("connectivity.degraded_threshold must be positive, got %d", c.Connectivity.DegradedThreshold)
	}
	if c.Connectivity.DisconnectedThreshold <= c.Connectivity.DegradedThreshold {
		return fmt.Errorf("connectivity.disconnected_threshold must exceed degraded_threshold, got %d", c.Connectivity.DisconnectedThreshold)
	}
	if c.Connectivity.BackoffMultiplier <= 1.0 {
		return fmt.Errorf("connectivity.backoff_multiplier must be > 1.0, got %v", c.Connectivity.BackoffMultiplier)
	}
	if c.Connectivity.MaxRetryDelaySeconds < 1 {
		return fmt.Errorf("connectivity.max_retry_delay_seconds must be >= 1, got %d", c.Connectivity.MaxRetryDelaySeconds)
	}
	if c.Poll.MarketSeconds <= 0 || c.Poll.AccountSeconds <= 0 || c.Poll.GateSeconds <= 0 {
		return errors.New("poll intervals must all be positive")
	}
	if c.Poll.DecisionWaitMS <= 0 || c.Poll.HaltSeconds <= 0 || c.Poll.SleepSeconds <= 0 {
		return errors.New("poll.decision_wait_ms, poll.halt_seconds and poll.sleep_seconds must be positive")
	}
	if c.Session.PreOpenMinutes < 0 || c.Session.PostCloseMinutes < 0 {
		return errors.New("session buffers cannot be negative")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}
