package core

import "time"

// Account is one registered chat and its declared token holding.
// LastUSDBalance is the USD balance computed on the previous watcher
// tick. Zero means "no prior sample": a legitimately zero balance is
// indistinguishable from an uninitialized one.
type Account struct {
	ChatID         int64     `json:"chat_id"`
	Holding        float64   `json:"holding"`
	LastUSDBalance float64   `json:"last_usd_balance"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ThresholdKind identifies one of the three global alert thresholds.
type ThresholdKind string

const (
	ThresholdIncrease  ThresholdKind = "increase"
	ThresholdDecrease  ThresholdKind = "decrease"
	ThresholdSharpDrop ThresholdKind = "sharp_drop"
)

// ThresholdSet holds the alert thresholds shared by every account.
// Decrease and SharpDrop are always stored as non-positive values.
type ThresholdSet struct {
	Increase  float64 `json:"increase"`
	Decrease  float64 `json:"decrease"`
	SharpDrop float64 `json:"sharp_drop"`
}

// PriceSample is a single observation of the token price in USD.
type PriceSample struct {
	Value      float64
	ObservedAt time.Time
}

// AlertKind classifies a balance movement.
type AlertKind string

const (
	AlertIncrease  AlertKind = "increase"
	AlertDecrease  AlertKind = "decrease"
	AlertSharpDrop AlertKind = "sharp_drop"
)

// Alert is one threshold crossing detected for one account during a tick.
type Alert struct {
	Kind    AlertKind
	ChatID  int64
	Delta   float64
	Balance float64
}
