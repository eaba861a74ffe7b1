package core

import "context"

// PriceFeeder retrieves the current market price of the tracked token.
type PriceFeeder interface {
	Name() string
	LastPrice(ctx context.Context) (PriceSample, error)
}

// Notifier delivers threshold alerts to their recipients. A delivery
// failure for one recipient is handled inside the implementation and
// never stops processing of the remaining recipients.
type Notifier interface {
	OnAlert(alert Alert)
}

// NotifierWithStart is a notifier that owns a background receive loop.
type NotifierWithStart interface {
	Notifier
	Start()
}

// AccountStorage is the process-wide registry of accounts, the global
// threshold set and the per-account balance baselines. The price watcher
// and the Telegram handlers mutate it concurrently, so implementations
// must serialize every read and write.
type AccountStorage interface {
	Register(chatID int64) error
	UpsertHolding(chatID int64, holding float64) error
	Holding(chatID int64) (float64, error)
	Accounts(filters ...AccountFilter) ([]Account, error)

	Thresholds() (ThresholdSet, error)
	SetThreshold(kind ThresholdKind, value float64) error

	Baseline(chatID int64) (float64, error)
	SetBaseline(chatID int64, usd float64) error
	SharedBaseline() (float64, error)
	SetSharedBaseline(usd float64) error
}

// AccountFilter reports whether an account should be included in a listing.
type AccountFilter func(Account) bool
