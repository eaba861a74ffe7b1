package core

import "time"

// Settings represents the main configuration for the application
type Settings struct {
	Symbol         string           // Token symbol shown in user-facing messages
	SharedBaseline bool             // Use the legacy single shared balance baseline
	Thresholds     ThresholdSet     // Initial alert thresholds
	Telegram       TelegramSettings // Telegram transport settings
	Feed           FeedSettings     // Price feed settings
}

// TelegramSettings holds configuration for the Telegram transport
type TelegramSettings struct {
	Token   string // Telegram bot token
	AdminID int64  // The only chat allowed to call /list
}

// FeedSettings holds configuration for the price feed
type FeedSettings struct {
	URL      string        // Pair endpoint queried every tick
	Interval time.Duration // Pause between watcher ticks
}
