// Package bot wires the registry, price feed, watcher and Telegram
// transport into a runnable instance.
package bot

import (
	"context"
	"fmt"
	"io"

	"github.com/raykavin/tokensentry/core"
	"github.com/raykavin/tokensentry/exchange"
	"github.com/raykavin/tokensentry/notification"
	"github.com/raykavin/tokensentry/pkg/logger"
	"github.com/raykavin/tokensentry/storage"
	"github.com/raykavin/tokensentry/watcher"
)

// Bot is the composed application.
type Bot struct {
	settings *core.Settings
	store    core.AccountStorage
	feeder   core.PriceFeeder
	telegram core.NotifierWithStart
	watcher  *watcher.Watcher
	log      logger.Logger
}

// Option is a functional option for configuring a Bot instance
type Option func(*Bot)

// WithStorage replaces the default in-memory registry.
func WithStorage(store core.AccountStorage) Option {
	return func(bot *Bot) {
		bot.store = store
	}
}

// WithPriceFeeder replaces the default dexscreener feeder.
func WithPriceFeeder(feeder core.PriceFeeder) Option {
	return func(bot *Bot) {
		bot.feeder = feeder
	}
}

// NewBot creates a new Bot instance with the provided settings and dependencies
func NewBot(settings *core.Settings, log logger.Logger, options ...Option) (*Bot, error) {
	if err := validate(settings, log); err != nil {
		return nil, err
	}

	bot := &Bot{settings: settings, log: log}

	// Apply custom options if provided
	for _, option := range options {
		option(bot)
	}

	if bot.store == nil {
		store, err := storage.NewRegistry(settings.Thresholds)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize registry: %w", err)
		}
		bot.store = store
	}

	if bot.feeder == nil {
		bot.feeder = exchange.NewDexScreener(settings.Feed.URL)
	}

	telegram, err := notification.NewTelegram(bot.store, settings, log)
	if err != nil {
		return nil, err
	}
	bot.telegram = telegram

	watcherOptions := []watcher.Option{watcher.WithInterval(settings.Feed.Interval)}
	if settings.SharedBaseline {
		watcherOptions = append(watcherOptions, watcher.WithSharedBaseline())
	}
	bot.watcher = watcher.NewWatcher(bot.feeder, bot.store, telegram, log, watcherOptions...)

	return bot, nil
}

// validate checks if the provided settings and logger are valid
func validate(settings *core.Settings, log logger.Logger) error {
	if settings == nil {
		return fmt.Errorf("settings cannot be nil")
	}

	if log == nil {
		return fmt.Errorf("logger cannot be nil")
	}

	return nil
}

// Run starts the Telegram receive loop and blocks on the watcher until
// the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.telegram.Start()
	b.log.Infof("tokensentry running: symbol=%s feed=%s", b.settings.Symbol, b.feeder.Name())

	b.watcher.Run(ctx)

	if closer, ok := b.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to close registry: %w", err)
		}
	}

	return nil
}
