// Package watcher runs the periodic poll-evaluate-notify loop.
package watcher

import (
	"context"
	"time"

	"github.com/raykavin/tokensentry/core"
	"github.com/raykavin/tokensentry/pkg/logger"
)

const defaultInterval = 10 * time.Second

// Watcher polls the price feed on a fixed cadence, recomputes every
// account's USD balance and hands threshold crossings to the notifier.
// The pause starts after a tick completes, so a slow tick delays the
// next one and no two ticks ever overlap.
type Watcher struct {
	feeder   core.PriceFeeder
	store    core.AccountStorage
	notifier core.Notifier
	log      logger.Logger
	interval time.Duration
	shared   bool
}

// Option is a function that configures a Watcher instance
type Option func(*Watcher)

// WithInterval overrides the default 10s pause between ticks.
func WithInterval(interval time.Duration) Option {
	return func(w *Watcher) {
		w.interval = interval
	}
}

// WithSharedBaseline switches the watcher to the legacy mode where a
// single previous-balance scalar is shared by the whole account
// population. Each account's freshly computed balance overwrites the
// value seen by the next account in the same tick. Kept only for
// behavioral parity with the original bot; the per-account default is
// the correct behavior.
func WithSharedBaseline() Option {
	return func(w *Watcher) {
		w.shared = true
	}
}

// NewWatcher creates a watcher with the given collaborators.
func NewWatcher(feeder core.PriceFeeder, store core.AccountStorage, notifier core.Notifier, log logger.Logger, options ...Option) *Watcher {
	watcher := &Watcher{
		feeder:   feeder,
		store:    store,
		notifier: notifier,
		log:      log,
		interval: defaultInterval,
	}

	for _, option := range options {
		option(watcher)
	}

	return watcher
}

// Run executes ticks until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	w.log.Infof("watcher started: feed=%s interval=%s", w.feeder.Name(), w.interval)

	for {
		w.Tick(ctx)

		select {
		case <-ctx.Done():
			w.log.Info("watcher stopped")
			return
		case <-time.After(w.interval):
		}
	}
}

// Tick runs one poll-evaluate-notify pass. A failed price fetch skips
// the pass entirely: no baseline is touched and nothing is sent.
func (w *Watcher) Tick(ctx context.Context) {
	price, err := w.feeder.LastPrice(ctx)
	if err != nil {
		w.log.WithError(err).Error("price fetch failed, skipping tick")
		return
	}

	w.log.Infof("current price: %.6f USD", price.Value)

	accounts, err := w.store.Accounts()
	if err != nil {
		w.log.WithError(err).Error("failed to list accounts, skipping tick")
		return
	}

	thresholds, err := w.store.Thresholds()
	if err != nil {
		w.log.WithError(err).Error("failed to read thresholds, skipping tick")
		return
	}

	for _, account := range accounts {
		baseline, err := w.baseline(account)
		if err != nil {
			w.log.WithError(err).WithField("chat_id", account.ChatID).Error("failed to read baseline")
			continue
		}

		evaluation := EvaluateAccount(account, thresholds, price, baseline)
		for _, alert := range evaluation.Alerts {
			w.notifier.OnAlert(alert)
		}

		if err := w.writeBaseline(account.ChatID, evaluation.Balance); err != nil {
			w.log.WithError(err).WithField("chat_id", account.ChatID).Error("failed to store baseline")
		}

		w.log.Debugf("chat %d balance %.2f USD", account.ChatID, evaluation.Balance)
	}
}

func (w *Watcher) baseline(account core.Account) (float64, error) {
	if w.shared {
		return w.store.SharedBaseline()
	}
	return account.LastUSDBalance, nil
}

func (w *Watcher) writeBaseline(chatID int64, usd float64) error {
	if w.shared {
		return w.store.SetSharedBaseline(usd)
	}
	return w.store.SetBaseline(chatID, usd)
}
