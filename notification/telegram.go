// Package notification provides the Telegram transport for the bot.
package notification

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/raykavin/tokensentry/core"
	"github.com/raykavin/tokensentry/dialog"
	"github.com/raykavin/tokensentry/pkg/logger"
	tb "gopkg.in/tucnak/telebot.v2"
)

const pollingTimeout = 10 * time.Second

// Menu button prefixes. The full labels embed the current values, so
// inbound texts are routed by prefix.
const (
	btnHoldingPrefix   = "🪙 Set tokens"
	btnIncreasePrefix  = "📈 Increase threshold"
	btnDecreasePrefix  = "📉 Decrease threshold"
	btnSharpDropPrefix = "🚨 Sharp drop threshold"
)

// Client is the slice of the telebot API the transport uses.
// *tb.Bot satisfies it; tests substitute a recording stub.
type Client interface {
	Handle(endpoint interface{}, handler interface{})
	Send(to tb.Recipient, what interface{}, options ...interface{}) (*tb.Message, error)
	SetCommands(cmds []tb.Command) error
	Start()
}

// Telegram implements the core.NotifierWithStart interface. It owns the
// command surface (/start, /list, the four menu buttons and dialog
// replies) and delivers the watcher's alerts.
type Telegram struct {
	settings *core.Settings
	store    core.AccountStorage
	dialogs  *dialog.Manager
	client   Client
	log      logger.Logger
}

// Option is a function that configures a telegram instance
type Option func(telegram *Telegram)

// WithClient replaces the telebot client, used by tests.
func WithClient(client Client) Option {
	return func(telegram *Telegram) {
		telegram.client = client
	}
}

// NewTelegram creates and initializes a new Telegram service
func NewTelegram(store core.AccountStorage, settings *core.Settings, log logger.Logger, options ...Option) (*Telegram, error) {
	bot := &Telegram{
		settings: settings,
		store:    store,
		dialogs:  dialog.NewManager(),
		log:      log,
	}

	for _, option := range options {
		option(bot)
	}

	if bot.client == nil {
		client, err := tb.NewBot(tb.Settings{
			ParseMode: tb.ModeMarkdown,
			Token:     settings.Telegram.Token,
			Poller:    &tb.LongPoller{Timeout: pollingTimeout},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create telegram bot: %w", err)
		}
		bot.client = client
	}

	if err := setupCommands(bot.client); err != nil {
		return nil, fmt.Errorf("failed to set commands: %w", err)
	}

	registerHandlers(bot.client, bot)

	return bot, nil
}

// setupCommands configures available bot commands
func setupCommands(client Client) error {
	return client.SetCommands([]tb.Command{
		{Text: "/start", Description: "Show your balance and the alert thresholds"},
		{Text: "/list", Description: "List registered accounts (admin only)"},
	})
}

// registerHandlers registers all command handlers
func registerHandlers(client Client, bot *Telegram) {
	client.Handle("/start", bot.StartHandle)
	client.Handle("/list", bot.ListHandle)
	client.Handle(tb.OnText, bot.TextHandle)
}

// Start begins the Telegram receive loop.
func (t *Telegram) Start() {
	go t.client.Start()
}

// OnAlert delivers a threshold alert to its recipient. Send failures
// are logged and swallowed so the watcher keeps going with the
// remaining recipients.
func (t *Telegram) OnAlert(alert core.Alert) {
	t.sendMessage(&tb.Chat{ID: alert.ChatID}, FormatAlert(alert))
}

// Command handlers
// ---------------

// StartHandle registers the chat and replies with the current holding,
// thresholds and the menu keyboard.
func (t *Telegram) StartHandle(m *tb.Message) {
	chatID := m.Chat.ID
	if err := t.store.Register(chatID); err != nil {
		t.log.WithError(err).WithField("chat_id", chatID).Error("failed to register account")
		return
	}

	holding, err := t.store.Holding(chatID)
	if err != nil {
		t.log.WithError(err).WithField("chat_id", chatID).Error("failed to read holding")
		return
	}

	thresholds, err := t.store.Thresholds()
	if err != nil {
		t.log.WithError(err).Error("failed to read thresholds")
		return
	}

	welcome := FormatWelcome(t.settings.Symbol, holding, thresholds, t.settings.Feed.Interval)
	t.sendMessage(m.Chat, welcome, t.menuFor(chatID))
}

// ListHandle replies with every registered account. Restricted to the
// configured admin chat; anyone else gets no response at all, matching
// the original bot.
func (t *Telegram) ListHandle(m *tb.Message) {
	if m.Chat.ID != t.settings.Telegram.AdminID {
		t.log.WithField("chat_id", m.Chat.ID).Debug("ignoring /list from non-admin chat")
		return
	}

	accounts, err := t.store.Accounts()
	if err != nil {
		t.log.WithError(err).Error("failed to list accounts")
		return
	}

	t.sendMessage(m.Chat, FormatAccountList(accounts, t.settings.Symbol))
}

// TextHandle routes free text: menu selections open a dialog, anything
// else is fed to the dialog state machine of the chat.
func (t *Telegram) TextHandle(m *tb.Message) {
	text := strings.TrimSpace(m.Text)

	if state, ok := menuSelection(text); ok {
		if err := t.store.Register(m.Chat.ID); err != nil {
			t.log.WithError(err).WithField("chat_id", m.Chat.ID).Error("failed to register account")
			return
		}
		t.dialogs.Begin(m.Chat.ID, state)
		t.sendMessage(m.Chat, promptFor(state))
		return
	}

	outcome, handled := t.dialogs.Step(m.Chat.ID, text)
	if !handled {
		return
	}

	if outcome.Invalid {
		t.sendMessage(m.Chat, invalidNumberMessage)
		return
	}

	t.applyOutcome(m, outcome)
}

// menuSelection maps a button press to its dialog state.
func menuSelection(text string) (dialog.State, bool) {
	switch {
	case strings.HasPrefix(text, btnHoldingPrefix):
		return dialog.StateAwaitingHolding, true
	case strings.HasPrefix(text, btnIncreasePrefix):
		return dialog.StateAwaitingIncrease, true
	case strings.HasPrefix(text, btnDecreasePrefix):
		return dialog.StateAwaitingDecrease, true
	case strings.HasPrefix(text, btnSharpDropPrefix):
		return dialog.StateAwaitingSharpDrop, true
	}
	return dialog.StateIdle, false
}

// promptFor returns the numeric input prompt for a dialog state.
func promptFor(state dialog.State) string {
	switch state {
	case dialog.StateAwaitingHolding:
		return "Enter the token amount:"
	case dialog.StateAwaitingIncrease:
		return "Enter the balance increase threshold in USD:"
	case dialog.StateAwaitingDecrease:
		return "Enter the balance decrease threshold in USD:"
	case dialog.StateAwaitingSharpDrop:
		return "Enter the sharp drop threshold in USD:"
	}
	return ""
}

// applyOutcome applies a completed dialog to the registry and confirms
// the stored value, refreshing the keyboard labels.
func (t *Telegram) applyOutcome(m *tb.Message, outcome dialog.Outcome) {
	chatID := m.Chat.ID

	switch outcome.Mutation {
	case dialog.MutationSetHolding:
		if err := t.store.UpsertHolding(chatID, outcome.Value); err != nil {
			t.log.WithError(err).WithField("chat_id", chatID).Error("failed to store holding")
			return
		}
		t.sendMessage(m.Chat, FormatHoldingUpdated(outcome.Value, t.settings.Symbol), t.menuFor(chatID))

	case dialog.MutationSetIncrease:
		t.applyThreshold(m, core.ThresholdIncrease, outcome.Value)
	case dialog.MutationSetDecrease:
		t.applyThreshold(m, core.ThresholdDecrease, outcome.Value)
	case dialog.MutationSetSharpDrop:
		t.applyThreshold(m, core.ThresholdSharpDrop, outcome.Value)
	}
}

func (t *Telegram) applyThreshold(m *tb.Message, kind core.ThresholdKind, value float64) {
	if err := t.store.SetThreshold(kind, value); err != nil {
		t.log.WithError(err).WithField("kind", kind).Error("failed to store threshold")
		return
	}
	t.sendMessage(m.Chat, FormatThresholdUpdated(kind, value), t.menuFor(m.Chat.ID))
}

// menuFor rebuilds the reply keyboard with the chat's current holding
// and the global thresholds embedded in the button labels.
func (t *Telegram) menuFor(chatID int64) *tb.ReplyMarkup {
	menu := &tb.ReplyMarkup{ResizeReplyKeyboard: true}

	holding, err := t.store.Holding(chatID)
	if err != nil {
		t.log.WithError(err).WithField("chat_id", chatID).Error("failed to read holding for keyboard")
	}

	thresholds, err := t.store.Thresholds()
	if err != nil {
		t.log.WithError(err).Error("failed to read thresholds for keyboard")
	}

	menu.Reply(
		menu.Row(menu.Text(fmt.Sprintf("%s (%s %s)", btnHoldingPrefix, formatQuantity(holding), t.settings.Symbol))),
		menu.Row(menu.Text(fmt.Sprintf("%s: %s USD", btnIncreasePrefix, formatQuantity(thresholds.Increase)))),
		menu.Row(menu.Text(fmt.Sprintf("%s: %s USD", btnDecreasePrefix, formatQuantity(math.Abs(thresholds.Decrease))))),
		menu.Row(menu.Text(fmt.Sprintf("%s: %s USD", btnSharpDropPrefix, formatQuantity(math.Abs(thresholds.SharpDrop))))),
	)

	return menu
}

// sendMessage sends a message to a single recipient, logging failures.
func (t *Telegram) sendMessage(to tb.Recipient, text string, options ...any) {
	if _, err := t.client.Send(to, text, options...); err != nil {
		t.log.WithError(err).WithField("recipient", to.Recipient()).Error("failed to send message")
	}
}
