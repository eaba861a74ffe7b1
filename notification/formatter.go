package notification

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/raykavin/tokensentry/core"
)

// formatQuantity renders a value without a trailing ".0" when it is a
// whole number, matching how users typed it in.
func formatQuantity(value float64) string {
	if value == math.Trunc(value) {
		return strconv.FormatFloat(value, 'f', 0, 64)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// FormatAlert renders the user-facing text for a threshold alert.
// Decrease and sharp-drop deltas are shown as magnitudes.
func FormatAlert(alert core.Alert) string {
	switch alert.Kind {
	case core.AlertIncrease:
		return fmt.Sprintf("🟢 Your balance increased by `%.2f` USD!\n\n💰 Current balance: `%.2f` USD",
			alert.Delta, alert.Balance)
	case core.AlertDecrease:
		return fmt.Sprintf("🔴 Your balance decreased by `%.2f` USD!\n\n💰 Current balance: `%.2f` USD",
			math.Abs(alert.Delta), alert.Balance)
	case core.AlertSharpDrop:
		return fmt.Sprintf("🚨 ATTENTION! SHARP DROP 🚨\n\n🆘 Dropped by `%.2f` USD!\n\n💰 Current balance: `%.2f` USD",
			math.Abs(alert.Delta), alert.Balance)
	}
	return ""
}

// FormatWelcome renders the /start reply: current holding, the three
// thresholds and the refresh cadence.
func FormatWelcome(symbol string, holding float64, thresholds core.ThresholdSet, interval time.Duration) string {
	var b strings.Builder

	b.WriteString("The bot notifies you when your balance increases or drops\n\n")
	fmt.Fprintf(&b, "🪙 *Your balance (tokens)*: `%s` *%s*\n\n", formatQuantity(holding), symbol)
	fmt.Fprintf(&b, "📈 *Increase threshold*: `%s` *USD*\n\n", formatQuantity(thresholds.Increase))
	fmt.Fprintf(&b, "📉 *Decrease threshold*: `%s` *USD*\n\n", formatQuantity(math.Abs(thresholds.Decrease)))
	fmt.Fprintf(&b, "🚨 *Sharp drop threshold*: `%s` *USD*\n\n", formatQuantity(math.Abs(thresholds.SharpDrop)))
	fmt.Fprintf(&b, "♻️ The rate refreshes every *%.0f* sec\n\n_rate data comes from dexscreener_", interval.Seconds())

	return b.String()
}

// FormatAccountList renders the admin /list reply.
func FormatAccountList(accounts []core.Account, symbol string) string {
	if len(accounts) == 0 {
		return "No registered users."
	}

	var b strings.Builder
	b.WriteString("Registered users and holdings:\n")
	for _, account := range accounts {
		fmt.Fprintf(&b, "user %d: %s %s\n", account.ChatID, formatQuantity(account.Holding), symbol)
	}

	return b.String()
}

// FormatHoldingUpdated confirms a holding change.
func FormatHoldingUpdated(holding float64, symbol string) string {
	return fmt.Sprintf("Balance updated: `%s` %s", formatQuantity(holding), symbol)
}

// FormatThresholdUpdated confirms a threshold change, echoing the
// stored magnitude.
func FormatThresholdUpdated(kind core.ThresholdKind, value float64) string {
	switch kind {
	case core.ThresholdIncrease:
		return fmt.Sprintf("Increase threshold updated: `%s` USD", formatQuantity(value))
	case core.ThresholdDecrease:
		return fmt.Sprintf("Decrease threshold updated: `%s` USD", formatQuantity(math.Abs(value)))
	case core.ThresholdSharpDrop:
		return fmt.Sprintf("Sharp drop threshold updated: `%s` USD", formatQuantity(math.Abs(value)))
	}
	return ""
}

const invalidNumberMessage = "Please enter a valid number."
