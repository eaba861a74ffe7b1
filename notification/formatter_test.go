package notification

import (
	"testing"
	"time"

	"github.com/raykavin/tokensentry/core"
	"github.com/stretchr/testify/assert"
)

func TestFormatAlert_Increase(t *testing.T) {
	text := FormatAlert(core.Alert{Kind: core.AlertIncrease, Delta: 2, Balance: 102})

	assert.Contains(t, text, "🟢")
	assert.Contains(t, text, "increased by `2.00` USD")
	assert.Contains(t, text, "Current balance: `102.00` USD")
}

func TestFormatAlert_DecreaseShowsMagnitude(t *testing.T) {
	text := FormatAlert(core.Alert{Kind: core.AlertDecrease, Delta: -7, Balance: 95})

	assert.Contains(t, text, "🔴")
	assert.Contains(t, text, "decreased by `7.00` USD")
	assert.NotContains(t, text, "-7.00")
}

func TestFormatAlert_SharpDrop(t *testing.T) {
	text := FormatAlert(core.Alert{Kind: core.AlertSharpDrop, Delta: -12.5, Balance: 87.5})

	assert.Contains(t, text, "🚨 ATTENTION! SHARP DROP 🚨")
	assert.Contains(t, text, "Dropped by `12.50` USD")
	assert.Contains(t, text, "`87.50` USD")
}

func TestFormatWelcome(t *testing.T) {
	thresholds := core.ThresholdSet{Increase: 1, Decrease: -5, SharpDrop: -10}
	text := FormatWelcome("FPI", 100, thresholds, 10*time.Second)

	assert.Contains(t, text, "`100` *FPI*")
	assert.Contains(t, text, "*Increase threshold*: `1` *USD*")
	assert.Contains(t, text, "*Decrease threshold*: `5` *USD*")
	assert.Contains(t, text, "*Sharp drop threshold*: `10` *USD*")
	assert.Contains(t, text, "every *10* sec")
}

func TestFormatAccountList(t *testing.T) {
	accounts := []core.Account{
		{ChatID: 1, Holding: 100},
		{ChatID: 2, Holding: 2.5},
	}

	text := FormatAccountList(accounts, "FPI")
	assert.Contains(t, text, "user 1: 100 FPI")
	assert.Contains(t, text, "user 2: 2.5 FPI")
}

func TestFormatAccountList_Empty(t *testing.T) {
	assert.Equal(t, "No registered users.", FormatAccountList(nil, "FPI"))
}

func TestFormatHoldingUpdated(t *testing.T) {
	assert.Equal(t, "Balance updated: `150` FPI", FormatHoldingUpdated(150, "FPI"))
	assert.Equal(t, "Balance updated: `0.25` FPI", FormatHoldingUpdated(0.25, "FPI"))
}

func TestFormatThresholdUpdated_ShowsMagnitudes(t *testing.T) {
	assert.Equal(t, "Increase threshold updated: `2` USD",
		FormatThresholdUpdated(core.ThresholdIncrease, 2))
	assert.Equal(t, "Decrease threshold updated: `7` USD",
		FormatThresholdUpdated(core.ThresholdDecrease, -7))
	assert.Equal(t, "Sharp drop threshold updated: `12` USD",
		FormatThresholdUpdated(core.ThresholdSharpDrop, 12))
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "100", formatQuantity(100))
	assert.Equal(t, "1.5", formatQuantity(1.5))
	assert.Equal(t, "0", formatQuantity(0))
}
