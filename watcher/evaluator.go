package watcher

import "github.com/raykavin/tokensentry/core"

// Evaluation is the outcome of one tick for one account.
type Evaluation struct {
	ChatID  int64
	Balance float64
	Alerts  []core.Alert
}

// EvaluateAccount computes an account's USD balance at the given price
// and classifies the delta against the thresholds. A zero baseline
// means no prior sample, so the first observed tick only seeds the
// baseline and never fires an alert.
//
// Increase and decrease are mutually exclusive. A sharp drop is an
// escalation and fires independently, so it can arrive together with
// the ordinary decrease alert.
func EvaluateAccount(account core.Account, thresholds core.ThresholdSet, price core.PriceSample, baseline float64) Evaluation {
	balance := account.Holding * price.Value
	evaluation := Evaluation{ChatID: account.ChatID, Balance: balance}

	if baseline == 0 {
		return evaluation
	}

	delta := balance - baseline
	if delta >= thresholds.Increase {
		evaluation.Alerts = append(evaluation.Alerts, core.Alert{
			Kind:    core.AlertIncrease,
			ChatID:  account.ChatID,
			Delta:   delta,
			Balance: balance,
		})
	} else if delta <= thresholds.Decrease {
		evaluation.Alerts = append(evaluation.Alerts, core.Alert{
			Kind:    core.AlertDecrease,
			ChatID:  account.ChatID,
			Delta:   delta,
			Balance: balance,
		})
	}

	if delta <= thresholds.SharpDrop {
		evaluation.Alerts = append(evaluation.Alerts, core.Alert{
			Kind:    core.AlertSharpDrop,
			ChatID:  account.ChatID,
			Delta:   delta,
			Balance: balance,
		})
	}

	return evaluation
}
