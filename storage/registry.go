// Package storage provides the BuntDB-backed account registry.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/raykavin/tokensentry/core"
	"github.com/samber/lo"
	"github.com/tidwall/buntdb"
)

const (
	accountPrefix     = "account:"
	thresholdsKey     = "thresholds"
	sharedBaselineKey = "baseline:shared"
)

// Registry implements core.AccountStorage on top of an in-memory BuntDB
// instance. BuntDB serializes its transactions, which makes the registry
// the single synchronization point between the watcher tick and the
// Telegram handlers. State is volatile on purpose: a process restart
// resets every account and brings the thresholds back to their defaults.
type Registry struct {
	db *buntdb.DB
}

// NewRegistry creates an in-memory registry seeded with the given
// threshold set. The decrease and sharp-drop values are normalized to
// non-positive magnitudes regardless of the sign they arrive with.
func NewRegistry(thresholds core.ThresholdSet) (*Registry, error) {
	db, err := buntdb.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	r := &Registry{db: db}

	thresholds.Decrease = -math.Abs(thresholds.Decrease)
	thresholds.SharpDrop = -math.Abs(thresholds.SharpDrop)
	if err := r.writeThresholds(thresholds); err != nil {
		db.Close()
		return nil, err
	}

	return r, nil
}

// Register ensures an account exists for the given chat, creating it
// with a zero holding on first contact.
func (r *Registry) Register(chatID int64) error {
	return r.db.Update(func(tx *buntdb.Tx) error {
		key := accountKey(chatID)
		if _, err := tx.Get(key); err == nil {
			return nil
		} else if !errors.Is(err, buntdb.ErrNotFound) {
			return fmt.Errorf("failed to read account: %w", err)
		}

		return putAccount(tx, core.Account{ChatID: chatID, UpdatedAt: time.Now()})
	})
}

// UpsertHolding sets the declared token holding for a chat, creating the
// account if it does not exist yet. The previous balance baseline is
// preserved.
func (r *Registry) UpsertHolding(chatID int64, holding float64) error {
	return r.db.Update(func(tx *buntdb.Tx) error {
		account, err := getAccount(tx, chatID)
		if err != nil {
			return err
		}

		account.Holding = holding
		account.UpdatedAt = time.Now()
		return putAccount(tx, account)
	})
}

// Holding returns the declared holding for a chat, zero if unknown.
func (r *Registry) Holding(chatID int64) (float64, error) {
	var holding float64
	err := r.db.View(func(tx *buntdb.Tx) error {
		account, err := getAccount(tx, chatID)
		if err != nil {
			return err
		}
		holding = account.Holding
		return nil
	})
	return holding, err
}

// Accounts returns every registered account that passes all filters.
// Iteration order is not defined.
func (r *Registry) Accounts(filters ...core.AccountFilter) ([]core.Account, error) {
	accounts := make([]core.Account, 0)

	err := r.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(accountPrefix+"*", func(key, value string) bool {
			var account core.Account
			if err := json.Unmarshal([]byte(value), &account); err != nil {
				return true // skip unreadable entries
			}
			accounts = append(accounts, account)
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	if len(filters) > 0 {
		accounts = lo.Filter(accounts, func(account core.Account, _ int) bool {
			for _, filter := range filters {
				if !filter(account) {
					return false
				}
			}
			return true
		})
	}

	return accounts, nil
}

// Thresholds returns the global threshold set.
func (r *Registry) Thresholds() (core.ThresholdSet, error) {
	var thresholds core.ThresholdSet
	err := r.db.View(func(tx *buntdb.Tx) error {
		value, err := tx.Get(thresholdsKey)
		if err != nil {
			return fmt.Errorf("failed to read thresholds: %w", err)
		}
		return json.Unmarshal([]byte(value), &thresholds)
	})
	return thresholds, err
}

// SetThreshold stores one threshold. The increase threshold is stored
// as given; decrease and sharp-drop are stored as the negated absolute
// value of the input, so they are non-positive no matter which sign the
// user typed.
func (r *Registry) SetThreshold(kind core.ThresholdKind, value float64) error {
	return r.db.Update(func(tx *buntdb.Tx) error {
		raw, err := tx.Get(thresholdsKey)
		if err != nil {
			return fmt.Errorf("failed to read thresholds: %w", err)
		}

		var thresholds core.ThresholdSet
		if err := json.Unmarshal([]byte(raw), &thresholds); err != nil {
			return fmt.Errorf("failed to decode thresholds: %w", err)
		}

		switch kind {
		case core.ThresholdIncrease:
			thresholds.Increase = value
		case core.ThresholdDecrease:
			thresholds.Decrease = -math.Abs(value)
		case core.ThresholdSharpDrop:
			thresholds.SharpDrop = -math.Abs(value)
		default:
			return fmt.Errorf("%w: %s", core.ErrUnknownThreshold, kind)
		}

		content, err := json.Marshal(thresholds)
		if err != nil {
			return fmt.Errorf("failed to marshal thresholds: %w", err)
		}

		_, _, err = tx.Set(thresholdsKey, string(content), nil)
		return err
	})
}

// Baseline returns the USD balance computed for the chat on the
// previous tick, zero when no tick has been observed yet.
func (r *Registry) Baseline(chatID int64) (float64, error) {
	var baseline float64
	err := r.db.View(func(tx *buntdb.Tx) error {
		account, err := getAccount(tx, chatID)
		if err != nil {
			return err
		}
		baseline = account.LastUSDBalance
		return nil
	})
	return baseline, err
}

// SetBaseline records the USD balance computed for the chat this tick.
func (r *Registry) SetBaseline(chatID int64, usd float64) error {
	return r.db.Update(func(tx *buntdb.Tx) error {
		account, err := getAccount(tx, chatID)
		if err != nil {
			return err
		}
		account.ChatID = chatID
		account.LastUSDBalance = usd
		return putAccount(tx, account)
	})
}

// SharedBaseline returns the single balance baseline shared by every
// account. Only consulted in legacy shared-baseline mode.
func (r *Registry) SharedBaseline() (float64, error) {
	var baseline float64
	err := r.db.View(func(tx *buntdb.Tx) error {
		value, err := tx.Get(sharedBaselineKey)
		if errors.Is(err, buntdb.ErrNotFound) {
			return nil
		} else if err != nil {
			return fmt.Errorf("failed to read shared baseline: %w", err)
		}

		baseline, err = strconv.ParseFloat(value, 64)
		return err
	})
	return baseline, err
}

// SetSharedBaseline overwrites the shared balance baseline.
func (r *Registry) SetSharedBaseline(usd float64) error {
	return r.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(sharedBaselineKey, strconv.FormatFloat(usd, 'f', -1, 64), nil)
		return err
	})
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Registry) writeThresholds(thresholds core.ThresholdSet) error {
	return r.db.Update(func(tx *buntdb.Tx) error {
		content, err := json.Marshal(thresholds)
		if err != nil {
			return fmt.Errorf("failed to marshal thresholds: %w", err)
		}
		_, _, err = tx.Set(thresholdsKey, string(content), nil)
		return err
	})
}

// getAccount reads an account inside a transaction, returning a zero
// account when the chat is unknown.
func getAccount(tx *buntdb.Tx, chatID int64) (core.Account, error) {
	value, err := tx.Get(accountKey(chatID))
	if errors.Is(err, buntdb.ErrNotFound) {
		return core.Account{ChatID: chatID}, nil
	} else if err != nil {
		return core.Account{}, fmt.Errorf("failed to read account: %w", err)
	}

	var account core.Account
	if err := json.Unmarshal([]byte(value), &account); err != nil {
		return core.Account{}, fmt.Errorf("failed to decode account: %w", err)
	}

	return account, nil
}

func putAccount(tx *buntdb.Tx, account core.Account) error {
	content, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	_, _, err = tx.Set(accountKey(account.ChatID), string(content), nil)
	if err != nil {
		return fmt.Errorf("failed to store account: %w", err)
	}

	return nil
}

func accountKey(chatID int64) string {
	return accountPrefix + strconv.FormatInt(chatID, 10)
}
