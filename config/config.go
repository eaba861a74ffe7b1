// Package config handles application configuration management using Viper
package config

import (
	"errors"
	"fmt"

	"github.com/raykavin/tokensentry/core"
	"github.com/spf13/viper"
	str2duration "github.com/xhit/go-str2duration/v2"
)

// Compiled-in defaults. Nothing is persisted between runs, so a restart
// always comes back to these thresholds.
const (
	DefaultFeedURL   = "https://api.dexscreener.com/latest/dex/pairs/ton/eqayrrajgsuyhrggo1himnbgv9tvlndz3uoclaoytw_fgegd"
	DefaultSymbol    = "FPI"
	DefaultInterval  = "10s"
	DefaultIncrease  = 1.0
	DefaultDecrease  = -5.0
	DefaultSharpDrop = -10.0
)

// Load reads settings from environment variables and, when path is not
// empty, from a config file. Viper keys are case-insensitive, so a yaml
// key `telegram_token` and the TELEGRAM_TOKEN environment variable feed
// the same setting; the environment wins.
func Load(path string) (*core.Settings, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("FEED_URL", DefaultFeedURL)
	v.SetDefault("FEED_INTERVAL", DefaultInterval)
	v.SetDefault("TOKEN_SYMBOL", DefaultSymbol)
	v.SetDefault("THRESHOLD_INCREASE", DefaultIncrease)
	v.SetDefault("THRESHOLD_DECREASE", DefaultDecrease)
	v.SetDefault("THRESHOLD_SHARP_DROP", DefaultSharpDrop)
	v.SetDefault("SHARED_BASELINE", false)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	interval, err := str2duration.ParseDuration(v.GetString("FEED_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid feed interval: %w", err)
	}

	settings := &core.Settings{
		Symbol:         v.GetString("TOKEN_SYMBOL"),
		SharedBaseline: v.GetBool("SHARED_BASELINE"),
		Thresholds: core.ThresholdSet{
			Increase:  v.GetFloat64("THRESHOLD_INCREASE"),
			Decrease:  v.GetFloat64("THRESHOLD_DECREASE"),
			SharpDrop: v.GetFloat64("THRESHOLD_SHARP_DROP"),
		},
		Telegram: core.TelegramSettings{
			Token:   v.GetString("TELEGRAM_TOKEN"),
			AdminID: v.GetInt64("TELEGRAM_ADMIN_ID"),
		},
	}
	settings.Feed.URL = v.GetString("FEED_URL")
	settings.Feed.Interval = interval

	if err := Validate(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Validate checks the settings a running bot cannot do without.
func Validate(settings *core.Settings) error {
	if settings.Telegram.Token == "" {
		return errors.New("telegram token is required")
	}
	if settings.Feed.URL == "" {
		return errors.New("feed url is required")
	}
	if settings.Feed.Interval <= 0 {
		return errors.New("feed interval must be positive")
	}
	return nil
}
