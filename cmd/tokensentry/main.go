package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/raykavin/tokensentry/bot"
	"github.com/raykavin/tokensentry/config"
	"github.com/raykavin/tokensentry/pkg/logger/zerolog"
	"github.com/spf13/cobra"
)

const dateTimeLayout = "2006-01-02 15:04:05"

// Command line flags
var (
	configPath string
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "tokensentry",
		Short:   "Telegram bot that alerts on token balance movements",
		Version: "1.0.0",
		RunE:    run,
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (optional, environment variables win)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	log, err := zerolog.New(logLevel, dateTimeLayout, true)
	if err != nil {
		return err
	}

	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	instance, err := bot.NewBot(settings, log)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return instance.Run(ctx)
}
