package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/coffee-diary/internal/cli"
	"github.com/Veraticus/coffee-diary/internal/common"
	"github.com/Veraticus/coffee-diary/internal/config"
)

var (
	cfgFile  string
	version  = "dev"
	settings config.Settings
	rootCmd  = &cobra.Command{
		Use:   "diary",
		Short: "☕ Coffee diary from your payment exports",
		Long: `coffee-diary: reads Alipay CSV and WeChat Pay XLSX bill exports, picks out
every coffee purchase, and keeps a diary of where, when and how much.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/diary/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("backend", "sqlite", "storage backend (sqlite, bolt)")
	rootCmd.PersistentFlags().String("db", "", "database path (default: $HOME/.local/share/diary/diary.db)")
	rootCmd.PersistentFlags().String("vocabulary", "", "YAML file overriding the built-in keyword lists")

	// Bind flags to viper
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag(config.KeyStorageBackend, rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag(config.KeyStoragePath, rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag(config.KeyVocabulary, rootCmd.PersistentFlags().Lookup("vocabulary"))

	// Add commands
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(cafesCmd())
	rootCmd.AddCommand(receiptCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(confirmCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(rebuildCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		slog.Debug("Command failed", "error", err)
		fmt.Fprintln(os.Stderr, cli.FormatWarning(common.UserMessage(err)))
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	v := viper.GetViper()
	config.SetDefaults(v, time.Now())

	if err := config.Init(v, cfgFile); err != nil {
		return err
	}

	s, err := config.Load(v)
	if err != nil {
		return err
	}
	settings = s

	level, err := common.ParseLevel(settings.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	if err := common.SetupLogger(level, settings.LogFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	slog.Debug("Configuration loaded",
		"config_file", v.ConfigFileUsed(),
		"backend", settings.StorageBackend,
		"path", settings.StoragePath)

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "diary version %s\n", version)
		},
	}
}
