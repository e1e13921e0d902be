package main

import (
	"fmt"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/coffee-diary/internal/cli"
	"github.com/Veraticus/coffee-diary/internal/common"
	"github.com/Veraticus/coffee-diary/internal/config"
	"github.com/Veraticus/coffee-diary/internal/importer"
	"github.com/Veraticus/coffee-diary/internal/model"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files or directories...]",
		Short: "Import Alipay CSV and WeChat Pay XLSX exports",
		Long: `Import bill exports and rebuild the coffee diary.

Alipay exports (.csv, GBK or UTF-8) and WeChat Pay exports (.xlsx) are
recognised by extension. Only outgoing payments from the configured year
are kept. Transactions already imported are deduplicated by order number.

Examples:
  # Import a single export
  diary import ~/Downloads/alipay_record_2025.csv

  # Import every export in a directory
  diary import ~/Downloads/bills/

  # Keep every year and drop counterparty accounts after reading them
  diary import --year 0 --scrub-account ~/Downloads/*.xlsx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Int("year", 0, "only keep transactions from this year (0 keeps every year; default: current year)")
	cmd.Flags().Int("workers", 0, "classification workers (0 uses every CPU)")
	cmd.Flags().Bool("scrub-account", false, "clear counterparty accounts once privacy flags are derived")
	cmd.Flags().Bool("dry-run", false, "show what would be imported without saving")

	_ = viper.BindPFlag(config.KeyImportWorkers, cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag(config.KeyScrubAccount, cmd.Flags().Lookup("scrub-account"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	interrupts := cli.NewInterruptHandler(out, "Import")
	ctx, stop := interrupts.HandleInterrupts(cmd.Context())
	defer stop()

	year := settings.Year
	if cmd.Flags().Changed("year") {
		year, _ = cmd.Flags().GetInt("year")
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	normalizer := importer.NewNormalizer(year)
	normalizer.ScrubAccount = settings.ScrubAccount
	imp := importer.New(normalizer)

	paths, err := imp.ExpandPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return common.NewUserError("no .csv or .xlsx files found", common.ErrNoTransactions)
	}

	slog.Debug("Importing files", "count", len(paths), "year", year, "dry_run", dryRun)

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[yellow][bold]Reading exports...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[yellow]=[reset]",
			SaucerHead:    "[yellow]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)

	txns, report, err := imp.ImportFiles(ctx, paths, func(done, _ int) {
		_ = bar.Set(done)
	})
	if err != nil {
		if interrupts.WasInterrupted() {
			return nil
		}
		return err
	}

	printReport(cmd, report)

	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	var doc *model.Document
	if dryRun {
		overrides, err := app.store.GetOverrides(ctx)
		if err != nil {
			return fmt.Errorf("failed to load overrides: %w", err)
		}
		doc, err = app.engine.Process(ctx, txns, overrides)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions read, nothing saved", len(txns))))
	} else {
		doc, err = app.engine.Ingest(ctx, txns)
		if err != nil {
			if interrupts.WasInterrupted() {
				return nil
			}
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions", len(txns))))
	}

	fmt.Fprintln(out, cli.RenderStatistics(doc.Statistics))
	return nil
}

func printReport(cmd *cobra.Command, report importer.Report) {
	out := cmd.OutOrStdout()
	for _, f := range report.Files {
		if f.Err != nil {
			fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%s: %v", f.Path, f.Err)))
			continue
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s (%s): %d found, %d new, %d duplicates",
			f.Path, f.Source, f.Found, f.Added, f.Duplicates)))
	}
}
