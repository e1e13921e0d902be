package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/coffee-diary/internal/cli"
	"github.com/Veraticus/coffee-diary/internal/tui"
)

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse coffee purchases and correct them interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			doc, err := app.engine.Document(ctx)
			if err != nil {
				return err
			}

			decisions, runErr := tui.Run(ctx, tui.Config{
				Display:      app.display,
				Transactions: doc.CoffeeTransactions,
				AltScreen:    true,
			})

			for i := range decisions {
				if err := app.store.SaveOverride(ctx, &decisions[i]); err != nil {
					return fmt.Errorf("failed to save override: %w", err)
				}
			}
			if len(decisions) > 0 {
				if _, err := app.engine.Rebuild(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved %d decisions", len(decisions))))
			}
			return runErr
		},
	}
}
