package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/coffee-diary/internal/cli"
	"github.com/Veraticus/coffee-diary/internal/common"
	"github.com/Veraticus/coffee-diary/internal/model"
)

func confirmCmd() *cobra.Command {
	var (
		isCoffee, notCoffee bool
		isBeans, isDrink    bool
		unset               bool
		note                string
	)
	cmd := &cobra.Command{
		Use:   "confirm <transaction-id>",
		Short: "Correct the classification of one transaction",
		Long: `Correct the classification of one transaction. The ID may be the
12-character prefix shown by 'diary list'.

Examples:
  diary confirm 3fa85f64c1d2 --not-coffee
  diary confirm 3fa85f64c1d2 --beans --note "gift box"
  diary confirm 3fa85f64c1d2 --clear`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if isCoffee && notCoffee || isBeans && isDrink {
				return common.NewUserError("conflicting flags", common.ErrInvalidConfig)
			}
			if !unset && !isCoffee && !notCoffee && !isBeans && !isDrink {
				return common.NewUserError("say what the transaction is: --coffee, --not-coffee, --beans or --drink", common.ErrInvalidConfig)
			}

			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			txn, err := findTransaction(ctx, app.store, args[0])
			if err != nil {
				return err
			}

			var doc *model.Document
			if unset {
				doc, err = app.engine.Unconfirm(ctx, txn.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Override removed for "+txn.Merchant))
			} else {
				o := model.Override{TransactionID: txn.ID, Note: note}
				yes, no := true, false
				switch {
				case isCoffee:
					o.IsCoffee = &yes
				case notCoffee:
					o.IsCoffee = &no
				}
				switch {
				case isBeans:
					o.IsBeans = &yes
				case isDrink:
					o.IsBeans = &no
				}

				doc, err = app.engine.Confirm(ctx, o)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Confirmed %s %s ¥%.2f", txn.Date, txn.Merchant, txn.Amount)))
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("%d coffee purchases in the diary", doc.Statistics.TotalPurchases)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&isCoffee, "coffee", false, "it was a coffee purchase")
	cmd.Flags().BoolVar(&notCoffee, "not-coffee", false, "it was not a coffee purchase")
	cmd.Flags().BoolVar(&isBeans, "beans", false, "it was a bean purchase")
	cmd.Flags().BoolVar(&isDrink, "drink", false, "it was a drink, not beans")
	cmd.Flags().BoolVar(&unset, "clear", false, "remove the override and use the classifier again")
	cmd.Flags().StringVar(&note, "note", "", "free-text note stored with the override")
	return cmd
}

func reviewCmd() *cobra.Command {
	var threshold float64
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Interactively confirm uncertain coffee purchases",
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

			var pending []model.CoffeeTransaction
			for _, txn := range doc.CoffeeTransactions {
				if cli.NeedsReview(txn, threshold) {
					pending = append(pending, txn)
				}
			}
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Nothing to review"))
				return nil
			}

			reviewer := cli.NewReviewer(cmd.InOrStdin(), cmd.OutOrStdout(), app.display)
			overrides, reviewErr := reviewer.Review(ctx, pending)

			// Keep whatever was answered before an interrupt.
			for i := range overrides {
				if err := app.store.SaveOverride(ctx, &overrides[i]); err != nil {
					return fmt.Errorf("failed to save override: %w", err)
				}
			}
			if len(overrides) > 0 {
				if _, err := app.engine.Rebuild(ctx); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved %d decisions", len(overrides))))
			return reviewErr
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0.8, "review purchases with confidence below this")
	return cmd
}

func rebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Reclassify every stored transaction",
		Long:  `Reclassify every stored transaction, e.g. after editing the vocabulary file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			doc, err := app.engine.Rebuild(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderStatistics(doc.Statistics))
			return nil
		},
	}
}
