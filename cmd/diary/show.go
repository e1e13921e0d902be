package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/coffee-diary/internal/aggregate"
	"github.com/Veraticus/coffee-diary/internal/cli"
)

func addFilterFlags(cmd *cobra.Command, f *filterFlags) {
	cmd.Flags().StringVar(&f.filter, "filter", "", "only chain, beans, cafe, manner, grid, dozzze or hans purchases")
	cmd.Flags().StringVar(&f.cafe, "cafe", "", "only purchases at this independent cafe")
	cmd.Flags().StringVar(&f.beanMerchant, "bean-merchant", "", "only bean purchases from this merchant")
	cmd.Flags().BoolVar(&f.espresso, "espresso", false, "only Manner espresso shots")
}

func statsCmd() *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show coffee statistics",
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

			stats := doc.Statistics
			if f != (filterFlags{}) {
				byDate, err := f.apply(app.display, doc.CoffeeByDate)
				if err != nil {
					return err
				}
				stats = aggregate.Statistics(byDate)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderStatistics(stats))
			fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("Processed "+doc.ProcessedAt.Local().Format(time.DateTime)))
			return nil
		},
	}
	addFilterFlags(cmd, &f)
	return cmd
}

func listCmd() *cobra.Command {
	var (
		f     filterFlags
		month string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List coffee purchases",
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

			byDate, err := f.apply(app.display, doc.CoffeeByDate)
			if err != nil {
				return err
			}

			txns := aggregate.Flatten(byDate)
			if month != "" {
				if _, err := cli.ParseMonth(month); err != nil {
					return err
				}
				kept := txns[:0]
				for _, txn := range txns {
					if txn.Month() == month {
						kept = append(kept, txn)
					}
				}
				txns = kept
			}
			if limit > 0 && len(txns) > limit {
				txns = txns[len(txns)-limit:]
			}

			fmt.Fprint(cmd.OutOrStdout(), cli.RenderTransactions(txns, app.display))
			return nil
		},
	}
	addFilterFlags(cmd, &f)
	cmd.Flags().StringVar(&month, "month", "", "only this month (YYYY-MM)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the most recent N purchases")
	return cmd
}

func cafesCmd() *cobra.Command {
	var beans bool
	cmd := &cobra.Command{
		Use:   "cafes",
		Short: "List the independent cafes you visited",
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

			if beans {
				fmt.Fprint(cmd.OutOrStdout(), cli.RenderNames("Bean merchants", app.display.BeanMerchants(doc.CoffeeTransactions)))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderNames("Independent cafes", app.display.CafeNames(doc.CoffeeTransactions)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&beans, "beans", false, "list bean merchants instead")
	return cmd
}

func calendarCmd() *cobra.Command {
	var (
		f     filterFlags
		month string
	)
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month of coffee as a calendar",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			m := time.Now()
			if month != "" {
				parsed, err := cli.ParseMonth(month)
				if err != nil {
					return err
				}
				m = parsed
			}

			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			doc, err := app.engine.Document(ctx)
			if err != nil {
				return err
			}

			byDate, err := f.apply(app.display, doc.CoffeeByDate)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), cli.RenderCalendar(m, byDate))
			return nil
		},
	}
	addFilterFlags(cmd, &f)
	cmd.Flags().StringVar(&month, "month", "", "month to show (YYYY-MM, default: this month)")
	return cmd
}

func receiptCmd() *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "Print your year in coffee as a receipt",
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

			byDate, err := f.apply(app.display, doc.CoffeeByDate)
			if err != nil {
				return err
			}

			data := aggregate.Receipt(aggregate.Flatten(byDate))
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderReceipt(data))
			return nil
		},
	}
	addFilterFlags(cmd, &f)
	return cmd
}
