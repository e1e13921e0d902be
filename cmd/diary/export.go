package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/coffee-diary/internal/cli"
	"github.com/Veraticus/coffee-diary/internal/config"
)

func exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the processed diary as JSON",
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

			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal document: %w", err)
			}

			if output == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}

			path := config.ExpandPath(output)
			if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := os.WriteFile(path, data, 0600); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Wrote %d purchases to %s", len(doc.CoffeeTransactions), path)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", config.DefaultExportFile, "output file, or - for stdout")
	return cmd
}
