package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mwalkowiak/spendlite/internal/common"
	"github.com/mwalkowiak/spendlite/internal/importer"
	"github.com/mwalkowiak/spendlite/internal/ofx"
	"github.com/mwalkowiak/spendlite/internal/storage"
)

func importOFXCmd() *cobra.Command {
	var defaultCategory string

	cmd := &cobra.Command{
		Use:   "import-ofx [file-or-glob]",
		Short: "Import expenses from OFX/QFX bank exports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			files, err := filepath.Glob(args[0])
			if err != nil {
				return fmt.Errorf("bad file pattern %q: %w", args[0], err)
			}
			if len(files) == 0 {
				return fmt.Errorf("no files match %q", args[0])
			}

			store, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := requireUser(ctx, cmd, store)
			if err != nil {
				return err
			}

			parser := ofx.NewParser()
			var entries []ofx.Entry
			for _, file := range files {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", file, err)
				}
				parsed, err := parser.Parse(f)
				_ = f.Close()
				if err != nil {
					return fmt.Errorf("failed to parse %s: %w", file, err)
				}
				entries = append(entries, parsed...)
			}

			bar := progressbar.NewOptions(len(entries),
				progressbar.OptionSetDescription("Importing transactions"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)

			rec := importer.NewReconciler(store)
			rec.OnRow = func(_ int, _ error) { _ = bar.Add(1) }

			result := rec.ExecuteEntries(ctx, entries, defaultCategory, user.ID)
			_ = bar.Finish()

			common.LogInfo("OFX import finished", common.Fields{
				"files":     len(files),
				"succeeded": result.Succeeded,
				"failed":    result.Failed,
			})

			printImportResult(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&defaultCategory, "default-category", "", "category for imported transactions (defaults to "+storage.DefaultCategoryName+")")

	return cmd
}
