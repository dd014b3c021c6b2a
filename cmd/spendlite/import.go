package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mwalkowiak/spendlite/internal/cli"
	"github.com/mwalkowiak/spendlite/internal/common"
	"github.com/mwalkowiak/spendlite/internal/importer"
	"github.com/mwalkowiak/spendlite/internal/storage"
)

func importCmd() *cobra.Command {
	var (
		delimiterStr    string
		noHeader        bool
		defaultCategory string
		dateFormat      string
		preview         bool
		amountCol       int
		dateCol         int
		categoryCol     int
		descriptionCol  int
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import expenses from a delimited file",
		Long: `Import expenses from a CSV-like file. Columns are matched to fields by
header name when possible; use the --*-column flags to override. Rows that
cannot be parsed are skipped and reported, never aborting the run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			filePath := args[0]

			delimiter, err := resolveDelimiter(filePath, delimiterStr)
			if err != nil {
				return err
			}

			if preview {
				table, err := importer.Preview(filePath, delimiter, !noHeader)
				if err != nil {
					return fmt.Errorf("failed to preview import file: %w", err)
				}
				printPreview(table)
				return nil
			}

			table, err := importer.Load(filePath, delimiter, !noHeader)
			if err != nil {
				return fmt.Errorf("failed to parse import file: %w", err)
			}

			mapping := importer.AutoMap(table.Columns)
			if amountCol >= 0 {
				mapping.Amount = amountCol
			}
			if dateCol >= 0 {
				mapping.Date = dateCol
			}
			if categoryCol >= 0 {
				mapping.Category = categoryCol
			}
			if descriptionCol >= 0 {
				mapping.Description = descriptionCol
			}
			if mapping.Amount < 0 || mapping.Date < 0 {
				return common.NewUserError(
					"Could not locate amount and date columns; set --amount-column and --date-column",
					fmt.Errorf("unmapped required columns"),
				)
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

			bar := progressbar.NewOptions(len(table.Rows),
				progressbar.OptionSetDescription("Importing expenses"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)

			rec := importer.NewReconciler(store)
			rec.DateFormat = dateFormat
			rec.OnRow = func(row int, err error) {
				_ = bar.Add(1)
			}

			result, err := rec.Execute(ctx, table, mapping, defaultCategory, user.ID)
			if err != nil {
				return err
			}
			_ = bar.Finish()

			printImportResult(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&delimiterStr, "delimiter", "", "field delimiter (auto-detected when omitted)")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "treat the first line as data")
	cmd.Flags().StringVar(&defaultCategory, "default-category", "", "category for unmapped rows (defaults to "+storage.DefaultCategoryName+")")
	cmd.Flags().StringVar(&dateFormat, "date-format", "", "explicit Go date layout, e.g. 02.01.2006")
	cmd.Flags().BoolVar(&preview, "preview", false, "print the first rows and exit without importing")
	cmd.Flags().IntVar(&amountCol, "amount-column", -1, "zero-based amount column override")
	cmd.Flags().IntVar(&dateCol, "date-column", -1, "zero-based date column override")
	cmd.Flags().IntVar(&categoryCol, "category-column", -1, "zero-based category column override")
	cmd.Flags().IntVar(&descriptionCol, "description-column", -1, "zero-based description column override")

	return cmd
}

// resolveDelimiter honors an explicit --delimiter; otherwise it sniffs the
// first line of the file.
func resolveDelimiter(filePath, delimiterStr string) (rune, error) {
	if delimiterStr != "" {
		runes := []rune(delimiterStr)
		if delimiterStr == "\\t" {
			return '\t', nil
		}
		if len(runes) != 1 {
			return 0, common.NewUserError(
				"Delimiter must be a single character",
				fmt.Errorf("bad delimiter %q", delimiterStr),
			)
		}
		return runes[0], nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return 0, fmt.Errorf("import file %s is empty", filePath)
	}
	return importer.DetectDelimiter(scanner.Text()), nil
}

func printPreview(table *importer.Table) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()

	mapping := importer.AutoMap(table.Columns)
	fmt.Println()
	fmt.Println(cli.InfoStyle.Render(fmt.Sprintf(
		"Detected columns: amount=%s date=%s category=%s description=%s",
		columnLabel(table.Columns, mapping.Amount),
		columnLabel(table.Columns, mapping.Date),
		columnLabel(table.Columns, mapping.Category),
		columnLabel(table.Columns, mapping.Description),
	)))
}

func columnLabel(columns []string, idx int) string {
	if idx < 0 || idx >= len(columns) {
		return "(none)"
	}
	return columns[idx]
}

func printImportResult(result importer.Result) {
	switch result.Verdict() {
	case importer.VerdictAllSucceeded:
		fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Imported %d expenses", result.Succeeded)))
	case importer.VerdictPartial:
		fmt.Println(cli.WarningStyle.Render(fmt.Sprintf(
			"Imported %d expenses, skipped %d rows that could not be parsed",
			result.Succeeded, result.Failed,
		)))
	default:
		fmt.Println(cli.ErrorStyle.Render(fmt.Sprintf(
			"Imported nothing; all %d rows failed", result.Failed,
		)))
	}
}
