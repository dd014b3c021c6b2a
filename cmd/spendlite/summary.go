package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mwalkowiak/spendlite/internal/cli"
	"github.com/mwalkowiak/spendlite/internal/common"
	"github.com/mwalkowiak/spendlite/internal/date"
)

func summaryCmd() *cobra.Command {
	var (
		fromStr string
		toStr   string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total spending per category over a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Default window: the current month to date.
			today := date.Today()
			from := date.New(today.Year(), today.Month(), 1)
			to := today

			var err error
			if fromStr != "" {
				from, err = date.Parse(fromStr)
				if err != nil {
					return common.NewUserError(fmt.Sprintf("Invalid --from date %q, expected YYYY-MM-DD", fromStr), err)
				}
			}
			if toStr != "" {
				to, err = date.Parse(toStr)
				if err != nil {
					return common.NewUserError(fmt.Sprintf("Invalid --to date %q, expected YYYY-MM-DD", toStr), err)
				}
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

			summary, err := store.GetCategorySummary(ctx, user.ID, from, to)
			if err != nil {
				return fmt.Errorf("failed to summarize expenses: %w", err)
			}

			if len(summary) == 0 {
				fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("No expenses between %s and %s.", from, to)))
				return nil
			}

			names := make([]string, 0, len(summary))
			for name := range summary {
				names = append(names, name)
			}
			// Largest spend first, ties by name.
			sort.Slice(names, func(i, j int) bool {
				if summary[names[i]] != summary[names[j]] {
					return summary[names[i]] > summary[names[j]]
				}
				return names[i] < names[j]
			})

			fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Spending %s to %s", from, to)))
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			var total float64
			for _, name := range names {
				fmt.Fprintf(w, "%s\t%.2f\n", name, summary[name])
				total += summary[name]
			}
			fmt.Fprintf(w, "TOTAL\t%.2f\n", total)
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "start of range, YYYY-MM-DD (defaults to first of this month)")
	cmd.Flags().StringVar(&toStr, "to", "", "end of range, YYYY-MM-DD (defaults to today)")

	return cmd
}
