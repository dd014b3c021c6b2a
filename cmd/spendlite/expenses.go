package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mwalkowiak/spendlite/internal/cli"
	"github.com/mwalkowiak/spendlite/internal/common"
	"github.com/mwalkowiak/spendlite/internal/date"
	"github.com/mwalkowiak/spendlite/internal/importer"
	"github.com/mwalkowiak/spendlite/internal/storage"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Record and review expenses",
	}

	cmd.AddCommand(expensesAddCmd())
	cmd.AddCommand(expensesUpdateCmd())
	cmd.AddCommand(expensesDeleteCmd())
	cmd.AddCommand(expensesListCmd())

	return cmd
}

func expensesAddCmd() *cobra.Command {
	var (
		amountStr   string
		dateStr     string
		category    string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a single expense",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, day, err := parseExpenseInput(amountStr, dateStr)
			if err != nil {
				return err
			}
			if category == "" {
				category = storage.DefaultCategoryName
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

			if err := store.RecordExpense(ctx, user.ID, category, amount, description, day); err != nil {
				return fmt.Errorf("failed to record expense: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Recorded %.2f in %q on %s", amount, category, day)))
			return nil
		},
	}

	cmd.Flags().StringVar(&amountStr, "amount", "", "expense amount (required)")
	cmd.Flags().StringVar(&dateStr, "date", "", "expense date, YYYY-MM-DD (defaults to today)")
	cmd.Flags().StringVar(&category, "category", "", "category name (defaults to "+storage.DefaultCategoryName+")")
	cmd.Flags().StringVar(&description, "description", "", "free-form note")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func expensesUpdateCmd() *cobra.Command {
	var (
		amountStr   string
		dateStr     string
		category    string
		description string
	)

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Rewrite a recorded expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			expenseID, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, day, err := parseExpenseInput(amountStr, dateStr)
			if err != nil {
				return err
			}
			if category == "" {
				category = storage.DefaultCategoryName
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

			if err := store.UpdateExpense(ctx, user.ID, expenseID, amount, category, day, description); err != nil {
				return fmt.Errorf("failed to update expense: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Updated expense %d", expenseID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&amountStr, "amount", "", "expense amount (required)")
	cmd.Flags().StringVar(&dateStr, "date", "", "expense date, YYYY-MM-DD (defaults to today)")
	cmd.Flags().StringVar(&category, "category", "", "category name (defaults to "+storage.DefaultCategoryName+")")
	cmd.Flags().StringVar(&description, "description", "", "free-form note")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func expensesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a recorded expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			expenseID, err := parseID(args[0])
			if err != nil {
				return err
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

			if err := store.DeleteExpense(ctx, user.ID, expenseID); err != nil {
				return fmt.Errorf("failed to delete expense: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Deleted expense %d", expenseID)))
			return nil
		},
	}
}

func expensesListCmd() *cobra.Command {
	var (
		fromStr string
		toStr   string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded expenses, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			filter := storage.ExpenseFilter{Limit: limit}
			if fromStr != "" {
				from, err := date.Parse(fromStr)
				if err != nil {
					return common.NewUserError(fmt.Sprintf("Invalid --from date %q, expected YYYY-MM-DD", fromStr), err)
				}
				filter.From = &from
			}
			if toStr != "" {
				to, err := date.Parse(toStr)
				if err != nil {
					return common.NewUserError(fmt.Sprintf("Invalid --to date %q, expected YYYY-MM-DD", toStr), err)
				}
				filter.To = &to
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

			expenses, err := store.ListExpenses(ctx, user.ID, filter)
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}

			if len(expenses) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No expenses found."))
				return nil
			}

			categories, err := store.GetCategories(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}
			names := make(map[int64]string, len(categories))
			for _, c := range categories {
				names[c.ID] = c.Name
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tCATEGORY\tDESCRIPTION")
			for _, e := range expenses {
				name := storage.DefaultCategoryName
				if e.CategoryID != nil {
					if n, ok := names[*e.CategoryID]; ok {
						name = n
					}
				}
				fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\t%s\n", e.ID, e.Date, e.Amount, name, e.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "earliest date to include, YYYY-MM-DD")
	cmd.Flags().StringVar(&toStr, "to", "", "latest date to include, YYYY-MM-DD")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows to print (0 = all)")

	return cmd
}

// parseExpenseInput validates flag text before anything touches the store.
func parseExpenseInput(amountStr, dateStr string) (float64, date.Date, error) {
	amount, err := importer.ParseAmount(amountStr)
	if err != nil {
		return 0, date.Date{}, common.NewUserError(fmt.Sprintf("Invalid amount %q, expected a non-zero number", amountStr), err)
	}

	if dateStr == "" {
		return amount, date.Today(), nil
	}
	day, err := date.Parse(dateStr)
	if err != nil {
		return 0, date.Date{}, common.NewUserError(fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", dateStr), err)
	}
	return amount, day, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewUserError(fmt.Sprintf("Invalid expense id %q", raw), fmt.Errorf("invalid id %q", raw))
	}
	return id, nil
}
