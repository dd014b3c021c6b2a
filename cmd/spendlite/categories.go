package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mwalkowiak/spendlite/internal/cli"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
	}

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	cmd.AddCommand(categoriesDeleteCmd())

	return cmd
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories visible to the user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := requireUser(ctx, cmd, store)
			if err != nil {
				return err
			}

			categories, err := store.GetCategories(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No categories found."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tSCOPE")
			for _, c := range categories {
				scope := "personal"
				if c.IsGlobal() {
					scope = "global"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Type, scope)
			}
			return w.Flush()
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [name]",
		Short: "Create a personal category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := requireUser(ctx, cmd, store)
			if err != nil {
				return err
			}

			id, err := store.ResolveCategory(ctx, user.ID, args[0])
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Category %q ready (id %d)", args[0], id)))
			return nil
		},
	}
}

func categoriesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a personal category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := requireUser(ctx, cmd, store)
			if err != nil {
				return err
			}

			category, err := store.GetCategoryByName(ctx, user.ID, args[0])
			if err != nil {
				return fmt.Errorf("failed to look up category: %w", err)
			}
			if category == nil || category.IsGlobal() {
				return fmt.Errorf("no personal category named %q", args[0])
			}

			if err := store.DeleteCategory(ctx, user.ID, category.ID); err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Deleted category %q", args[0])))
			return nil
		},
	}
}
