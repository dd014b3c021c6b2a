package main

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mwalkowiak/spendlite/internal/cli"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage local accounts",
	}

	cmd.AddCommand(userAddCmd())
	cmd.AddCommand(userVerifyCmd())

	return cmd
}

func userAddCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "add [username]",
		Short: "Register a local account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			pw := password
			if pw == "" {
				pw, err = promptPassword("Password: ")
				if err != nil {
					return err
				}
			}

			user, err := store.CreateUser(ctx, args[0], pw)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Created user %q (id %d)", user.Username, user.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func userVerifyCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "verify [username]",
		Short: "Check credentials against the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			pw := password
			if pw == "" {
				pw, err = promptPassword("Password: ")
				if err != nil {
					return err
				}
			}

			id, err := store.Authenticate(ctx, args[0], pw)
			if err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("OK (user id %d)", id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}
