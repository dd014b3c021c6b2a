package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwalkowiak/spendlite/internal/common"
	"github.com/mwalkowiak/spendlite/internal/model"
	"github.com/mwalkowiak/spendlite/internal/storage"
)

// expandPath expands a leading ~ and any $VAR references in a configured
// path.
func expandPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, rest)
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}
	return os.ExpandEnv(path)
}

// initStore opens the store at the configured path and ensures the schema.
func initStore(ctx context.Context) (*storage.SQLiteStore, error) {
	dbPath := viper.GetString("storage.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/spendlite/spendlite.db"
	}
	dbPath = expandPath(dbPath)

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return store, nil
}

// requireUser resolves the --user flag to an account. Every core call takes
// the user id explicitly; there is no ambient session state.
func requireUser(ctx context.Context, cmd *cobra.Command, store *storage.SQLiteStore) (*model.User, error) {
	username, _ := cmd.Root().PersistentFlags().GetString("user")
	if username == "" {
		return nil, common.NewUserError("--user is required", nil)
	}

	user, err := store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.NewUserError(fmt.Sprintf("unknown user %q; create one with 'spendlite user add'", username), nil)
	}
	return user, nil
}
