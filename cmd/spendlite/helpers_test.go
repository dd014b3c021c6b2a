package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("SPENDLITE_TEST_DIR", "/tmp/spendlite")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain path", in: "/var/db/app.db", want: "/var/db/app.db"},
		{name: "tilde prefix", in: "~/data/app.db", want: filepath.Join(home, "data/app.db")},
		{name: "bare tilde", in: "~", want: home},
		{name: "env var", in: "$SPENDLITE_TEST_DIR/app.db", want: "/tmp/spendlite/app.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandPath(tt.in))
		})
	}
}
