package cli

import (
	"bytes"
	"context"
	"testing"
)

// isolateHome points HOME at a fresh directory so no real user config is
// read or written, and clears environment overrides.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PARQUET_META_OUTPUT", "")
	return home
}

// runCLI executes the root command with args and returns what it wrote to
// stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
