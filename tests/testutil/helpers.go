// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path to the repository root. Every test
// package sits two directories below it.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// FixturesRoot is the stack root holding the fixture stacks.
func FixturesRoot(t *testing.T) string {
	t.Helper()
	return filepath.Join(RepoRoot(t), "fixtures")
}

// FixtureStack is the base directory of the "stack" fixture: a current
// index plus directive files covering merges, cycles and soft failures.
func FixtureStack(t *testing.T) string {
	t.Helper()
	return filepath.Join(FixturesRoot(t), "stack")
}

// WriteStack creates a stack under a temporary directory from a map of
// relative path to content and returns its base directory.
func WriteStack(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}
