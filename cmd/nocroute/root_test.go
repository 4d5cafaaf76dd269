package main

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for text, want := range map[string]slog.Level{
		"debug": slog.LevelDebug, "": slog.LevelInfo, "INFO": slog.LevelInfo,
		"warning": slog.LevelWarn, "error": slog.LevelError,
	} {
		level, err := parseLevel(text)
		require.NoError(t, err)
		assert.Equal(t, want, level, text)
	}
	_, err := parseLevel("chatty")
	assert.Error(t, err)
}

// run executes the command line args and returns what it printed
func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), "%v", args)
	return out.String()
}

func TestGenerateCompileWalk(t *testing.T) {
	desc := filepath.Join(t.TempDir(), "mesh.yaml")
	run(t, "gen", "mesh", "mesh", "--rows", "2", "--cols", "2", "-o", desc, "--log-level", "error")

	table := run(t, "compile", desc, "--check")
	assert.Contains(t, table, "r3\n")
	assert.Contains(t, table, "East")

	path := run(t, "path", desc, "-s", "0", "-d", "3")
	assert.Contains(t, path, "ep0.in,r0,")
	assert.Contains(t, path, "ep3.out (weight 5)")

	walk := run(t, "walk", desc, "-s", "0", "-d", "3")
	assert.Contains(t, walk, "probe 0 ep0->ep3 hops 4")
	assert.Contains(t, walk, "delivered")

	next := run(t, "route", desc, "-r", "0", "-e", "1")
	assert.Equal(t, "outport 1 (East)\n", next)

	rootCmd.SetArgs([]string{"walk", desc, "-s", "9", "-d", "3"})
	assert.ErrorContains(t, rootCmd.Execute(), "endpoint 9")
}
