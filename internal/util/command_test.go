package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCommand(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-kscreen-doctor")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0o755))
	plain := filepath.Join(dir, "not-executable")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o644))

	tests := []struct {
		name    string
		command string
		want    bool
	}{
		{"shell on PATH", "sh", true},
		{"missing tool", "stayactive-no-such-tool", false},
		{"empty", "", false},
		{"absolute executable", script, true},
		{"absolute non-executable", plain, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasCommand(tt.command))
		})
	}
}

func TestHasCommandUsesPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "xrandr"), []byte("#!/bin/sh\n"), 0o755))
	t.Setenv("PATH", dir)

	assert.True(t, HasCommand("xrandr"))
	assert.False(t, HasCommand("sh"))
}
