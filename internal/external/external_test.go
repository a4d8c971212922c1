package external

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texlab-go/internal/config"
)

func TestReplacePlaceholders(t *testing.T) {
	subs := map[rune]string{'f': "/proj/main.tex", 'p': "/proj/main.pdf", 'l': "42"}
	args := ReplacePlaceholders([]string{"-pdf", "%f", "--line=%l", "100%"}, subs)
	assert.Equal(t, []string{"-pdf", "/proj/main.tex", "--line=42", "100%"}, args)
}

func TestReplacePlaceholdersKeepsUnknown(t *testing.T) {
	args := ReplacePlaceholders([]string{"%x%f"}, map[rune]string{'f': "a.tex"})
	assert.Equal(t, []string{"%xa.tex"}, args)
}

func TestBuilderRunSuccessStreamsLines(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Build.Executable = "sh"
	cfg.Build.Args = []string{"-c", "echo one; echo two"}

	var lines []string
	b := NewBuilder()
	status, err := b.Run(context.Background(), cfg, "main.tex", "main.pdf", t.TempDir(), func(l string) {
		lines = append(lines, l)
	})
	require.NoError(t, err)
	assert.Equal(t, BuildSuccess, status)
	assert.Equal(t, []string{"one", "two"}, lines)
}

func TestBuilderRunNonzeroExitIsError(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Build.Executable = "sh"
	cfg.Build.Args = []string{"-c", "exit 3"}

	b := NewBuilder()
	status, err := b.Run(context.Background(), cfg, "main.tex", "main.pdf", t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, BuildError, status)
}

func TestBuilderRunSpawnFailureIsFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Build.Executable = "definitely-not-a-real-binary"
	cfg.Build.Args = nil

	b := NewBuilder()
	status, err := b.Run(context.Background(), cfg, "main.tex", "main.pdf", t.TempDir(), nil)
	assert.Error(t, err)
	assert.Equal(t, BuildFailure, status)
}

func TestBuilderRejectsConcurrentBuildOfSameDirectory(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Build.Executable = "sh"
	cfg.Build.Args = []string{"-c", "true"}

	b := NewBuilder()
	dir := t.TempDir()
	b.mu.Lock()
	b.inFlight[dir] = true
	b.mu.Unlock()

	status, err := b.Run(context.Background(), cfg, "main.tex", "main.pdf", dir, nil)
	assert.ErrorIs(t, err, ErrBuildInProgress)
	assert.Equal(t, BuildFailure, status)

	// A different directory is not affected.
	status, err = b.Run(context.Background(), cfg, "main.tex", "main.pdf", t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, BuildSuccess, status)
}
