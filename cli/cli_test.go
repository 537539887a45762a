package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/coder.go/internal/config"
)

func parse(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	t.Setenv(config.EnvConfigPath, "")
	t.Chdir(t.TempDir())
	return Parse(pflag.NewFlagSet("coder", pflag.ContinueOnError), args)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := parse(t, "a.go", "b.go")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "b.go"}, cfg.Files)
	assert.Equal(t, "auto", cfg.Protocol)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.DryRun)
}

func TestParseFlags(t *testing.T) {
	cfg, err := parse(t, "-f", "list.txt", "--protocol", "diff", "--max-mismatches", "3", "--relocate", "-n")
	require.NoError(t, err)
	assert.Equal(t, "list.txt", cfg.FileList)
	assert.Equal(t, "diff", cfg.Protocol)
	assert.Equal(t, 3, cfg.MaxMismatches)
	assert.True(t, cfg.Relocate)
	assert.True(t, cfg.DryRun)
}

func TestParseRejectsRevertAndRedo(t *testing.T) {
	_, err := parse(t, "--revert", "--redo")
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestParseRejectsBadProtocol(t *testing.T) {
	_, err := parse(t, "--protocol", "patch")
	assert.Error(t, err)
}

func TestParseAcceptsProtocolAliases(t *testing.T) {
	cfg, err := parse(t, "--protocol", "udiff", "--keep-final-newline")
	require.NoError(t, err)
	assert.Equal(t, "udiff", cfg.Protocol)
	assert.True(t, cfg.KeepNewline)

	cfg, err = parse(t, "-p", "full-content")
	require.NoError(t, err)
	assert.Equal(t, "full-content", cfg.Protocol)
	assert.False(t, cfg.KeepNewline)
}

func TestConfigFileFillsUnsetFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("protocol: full\nstrict: true\nmax_mismatches: 7\n"), 0o644))

	cfg, err := parse(t, "--config", path, "--max-mismatches", "2")
	require.NoError(t, err)
	assert.Equal(t, "full", cfg.Protocol)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 2, cfg.MaxMismatches)
}
