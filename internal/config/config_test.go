package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "protocol: diff\nrelocate: true\nmax_mismatches: 4\nlog:\n  level: debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "diff", cfg.Protocol)
	assert.True(t, cfg.Relocate)
	assert.Equal(t, 4, cfg.MaxMismatches)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Log.MaxBackups)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"protocol", "protocol: patch\n", "Protocol"},
		{"negative limit", "max_mismatches: -1\n", "MaxMismatches"},
		{"log level", "log:\n  level: loud\n", "Level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadAcceptsProtocolAliases(t *testing.T) {
	for _, name := range []string{"fulltext", "full-content", "udiff", "unified-diff"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, "protocol: "+name+"\nkeep_final_newline: true\n"))
			require.NoError(t, err)
			assert.Equal(t, name, cfg.Protocol)
			assert.True(t, cfg.KeepFinalNewline)
		})
	}
}

func TestLoadMissingFlagPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestGetConfigPathPriority(t *testing.T) {
	t.Chdir(t.TempDir())
	dir, err := os.Getwd()
	require.NoError(t, err)
	local := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(local, []byte("protocol: full\n"), 0o644))
	env := writeConfig(t, "protocol: diff\n")

	t.Setenv(EnvConfigPath, "")
	assert.Equal(t, local, GetConfigPath(""))

	t.Setenv(EnvConfigPath, env)
	assert.Equal(t, env, GetConfigPath(""))
	assert.Equal(t, "flag.yaml", GetConfigPath("flag.yaml"))
}
