package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	defer ResetConfig()

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.False(t, cfg.Verbose)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, DefaultDelimiter, cfg.Delimiter)
	assert.Equal(t, DefaultFrom, cfg.From)
	assert.Equal(t, DefaultTo, cfg.To)
	assert.False(t, cfg.Quote64Bit)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfigFile(t *testing.T) {
	defer ResetConfig()

	dir := t.TempDir()
	path := filepath.Join(dir, "colbase.yaml")
	content := "log_level: DEBUG\ndelimiter: \";\"\nfrom: csv\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, ";", cfg.Delimiter)
	assert.Equal(t, "csv", cfg.From)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultTo, cfg.To)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadMissingConfigFile(t *testing.T) {
	defer ResetConfig()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	defer ResetConfig()

	dir := t.TempDir()
	path := filepath.Join(dir, "colbase.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: DEBUG\n"), 0o644))

	t.Setenv("COLBASE_LOG_LEVEL", "ERROR")
	t.Setenv("COLBASE_FROM", "json")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "ERROR", cfg.LogLevel)
	assert.Equal(t, "json", cfg.From)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	defer ResetConfig()

	t.Setenv("COLBASE_LOG_LEVEL", "ERROR")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", DefaultLogLevel, "")
	flags.String("delimiter", DefaultDelimiter, "")
	require.NoError(t, flags.Parse([]string{"--log-level=WARN", "--delimiter=|"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "WARN", cfg.LogLevel)
	assert.Equal(t, "|", cfg.Delimiter)
}

func TestLoadUnchangedFlagsDoNotOverride(t *testing.T) {
	defer ResetConfig()

	t.Setenv("COLBASE_LOG_LEVEL", "ERROR")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", DefaultLogLevel, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	// The flag keeps its default value but was never set, so the
	// environment wins.
	assert.Equal(t, "ERROR", cfg.LogLevel)
}

func TestLoadRejectsMultiByteDelimiter(t *testing.T) {
	defer ResetConfig()

	t.Setenv("COLBASE_DELIMITER", "ab")

	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delimiter")
}
