package bootstrap

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dirtyerrors "github.com/iamkaf/dirty/pkg/errors"
)

func TestPreParseGlobalFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		args        []string
		wantCfg     string
		wantVerbose bool
	}{
		{"none", []string{"dirty", "~/src"}, "", false},
		{"long config", []string{"dirty", "--config", "a.toml", "~/src"}, "a.toml", false},
		{"long config equals", []string{"dirty", "--config=b.toml"}, "b.toml", false},
		{"short config", []string{"dirty", "-C", "c.toml"}, "c.toml", false},
		{"short config attached", []string{"dirty", "-Cd.toml"}, "d.toml", false},
		{"short config equals", []string{"dirty", "-C=e.toml"}, "e.toml", false},
		{"verbose", []string{"dirty", "-v", "."}, "", true},
		{"both", []string{"dirty", "--verbose", "-C", "f.toml", "."}, "f.toml", true},
		{"stops at positional", []string{"dirty", ".", "-v"}, "", false},
		{"stops at marker", []string{"dirty", "--", "-v"}, "", false},
		{"dangling config", []string{"dirty", "-C"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, verbose := PreParseGlobalFlags(tt.args)
			assert.Equal(t, tt.wantCfg, cfg)
			assert.Equal(t, tt.wantVerbose, verbose)
		})
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestInitConfig_CustomFile(t *testing.T) {
	// Not parallel - modifies global viper state
	defer Reset()

	path := writeConfig(t, t.TempDir(), "[scan]\ndepth = 6\nexclude = [\"target\"]\n")

	cfg, err := InitConfig(path, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Scan.Depth)
	assert.Equal(t, []string{"target"}, cfg.Scan.Exclude)
}

func TestInitConfig_DefaultLocation(t *testing.T) {
	// Not parallel - modifies HOME and global viper state
	defer Reset()

	home := t.TempDir()
	t.Setenv("HOME", home)
	writeConfig(t, filepath.Join(home, ".config", "dirty"), "[output]\nformat = \"yaml\"\n")

	cfg, err := InitConfig("", false, nil)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output.Format)
}

func TestInitConfig_NoFileUsesDefaults(t *testing.T) {
	// Not parallel - modifies HOME and global viper state
	defer Reset()

	t.Setenv("HOME", t.TempDir())

	cfg, err := InitConfig("", false, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Scan.Depth)
	assert.Equal(t, "text", cfg.Output.Format)
}

func TestInitConfig_ExplicitFileMissing(t *testing.T) {
	// Not parallel - modifies global viper state
	defer Reset()

	_, err := InitConfig(filepath.Join(t.TempDir(), "missing.toml"), false, nil)
	require.Error(t, err)
	assert.True(t, dirtyerrors.IsConfigError(err))
}

func TestInitConfig_MalformedFile(t *testing.T) {
	// Not parallel - modifies HOME and global viper state
	defer Reset()

	home := t.TempDir()
	t.Setenv("HOME", home)
	writeConfig(t, filepath.Join(home, ".config", "dirty"), "[scan\ndepth = ")

	_, err := InitConfig("", false, nil)
	require.Error(t, err)
	assert.True(t, dirtyerrors.IsConfigError(err))
}

func TestInitConfig_EnvOverridesFile(t *testing.T) {
	// Not parallel - modifies environment and global viper state
	defer Reset()

	path := writeConfig(t, t.TempDir(), "[scan]\ndepth = 6\n")
	t.Setenv("DIRTY_SCAN_DEPTH", "2")
	t.Setenv("DIRTY_SCAN_TIMEOUT", "750ms")

	cfg, err := InitConfig(path, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Scan.Depth)
	assert.Equal(t, 750*time.Millisecond, cfg.Scan.Timeout)
}

func newScanFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("dirty", pflag.ContinueOnError)
	fs.IntP("depth", "L", 3, "")
	fs.IntP("jobs", "j", 0, "")
	fs.Duration("timeout", 0, "")
	fs.StringP("format", "f", "text", "")
	return fs
}

func TestInitConfig_FlagBindings(t *testing.T) {
	// Not parallel - modifies global viper state
	defer Reset()

	path := writeConfig(t, t.TempDir(), "[scan]\ndepth = 6\njobs = 4\n")

	t.Run("changed flags win", func(t *testing.T) {
		fs := newScanFlags()
		require.NoError(t, fs.Parse([]string{"-L", "1", "--timeout", "3s", "-f", "json"}))

		cfg, err := InitConfig(path, false, fs)
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.Scan.Depth)
		assert.Equal(t, 4, cfg.Scan.Jobs, "unchanged flag keeps the file value")
		assert.Equal(t, 3*time.Second, cfg.Scan.Timeout)
		assert.Equal(t, "json", cfg.Output.Format)
	})

	t.Run("unchanged flags keep file values", func(t *testing.T) {
		fs := newScanFlags()
		require.NoError(t, fs.Parse(nil))

		cfg, err := InitConfig(path, false, fs)
		require.NoError(t, err)
		assert.Equal(t, 6, cfg.Scan.Depth)
	})

	t.Run("invalid flag value is a config error", func(t *testing.T) {
		fs := newScanFlags()
		require.NoError(t, fs.Parse([]string{"--depth=-2"}))

		_, err := InitConfig(path, false, fs)
		require.Error(t, err)
		assert.True(t, dirtyerrors.IsConfigError(err))
	})
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tests := []struct {
		level     string
		verbose   bool
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"warn", false, false, false, true},
		{"info", false, false, true, true},
		{"error", false, false, false, false},
		{"debug", false, true, true, true},
		{"warn", true, true, true, true},
		{"bogus", false, false, false, true},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		logger := NewLogger(&buf, tt.level, tt.verbose)
		assert.Equal(t, tt.wantDebug, logger.Enabled(ctx, slog.LevelDebug), "level=%s verbose=%v debug", tt.level, tt.verbose)
		assert.Equal(t, tt.wantInfo, logger.Enabled(ctx, slog.LevelInfo), "level=%s verbose=%v info", tt.level, tt.verbose)
		assert.Equal(t, tt.wantWarn, logger.Enabled(ctx, slog.LevelWarn), "level=%s verbose=%v warn", tt.level, tt.verbose)
	}

	var buf bytes.Buffer
	NewLogger(&buf, "warn", false).Warn("repository could not be inspected", "path", "a")
	assert.Contains(t, buf.String(), "path=a")
}
