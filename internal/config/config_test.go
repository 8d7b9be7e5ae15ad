package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Empty(t, cfg.WorkDir)
	assert.Equal(t, "lista_combo.m3u", cfg.PrimaryFile)
	assert.Equal(t, "*.m3u", cfg.PlaylistPattern)
	assert.Equal(t, "validador_canales.py", cfg.AuxFile)
	assert.Equal(t, DefaultCommitPrefix, cfg.CommitPrefix)
	assert.Equal(t, "2006-01-02 15:04:05.000000000", cfg.CommitTimeFormat)
	assert.Equal(t, "dracula", cfg.Theme)
	assert.True(t, cfg.ClearScreen)
	assert.False(t, cfg.ShowIcons)
	assert.Empty(t, cfg.Editor)
	assert.Empty(t, cfg.DebugLog)
	assert.Empty(t, cfg.MetricsFile)
	assert.Equal(t, 5*time.Second, cfg.Validate.Timeout)
	assert.Equal(t, 8, cfg.Validate.Concurrency)
	assert.Equal(t, "logs", cfg.Validate.LogDir)
	assert.Equal(t, 1, cfg.Validate.MinBytes)
	assert.Empty(t, cfg.Validate.Sources)
}

func TestPrimaryPathAndOutputFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkDir = "/srv/listas"

	assert.Equal(t, filepath.Join("/srv/listas", "lista_combo.m3u"), cfg.PrimaryPath())
	assert.Equal(t, "lista_combo.m3u", cfg.OutputFile())

	cfg.Validate.Output = "nueva.m3u"
	assert.Equal(t, "nueva.m3u", cfg.OutputFile())
}

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected []string
	}{
		{name: "nil input", input: nil, expected: []string{}},
		{name: "empty string", input: "", expected: []string{}},
		{name: "single value", input: " jose1.m3u ", expected: []string{"jose1.m3u"}},
		{name: "comma separated", input: "jose1.m3u, jose2.m3u,,", expected: []string{"jose1.m3u", "jose2.m3u"}},
		{name: "list", input: []any{"a.m3u", nil, " ", "b.m3u"}, expected: []string{"a.m3u", "b.m3u"}},
		{name: "unsupported type", input: 42, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeList(tt.input))
		})
	}
}

func TestCoerceBool(t *testing.T) {
	tests := []struct {
		input    any
		def      bool
		expected bool
	}{
		{nil, true, true},
		{true, false, true},
		{0, true, false},
		{1, false, true},
		{"yes", false, true},
		{"OFF", true, false},
		{"maybe", true, true},
		{3.5, false, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, coerceBool(tt.input, tt.def), "input %v", tt.input)
	}
}

func TestCoerceInt(t *testing.T) {
	assert.Equal(t, 7, coerceInt(nil, 7))
	assert.Equal(t, 7, coerceInt(true, 7))
	assert.Equal(t, 3, coerceInt(3, 7))
	assert.Equal(t, 4, coerceInt(4.0, 7))
	assert.Equal(t, 12, coerceInt(" 12 ", 7))
	assert.Equal(t, 7, coerceInt("", 7))
	assert.Equal(t, 7, coerceInt("abc", 7))
}

func TestParseConfig(t *testing.T) {
	cfg := parseConfig(map[string]any{
		"work_dir":                "~/listas",
		"primary_file":            "principal.m3u",
		"playlist_pattern":        "*.m3u8",
		"aux_file":                "validar.py",
		"commit_prefix":           "Listas",
		"commit_time_format":      "20060102-150405",
		"editor":                  "nano",
		"debug_log":               "/tmp/lp.log",
		"metrics_file":            "/var/lib/node_exporter/lp.prom",
		"theme":                   "Nord",
		"clear_screen":            false,
		"show_icons":              "yes",
		"watch_debounce_ms":       0,
		"validate_sources":        []any{"jose1.m3u", "jose2.m3u"},
		"validate_output":         "combo.m3u",
		"validate_timeout":        10,
		"validate_concurrency":    "4",
		"validate_log_dir":        "registros",
		"validate_user_agent":     "VLC/3.0",
		"validate_min_bytes":      2048,
		"validate_languages":      "fr, es",
		"validate_countries":      []any{"CA"},
		"validate_groups":         []any{"News", "Sport"},
		"validate_remote_sources": []any{"https://example.com/a.m3u"},
		"validate_remote_list":    "fuentes.csv",
		"validate_raw_dir":        "descargas",
		"validate_csv_dir":        "csv",
	})

	assert.Equal(t, "~/listas", cfg.WorkDir)
	assert.Equal(t, "principal.m3u", cfg.PrimaryFile)
	assert.Equal(t, "*.m3u8", cfg.PlaylistPattern)
	assert.Equal(t, "validar.py", cfg.AuxFile)
	assert.Equal(t, "Listas", cfg.CommitPrefix)
	assert.Equal(t, "20060102-150405", cfg.CommitTimeFormat)
	assert.Equal(t, "nano", cfg.Editor)
	assert.Equal(t, "/tmp/lp.log", cfg.DebugLog)
	assert.Equal(t, "/var/lib/node_exporter/lp.prom", cfg.MetricsFile)
	assert.Equal(t, "nord", cfg.Theme)
	assert.False(t, cfg.ClearScreen)
	assert.True(t, cfg.ShowIcons)
	assert.Equal(t, time.Duration(0), cfg.WatchDebounce)
	assert.Equal(t, []string{"jose1.m3u", "jose2.m3u"}, cfg.Validate.Sources)
	assert.Equal(t, "combo.m3u", cfg.Validate.Output)
	assert.Equal(t, 10*time.Second, cfg.Validate.Timeout)
	assert.Equal(t, 4, cfg.Validate.Concurrency)
	assert.Equal(t, "registros", cfg.Validate.LogDir)
	assert.Equal(t, "VLC/3.0", cfg.Validate.UserAgent)
	assert.Equal(t, 2048, cfg.Validate.MinBytes)
	assert.Equal(t, []string{"fr", "es"}, cfg.Validate.Languages)
	assert.Equal(t, []string{"CA"}, cfg.Validate.Countries)
	assert.Equal(t, []string{"News", "Sport"}, cfg.Validate.Groups)
	assert.Equal(t, []string{"https://example.com/a.m3u"}, cfg.Validate.RemoteSources)
	assert.Equal(t, "fuentes.csv", cfg.Validate.RemoteList)
	assert.Equal(t, "descargas", cfg.Validate.RawDir)
	assert.Equal(t, "csv", cfg.Validate.CSVDir)
}

func TestParseConfigRejectsInvalidValues(t *testing.T) {
	cfg := parseConfig(map[string]any{
		"primary_file":         "sub/dir.m3u",
		"playlist_pattern":     "[",
		"theme":                "unknown",
		"validate_timeout":     -3,
		"validate_concurrency": 0,
		"commit_prefix":        "   ",
	})

	def := DefaultConfig()
	assert.Equal(t, def.PrimaryFile, cfg.PrimaryFile)
	assert.Equal(t, def.PlaylistPattern, cfg.PlaylistPattern)
	assert.Equal(t, def.Theme, cfg.Theme)
	assert.Equal(t, def.Validate.Timeout, cfg.Validate.Timeout)
	assert.Equal(t, def.Validate.Concurrency, cfg.Validate.Concurrency)
	assert.Equal(t, def.CommitPrefix, cfg.CommitPrefix)
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("config.yaml in config dir", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", xdg)
		dir := filepath.Join(xdg, "lazyplaylist")
		require.NoError(t, os.MkdirAll(dir, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
primary_file: favoritos.m3u
validate_sources:
  - jose1.m3u
  - lista_buena.m3u
clear_screen: false
`), 0o600))

		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "favoritos.m3u", cfg.PrimaryFile)
		assert.Equal(t, []string{"jose1.m3u", "lista_buena.m3u"}, cfg.Validate.Sources)
		assert.False(t, cfg.ClearScreen)
	})

	t.Run("yml fallback", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", xdg)
		dir := filepath.Join(xdg, "lazyplaylist")
		require.NoError(t, os.MkdirAll(dir, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("aux_file: run.sh\n"), 0o600))

		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "run.sh", cfg.AuxFile)
	})

	t.Run("invalid yaml is an error", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", xdg)
		dir := filepath.Join(xdg, "lazyplaylist")
		require.NoError(t, os.MkdirAll(dir, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("a: [unclosed"), 0o600))

		cfg, err := LoadConfig("")
		require.Error(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("explicit path outside config dir is rejected", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		outside := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(outside, []byte("aux_file: x\n"), 0o600))

		_, err := LoadConfig(outside)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config path must reside inside")
	})

	t.Run("explicit path inside config dir", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", xdg)
		dir := filepath.Join(xdg, "lazyplaylist")
		require.NoError(t, os.MkdirAll(dir, 0o750))
		path := filepath.Join(dir, "work.yaml")
		require.NoError(t, os.WriteFile(path, []byte("commit_prefix: Trabajo\n"), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "Trabajo", cfg.CommitPrefix)
	})

	t.Run("explicit path with env reference", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", xdg)
		dir := filepath.Join(xdg, "lazyplaylist")
		require.NoError(t, os.MkdirAll(dir, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "env.yaml"), []byte("aux_file: run.sh\n"), 0o600))

		cfg, err := LoadConfig("$XDG_CONFIG_HOME/lazyplaylist/env.yaml")
		require.NoError(t, err)
		assert.Equal(t, "run.sh", cfg.AuxFile)
	})
}

func TestIsPathWithin(t *testing.T) {
	base := filepath.Join(string(os.PathSeparator), "home", "u", ".config", "lazyplaylist")

	assert.True(t, isPathWithin(base, base))
	assert.True(t, isPathWithin(base, filepath.Join(base, "config.yaml")))
	assert.False(t, isPathWithin(base, filepath.Join(base, "..", "other.yaml")))
	assert.False(t, isPathWithin(base, filepath.Join(string(os.PathSeparator), "etc", "passwd")))
}

func TestNormalizeThemeName(t *testing.T) {
	assert.Equal(t, "dracula", NormalizeThemeName(" Dracula "))
	assert.Equal(t, "nord", NormalizeThemeName("nord"))
	assert.Empty(t, NormalizeThemeName("nope"))
}
