// Package config loads lazyplaylist configuration from YAML, git config and
// command-line overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chmouel/lazyplaylist/internal/git"
	"github.com/chmouel/lazyplaylist/internal/theme"
	"github.com/chmouel/lazyplaylist/internal/utils"
	"gopkg.in/yaml.v3"
)

// Defaults describing the playlist directory layout.
const (
	DefaultPrimaryFile      = "lista_combo.m3u"
	DefaultPlaylistPattern  = "*.m3u"
	DefaultAuxFile          = "validador_canales.py"
	DefaultCommitPrefix     = "Actualizacion de listas"
	DefaultCommitTimeFormat = git.DefaultTimeLayout
	DefaultValidateLogDir   = "logs"
	DefaultValidateRawDir   = "RAW"
	DefaultUserAgent        = "lazyplaylist-validator/1.0"
)

// AppConfig defines the global lazyplaylist configuration options.
type AppConfig struct {
	WorkDir          string // directory holding the playlists; empty means the current directory
	PrimaryFile      string // playlist opened by the edit action
	PlaylistPattern  string // glob selecting playlist files inside WorkDir
	AuxFile          string // extra file staged together with the playlists
	CommitPrefix     string
	CommitTimeFormat string // Go time layout appended to CommitPrefix
	Editor           string
	DebugLog         string
	Theme            string
	ClearScreen      bool
	ShowIcons        bool
	MetricsFile      string
	WatchDebounce    time.Duration
	Validate         ValidateConfig
}

// ValidateConfig holds the settings of the validate command.
type ValidateConfig struct {
	Sources     []string // playlist names relative to WorkDir; empty means every playlist but the primary
	Output      string   // defaults to PrimaryFile
	Timeout     time.Duration
	Concurrency int
	LogDir      string
	UserAgent   string
	MinBytes    int

	Languages []string
	Countries []string
	Groups    []string

	RemoteSources []string // playlist URLs downloaded before parsing
	RemoteList    string   // CSV file whose first column lists more URLs
	RawDir        string   // where downloaded playlists are kept
	CSVDir        string   // empty disables the CSV exports
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		PrimaryFile:      DefaultPrimaryFile,
		PlaylistPattern:  DefaultPlaylistPattern,
		AuxFile:          DefaultAuxFile,
		CommitPrefix:     DefaultCommitPrefix,
		CommitTimeFormat: DefaultCommitTimeFormat,
		Theme:            theme.DefaultDark(),
		ClearScreen:      true,
		ShowIcons:        false,
		WatchDebounce:    300 * time.Millisecond,
		Validate: ValidateConfig{
			Timeout:     5 * time.Second,
			Concurrency: 8,
			LogDir:      DefaultValidateLogDir,
			UserAgent:   DefaultUserAgent,
			MinBytes:    1,
			RawDir:      DefaultValidateRawDir,
		},
	}
}

// PrimaryPath returns the absolute-or-relative path of the primary playlist.
func (c *AppConfig) PrimaryPath() string {
	return filepath.Join(c.WorkDir, c.PrimaryFile)
}

// OutputFile returns the file validate writes to.
func (c *AppConfig) OutputFile() string {
	if c.Validate.Output != "" {
		return c.Validate.Output
	}
	return c.PrimaryFile
}

// normalizeList converts a YAML scalar or sequence to a list of trimmed strings.
func normalizeList(value any) []string {
	if value == nil {
		return []string{}
	}

	switch v := value.(type) {
	case string:
		out := []string{}
		for _, part := range strings.Split(v, ",") {
			if text := strings.TrimSpace(part); text != "" {
				out = append(out, text)
			}
		}
		return out
	case []any:
		out := []string{}
		for _, item := range v {
			if item == nil {
				continue
			}
			if text := strings.TrimSpace(fmt.Sprintf("%v", item)); text != "" {
				out = append(out, text)
			}
		}
		return out
	}
	return []string{}
}

func coerceBool(value any, defaultVal bool) bool {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultVal
}

func coerceInt(value any, defaultVal int) int {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return defaultVal
	case int:
		return v
	case float64:
		return int(v)
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return defaultVal
		}
		if i, err := strconv.Atoi(text); err == nil {
			return i
		}
	}
	return defaultVal
}

func stringValue(data map[string]any, key string) (string, bool) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return "", false
	}
	text := strings.TrimSpace(fmt.Sprintf("%v", raw))
	return text, text != ""
}

// applyConfig overlays the keys present in data onto cfg. Missing keys and
// invalid values leave cfg untouched.
func applyConfig(cfg *AppConfig, data map[string]any) {
	if v, ok := stringValue(data, "work_dir"); ok {
		cfg.WorkDir = v
	}
	if v, ok := stringValue(data, "primary_file"); ok && filepath.Base(v) == v {
		cfg.PrimaryFile = v
	}
	if v, ok := stringValue(data, "playlist_pattern"); ok {
		if _, err := filepath.Match(v, ""); err == nil {
			cfg.PlaylistPattern = v
		}
	}
	if v, ok := stringValue(data, "aux_file"); ok {
		cfg.AuxFile = v
	}
	if v, ok := stringValue(data, "commit_prefix"); ok {
		cfg.CommitPrefix = v
	}
	if v, ok := stringValue(data, "commit_time_format"); ok {
		cfg.CommitTimeFormat = v
	}
	if v, ok := stringValue(data, "editor"); ok {
		cfg.Editor = v
	}
	if v, ok := stringValue(data, "debug_log"); ok {
		cfg.DebugLog = v
	}
	if v, ok := stringValue(data, "metrics_file"); ok {
		cfg.MetricsFile = v
	}
	if v, ok := stringValue(data, "theme"); ok {
		if normalized := NormalizeThemeName(v); normalized != "" {
			cfg.Theme = normalized
		}
	}

	cfg.ClearScreen = coerceBool(data["clear_screen"], cfg.ClearScreen)
	cfg.ShowIcons = coerceBool(data["show_icons"], cfg.ShowIcons)
	if ms := coerceInt(data["watch_debounce_ms"], -1); ms >= 0 {
		cfg.WatchDebounce = time.Duration(ms) * time.Millisecond
	}

	if _, ok := data["validate_sources"]; ok {
		cfg.Validate.Sources = normalizeList(data["validate_sources"])
	}
	if v, ok := stringValue(data, "validate_output"); ok {
		cfg.Validate.Output = v
	}
	if secs := coerceInt(data["validate_timeout"], 0); secs > 0 {
		cfg.Validate.Timeout = time.Duration(secs) * time.Second
	}
	if n := coerceInt(data["validate_concurrency"], 0); n > 0 {
		cfg.Validate.Concurrency = n
	}
	if v, ok := stringValue(data, "validate_log_dir"); ok {
		cfg.Validate.LogDir = v
	}
	if v, ok := stringValue(data, "validate_user_agent"); ok {
		cfg.Validate.UserAgent = v
	}
	if n := coerceInt(data["validate_min_bytes"], -1); n >= 0 {
		cfg.Validate.MinBytes = n
	}
	if _, ok := data["validate_languages"]; ok {
		cfg.Validate.Languages = normalizeList(data["validate_languages"])
	}
	if _, ok := data["validate_countries"]; ok {
		cfg.Validate.Countries = normalizeList(data["validate_countries"])
	}
	if _, ok := data["validate_groups"]; ok {
		cfg.Validate.Groups = normalizeList(data["validate_groups"])
	}
	if _, ok := data["validate_remote_sources"]; ok {
		cfg.Validate.RemoteSources = normalizeList(data["validate_remote_sources"])
	}
	if v, ok := stringValue(data, "validate_remote_list"); ok {
		cfg.Validate.RemoteList = v
	}
	if v, ok := stringValue(data, "validate_raw_dir"); ok {
		cfg.Validate.RawDir = v
	}
	if v, ok := stringValue(data, "validate_csv_dir"); ok {
		cfg.Validate.CSVDir = v
	}
}

func parseConfig(data map[string]any) *AppConfig {
	cfg := DefaultConfig()
	applyConfig(cfg, data)
	return cfg
}

func getConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// ConfigDir returns the directory holding config.yaml.
func ConfigDir() string {
	return filepath.Clean(filepath.Join(getConfigDir(), "lazyplaylist"))
}

// LoadConfig reads the application configuration from a YAML file. An empty
// configPath searches config.yaml then config.yml in ConfigDir. Missing files
// yield the defaults.
func LoadConfig(configPath string) (*AppConfig, error) {
	configBase := ConfigDir()

	var paths []string
	if configPath != "" {
		expanded, err := utils.ExpandPath(configPath)
		if err != nil {
			return DefaultConfig(), err
		}
		absPath, err := filepath.Abs(expanded)
		if err != nil {
			return DefaultConfig(), err
		}
		if !isPathWithin(configBase, absPath) {
			return DefaultConfig(), fmt.Errorf("config path must reside inside %s", configBase)
		}
		paths = []string{absPath}
	} else {
		paths = []string{
			filepath.Join(configBase, "config.yaml"),
			filepath.Join(configBase, "config.yml"),
		}
	}

	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		// #nosec G304 -- path is constrained to the config directory after validation
		data, err := os.ReadFile(path)
		if err != nil {
			return DefaultConfig(), fmt.Errorf("failed to read %s: %w", path, err)
		}

		var yamlData map[string]any
		if err := yaml.Unmarshal(data, &yamlData); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return parseConfig(yamlData), nil
	}

	return DefaultConfig(), nil
}

func isPathWithin(base, target string) bool {
	base = filepath.Clean(base)
	target = filepath.Clean(target)

	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false
	}
	return true
}

// NormalizeThemeName returns the canonical theme name if it is supported.
func NormalizeThemeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, known := range theme.AvailableThemes() {
		if name == known {
			return name
		}
	}
	return ""
}
