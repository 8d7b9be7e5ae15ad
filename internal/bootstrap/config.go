package bootstrap

import (
	"fmt"
	"io"
	"os"

	"github.com/chmouel/lazyplaylist/internal/config"
	"github.com/chmouel/lazyplaylist/internal/git"
	"github.com/chmouel/lazyplaylist/internal/log"
	"github.com/chmouel/lazyplaylist/internal/menu"
	"github.com/chmouel/lazyplaylist/internal/utils"
	"golang.org/x/term"
)

// Standard streams, swapped by tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec
}

// setupDebugLog points the debug log at the flag value, then the config value.
// With neither set, buffered lines are discarded.
func setupDebugLog(flagPath, cfgPath string) {
	path := flagPath
	if path == "" {
		path = cfgPath
	}
	if path == "" {
		_ = log.SetFile("")
		return
	}
	if expanded, err := utils.ExpandPath(path); err == nil {
		path = expanded
	}
	if err := log.SetFile(path); err != nil {
		fmt.Fprintf(stderr, "Error opening debug log file %q: %v\n", path, err)
	}
}

// loadCLIConfig loads the configuration layers in order: config file, the
// repository's git config, then --config overrides.
func loadCLIConfig(configFileFlag, workDirFlag string, configOverrides []string) (*config.AppConfig, error) {
	cfg, err := config.LoadConfig(configFileFlag)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	workDir, err := resolveWorkDir(cfg, workDirFlag)
	if err != nil {
		return nil, err
	}
	cfg.WorkDir = workDir

	if err := cfg.ApplyGitConfig(workDir); err != nil {
		cliNotify(err.Error(), "warn")
	}

	if len(configOverrides) > 0 {
		if err := cfg.ApplyCLIOverrides(configOverrides); err != nil {
			return nil, fmt.Errorf("error applying config overrides: %w", err)
		}
	}

	// git config and overrides are read from the work directory, they cannot move it
	cfg.WorkDir = workDir
	return cfg, nil
}

func resolveWorkDir(cfg *config.AppConfig, workDirFlag string) (string, error) {
	dir := workDirFlag
	if dir == "" {
		dir = cfg.WorkDir
	}
	resolved, err := utils.ResolveDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve work directory %q: %w", dir, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("work directory %s: %w", resolved, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("work directory %s is not a directory", resolved)
	}
	return resolved, nil
}

// applyThemeConfig applies the --theme flag on top of the configured theme.
func applyThemeConfig(cfg *config.AppConfig, themeName string) error {
	if themeName == "" {
		return nil
	}
	normalized := config.NormalizeThemeName(themeName)
	if normalized == "" {
		return fmt.Errorf("unknown theme %q", themeName)
	}
	cfg.Theme = normalized
	return nil
}

// menuConfig maps the application configuration to what the menu reads.
func menuConfig(cfg *config.AppConfig) menu.Config {
	return menu.Config{
		WorkDir:          cfg.WorkDir,
		PrimaryFile:      cfg.PrimaryFile,
		Pattern:          cfg.PlaylistPattern,
		AuxFile:          cfg.AuxFile,
		CommitPrefix:     cfg.CommitPrefix,
		CommitTimeFormat: cfg.CommitTimeFormat,
		ClearScreen:      cfg.ClearScreen,
		ShowIcons:        cfg.ShowIcons,
		Theme:            cfg.Theme,
	}
}

// newCLIGitService creates a git service streaming to stdout and reporting
// exit statuses on stderr.
func newCLIGitService(cfg *config.AppConfig) *git.Service {
	return git.NewService(cfg.WorkDir, stdout, cliNotify)
}

// cliNotify is a notification callback for git operations in CLI mode.
func cliNotify(message, severity string) {
	if severity == "error" {
		fmt.Fprintf(stderr, "Error: %s\n", message)
		return
	}
	fmt.Fprintf(stderr, "%s\n", message)
}
