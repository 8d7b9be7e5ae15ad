package config

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// keyPrefix namespaces lazyplaylist keys in git config and --config overrides.
const keyPrefix = "lp."

// gitConfigMock allows tests to mock git config output.
var gitConfigMock func(args []string, repoPath string) (string, error)

// runGitConfig executes git config command and returns raw output.
func runGitConfig(args []string, repoPath string) (string, error) {
	if gitConfigMock != nil {
		return gitConfigMock(args, repoPath)
	}

	cmd := exec.Command("git", args...)
	if repoPath != "" {
		cmd.Dir = repoPath
	}

	output, err := cmd.Output()
	if err != nil {
		// exit 1 means no matching key
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", err
	}
	return string(output), nil
}

// parseGitConfigOutput parses `git config --get-regexp` output into a
// multi-value map keyed without the lp. prefix.
// Input format: "lp.primary_file lista.m3u\nlp.validate_sources a.m3u\n"
func parseGitConfigOutput(output string) map[string][]string {
	configMap := make(map[string][]string)
	if strings.TrimSpace(output) == "" {
		return configMap
	}

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimPrefix(parts[0], keyPrefix)
		configMap[key] = append(configMap[key], parts[1])
	}
	return configMap
}

// convertGitConfig turns repeated keys into []any so applyConfig sees the
// same shapes as YAML sequences.
func convertGitConfig(gitCfg map[string][]string) map[string]any {
	result := make(map[string]any, len(gitCfg))
	for key, values := range gitCfg {
		switch len(values) {
		case 0:
			continue
		case 1:
			result[key] = values[0]
		default:
			list := make([]any, len(values))
			for i, v := range values {
				list[i] = v
			}
			result[key] = list
		}
	}
	return result
}

// loadGitConfig reads lp.* keys from the repository-local git config.
func loadGitConfig(repoPath string) (map[string]any, error) {
	output, err := runGitConfig([]string{"config", "--local", "--get-regexp", `^lp\.`}, repoPath)
	if err != nil {
		return nil, err
	}
	return convertGitConfig(parseGitConfigOutput(output)), nil
}

// isInGitRepo reports whether path is inside a git repository.
var isInGitRepo = func(path string) bool {
	if path == "" {
		return false
	}
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = path
	return cmd.Run() == nil
}

// ApplyGitConfig overlays lp.* keys from the local git config of repoPath.
// Directories that are not repositories leave the config unchanged.
func (c *AppConfig) ApplyGitConfig(repoPath string) error {
	if !isInGitRepo(repoPath) {
		return nil
	}
	data, err := loadGitConfig(repoPath)
	if err != nil {
		return fmt.Errorf("failed to read git config: %w", err)
	}
	applyConfig(c, data)
	return nil
}

// parseCLIConfigOverrides parses --config=lp.key=value values.
func parseCLIConfigOverrides(overrides []string) (map[string]any, error) {
	result := make(map[string]any)

	for _, override := range overrides {
		parts := strings.SplitN(override, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config override: %q, expected format: lp.key=value (note: use = not space)", override)
		}

		fullKey, value := parts[0], parts[1]
		if !strings.HasPrefix(fullKey, keyPrefix) {
			return nil, fmt.Errorf("config override key must start with '%s': %q", keyPrefix, fullKey)
		}
		key := strings.TrimPrefix(fullKey, keyPrefix)
		if key == "" {
			return nil, fmt.Errorf("empty config key in override: %q", override)
		}

		switch existing := result[key].(type) {
		case nil:
			result[key] = value
		case string:
			result[key] = []any{existing, value}
		case []any:
			result[key] = append(existing, value)
		}
	}

	return result, nil
}

// ApplyCLIOverrides applies --config overrides, the highest precedence layer.
func (c *AppConfig) ApplyCLIOverrides(overrides []string) error {
	data, err := parseCLIConfigOverrides(overrides)
	if err != nil {
		return err
	}
	applyConfig(c, data)
	return nil
}
