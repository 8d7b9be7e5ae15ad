package config

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGitConfigOutput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string][]string
	}{
		{
			name:     "empty output",
			input:    "",
			expected: map[string][]string{},
		},
		{
			name:  "single values",
			input: "lp.primary_file lista.m3u\nlp.commit_prefix Listas del dia\n",
			expected: map[string][]string{
				"primary_file":  {"lista.m3u"},
				"commit_prefix": {"Listas del dia"},
			},
		},
		{
			name:  "repeated key",
			input: "lp.validate_sources a.m3u\r\nlp.validate_sources b.m3u\n",
			expected: map[string][]string{
				"validate_sources": {"a.m3u", "b.m3u"},
			},
		},
		{
			name:     "line without value is skipped",
			input:    "lp.clear_screen\n",
			expected: map[string][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseGitConfigOutput(tt.input))
		})
	}
}

func TestConvertGitConfig(t *testing.T) {
	result := convertGitConfig(map[string][]string{
		"theme":            {"nord"},
		"validate_sources": {"a.m3u", "b.m3u"},
		"empty":            {},
	})

	assert.Equal(t, map[string]any{
		"theme":            "nord",
		"validate_sources": []any{"a.m3u", "b.m3u"},
	}, result)
}

func TestLoadGitConfig(t *testing.T) {
	t.Cleanup(func() { gitConfigMock = nil })

	gitConfigMock = func(args []string, repoPath string) (string, error) {
		assert.Contains(t, args, "--local")
		assert.Equal(t, "/repo", repoPath)
		return "lp.aux_file run.sh\nlp.show_icons true\n", nil
	}

	result, err := loadGitConfig("/repo")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"aux_file": "run.sh", "show_icons": "true"}, result)

	gitConfigMock = func(_ []string, _ string) (string, error) {
		return "", fmt.Errorf("git command failed")
	}
	result, err = loadGitConfig("/repo")
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestApplyGitConfig(t *testing.T) {
	origInRepo := isInGitRepo
	t.Cleanup(func() {
		gitConfigMock = nil
		isInGitRepo = origInRepo
	})

	gitConfigMock = func(_ []string, _ string) (string, error) {
		return "lp.commit_prefix Desde git\nlp.validate_sources x.m3u\nlp.validate_sources y.m3u\n", nil
	}

	t.Run("outside a repository nothing changes", func(t *testing.T) {
		isInGitRepo = func(string) bool { return false }
		cfg := DefaultConfig()
		require.NoError(t, cfg.ApplyGitConfig("/tmp"))
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("inside a repository keys overlay", func(t *testing.T) {
		isInGitRepo = func(string) bool { return true }
		cfg := DefaultConfig()
		cfg.Editor = "kept"
		require.NoError(t, cfg.ApplyGitConfig("/repo"))
		assert.Equal(t, "Desde git", cfg.CommitPrefix)
		assert.Equal(t, []string{"x.m3u", "y.m3u"}, cfg.Validate.Sources)
		assert.Equal(t, "kept", cfg.Editor)
	})

	t.Run("git failure is reported", func(t *testing.T) {
		isInGitRepo = func(string) bool { return true }
		gitConfigMock = func(_ []string, _ string) (string, error) {
			return "", fmt.Errorf("boom")
		}
		err := DefaultConfig().ApplyGitConfig("/repo")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read git config")
	})
}

func TestParseCLIConfigOverrides(t *testing.T) {
	tests := []struct {
		name      string
		overrides []string
		expected  map[string]any
		errMsg    string
	}{
		{
			name:      "single override",
			overrides: []string{"lp.theme=nord"},
			expected:  map[string]any{"theme": "nord"},
		},
		{
			name:      "value with equals sign",
			overrides: []string{"lp.editor=code --wait --goto=1"},
			expected:  map[string]any{"editor": "code --wait --goto=1"},
		},
		{
			name:      "repeated keys become list",
			overrides: []string{"lp.validate_sources=a.m3u", "lp.validate_sources=b.m3u", "lp.validate_sources=c.m3u"},
			expected:  map[string]any{"validate_sources": []any{"a.m3u", "b.m3u", "c.m3u"}},
		},
		{
			name:      "empty value is allowed",
			overrides: []string{"lp.theme="},
			expected:  map[string]any{"theme": ""},
		},
		{
			name:      "missing equals sign",
			overrides: []string{"lp.theme"},
			errMsg:    "invalid config override",
		},
		{
			name:      "missing prefix",
			overrides: []string{"theme=nord"},
			errMsg:    "config override key must start with 'lp.'",
		},
		{
			name:      "empty key",
			overrides: []string{"lp.=x"},
			errMsg:    "empty config key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseCLIConfigOverrides(tt.overrides)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestApplyCLIOverrides(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyCLIOverrides([]string{"lp.primary_file=otra.m3u", "lp.clear_screen=false"}))
	assert.Equal(t, "otra.m3u", cfg.PrimaryFile)
	assert.False(t, cfg.ClearScreen)

	require.Error(t, cfg.ApplyCLIOverrides([]string{"bad"}))
}
