package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LP_TEST_DIR", "lists")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "tilde alone", input: "~", want: home},
		{name: "tilde prefix", input: "~/playlists", want: filepath.Join(home, "playlists")},
		{name: "env var", input: "/srv/$LP_TEST_DIR", want: "/srv/lists"},
		{name: "tilde inside name untouched", input: "/tmp/~x", want: "/tmp/~x"},
		{name: "plain", input: "/var/lib/m3u", want: "/var/lib/m3u"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDir(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	got, err := ResolveDir("")
	require.NoError(t, err)
	assert.Equal(t, wd, got)

	got, err = ResolveDir("sub")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "sub"), got)
}
