// Package editor resolves the user's text editor and runs it on a file.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"

	log "github.com/chmouel/lazyplaylist/internal/log"
)

const osWindows = "windows"

// ErrNoEditor is returned when no editor could be resolved.
var ErrNoEditor = errors.New("no editor configured, set editor in config or $EDITOR")

// lookPath and getenv are swapped in tests.
var (
	lookPath = exec.LookPath
	getenv   = os.Getenv
)

// Resolve picks the editor command line: the configured value, then $VISUAL,
// then $EDITOR, then the first of nvim and vi found in PATH (notepad on
// Windows). It returns "" when nothing is available.
func Resolve(configured string) string {
	if editor := strings.TrimSpace(configured); editor != "" {
		return os.Expand(editor, getenv)
	}
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if editor := strings.TrimSpace(getenv(env)); editor != "" {
			return editor
		}
	}

	candidates := []string{"nvim", "vi"}
	if runtime.GOOS == osWindows {
		candidates = []string{"notepad"}
	}
	for _, name := range candidates {
		if _, err := lookPath(name); err == nil {
			return name
		}
	}
	return ""
}

// ShellQuote quotes s for a POSIX shell.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", "'\"'\"'") + "'"
}

// Launcher opens files in an editor attached to the terminal.
type Launcher struct {
	editor  string
	workDir string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer

	commandRunner func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewLauncher returns a Launcher that runs the resolved form of configured in
// workDir using the process's standard streams.
func NewLauncher(configured, workDir string) *Launcher {
	return &Launcher{
		editor:        configured,
		workDir:       workDir,
		stdin:         os.Stdin,
		stdout:        os.Stdout,
		stderr:        os.Stderr,
		commandRunner: exec.CommandContext,
	}
}

// Command builds the shell invocation for opening path with editor.
func Command(editor, path string) (string, []string) {
	if runtime.GOOS == osWindows {
		return "cmd", []string{"/C", fmt.Sprintf("%s \"%s\"", editor, path)}
	}
	return "sh", []string{"-c", fmt.Sprintf("%s %s", editor, ShellQuote(path))}
}

// Open runs the editor on path and blocks until it exits. A missing path is
// left to the editor. A non-zero exit is returned as an *exec.ExitError.
func (l *Launcher) Open(ctx context.Context, path string) error {
	editor := Resolve(l.editor)
	if editor == "" {
		return ErrNoEditor
	}

	name, args := Command(editor, path)
	log.Printf("editor: %s %s (cwd=%s)", name, strings.Join(args, " "), l.workDir)

	// ctrl+c belongs to the editor while it runs
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)

	// #nosec G204 -- the editor comes from local config or the user's environment
	c := l.commandRunner(ctx, name, args...)
	c.Dir = l.workDir
	c.Stdin = l.stdin
	c.Stdout = l.stdout
	c.Stderr = l.stderr
	return c.Run()
}
