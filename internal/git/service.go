// Package git runs the git commands lazyplaylist needs to publish playlists.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	log "github.com/chmouel/lazyplaylist/internal/log"
)

// NotifyFn receives notices about finished commands.
type NotifyFn func(message string, severity string)

// Result describes one finished command.
type Result struct {
	Command  string
	ExitCode int // -1 when the process could not be started
	Output   string
	Err      error
}

// OK reports whether the command ran and exited with status 0.
func (r Result) OK() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Service runs git inside a single working directory. Command output is
// written to the display writer as it is produced and also kept in the Result.
type Service struct {
	workDir string
	out     io.Writer
	notify  NotifyFn
}

// NewService constructs a Service. A nil out discards the live output and a nil
// notify ignores notices.
func NewService(workDir string, out io.Writer, notify NotifyFn) *Service {
	if out == nil {
		out = io.Discard
	}
	if notify == nil {
		notify = func(string, string) {}
	}
	return &Service{workDir: workDir, out: out, notify: notify}
}

// WorkDir returns the directory commands run in.
func (s *Service) WorkDir() string {
	return s.workDir
}

func (s *Service) debugf(format string, args ...any) {
	log.Printf(format, args...)
}

func prepareAllowedCommand(ctx context.Context, args []string) (*exec.Cmd, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no command provided")
	}
	if args[0] != "git" {
		return nil, fmt.Errorf("unsupported command %q", args[0])
	}
	// #nosec G204 -- git arguments are built internally and are not shell interpolated
	return exec.CommandContext(ctx, "git", args[1:]...), nil
}

// Run executes git with args and waits for it. Non-zero exits are reported
// through the notify callback with severity "warn" and never returned as Err.
func (s *Service) Run(ctx context.Context, args ...string) Result {
	full := append([]string{"git"}, args...)
	res := Result{Command: strings.Join(full, " ")}
	s.debugf("run: %s (cwd=%s)", res.Command, s.workDir)

	cmd, err := prepareAllowedCommand(ctx, full)
	if err != nil {
		res.ExitCode = -1
		res.Err = err
		return res
	}
	cmd.Dir = s.workDir

	var buf bytes.Buffer
	w := io.MultiWriter(s.out, &buf)
	cmd.Stdout = w
	cmd.Stderr = w

	err = cmd.Run()
	res.Output = buf.String()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		s.debugf("ok: %s", res.Command)
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		s.debugf("error: %s (exit %d)", res.Command, res.ExitCode)
		s.notify(fmt.Sprintf("%s exited with status %d", res.Command, res.ExitCode), "warn")
	default:
		res.ExitCode = -1
		res.Err = err
		s.debugf("error: %s: %v", res.Command, err)
		s.notify(fmt.Sprintf("%s could not run: %v", res.Command, err), "error")
	}
	return res
}

// Status runs git status.
func (s *Service) Status(ctx context.Context) Result {
	return s.Run(ctx, "status")
}

// Add stages pathspec.
func (s *Service) Add(ctx context.Context, pathspec string) Result {
	return s.Run(ctx, "add", pathspec)
}

// Commit records staged changes with message.
func (s *Service) Commit(ctx context.Context, message string) Result {
	return s.Run(ctx, "commit", "-m", message)
}

// Push pushes to the configured upstream.
func (s *Service) Push(ctx context.Context) Result {
	return s.Run(ctx, "push")
}

// IsRepository reports whether the working directory is inside a git
// repository. It prints nothing.
func (s *Service) IsRepository(ctx context.Context) bool {
	// #nosec G204 -- fixed arguments
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--git-dir")
	cmd.Dir = s.workDir
	return cmd.Run() == nil
}

// PublishOptions configures Publish.
type PublishOptions struct {
	Pattern string // glob of playlist files, top level of the working directory only
	AuxFile string
	Message string
}

// GlobPathspec turns a file glob into a pathspec that git expands itself and
// that does not descend into subdirectories.
func GlobPathspec(pattern string) string {
	return ":(glob)" + pattern
}

// Publish runs status, add of the playlists, add of the auxiliary file, commit
// and push, in that order. Every step runs whatever the previous ones returned.
func (s *Service) Publish(ctx context.Context, opts PublishOptions) []Result {
	return []Result{
		s.Status(ctx),
		s.Add(ctx, GlobPathspec(opts.Pattern)),
		s.Add(ctx, opts.AuxFile),
		s.Commit(ctx, opts.Message),
		s.Push(ctx),
	}
}

// DefaultTimeLayout keeps the full clock resolution so two publishes never
// share a message.
const DefaultTimeLayout = "2006-01-02 15:04:05.000000000"

// CommitMessage joins prefix and now formatted with layout. An empty layout
// uses DefaultTimeLayout.
func CommitMessage(prefix, layout string, now time.Time) string {
	if layout == "" {
		layout = DefaultTimeLayout
	}
	return strings.TrimSpace(prefix + " " + now.Format(layout))
}

// StepName returns the git subcommand of r, such as "add" or "push".
func StepName(r Result) string {
	fields := strings.Fields(r.Command)
	if len(fields) < 2 {
		return r.Command
	}
	return fields[1]
}
