// Package menu implements the interactive playlist menu: list the playlists,
// edit the primary one, publish with git, or exit.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/chmouel/lazyplaylist/internal/git"
	log "github.com/chmouel/lazyplaylist/internal/log"
	"github.com/chmouel/lazyplaylist/internal/theme"
)

// Menu options.
const (
	OptionList    = "1"
	OptionEdit    = "2"
	OptionPublish = "3"
	OptionExit    = "4"
)

const clearSequence = "\033[H\033[2J"

// Config is everything the menu needs to know about the playlist directory.
type Config struct {
	WorkDir          string
	PrimaryFile      string
	Pattern          string
	AuxFile          string
	CommitPrefix     string
	CommitTimeFormat string
	ClearScreen      bool
	ShowIcons        bool
	Theme            string
}

// PrimaryPath is the file the edit option always opens.
func (c Config) PrimaryPath() string {
	return filepath.Join(c.WorkDir, c.PrimaryFile)
}

// Lister enumerates playlist names in a directory.
type Lister interface {
	List(dir, pattern string) ([]string, error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc func(dir, pattern string) ([]string, error)

// List calls f.
func (f ListerFunc) List(dir, pattern string) ([]string, error) {
	return f(dir, pattern)
}

// Editor opens a file and returns when the user is done with it.
type Editor interface {
	Open(ctx context.Context, path string) error
}

// Publisher runs the publish sequence.
type Publisher interface {
	Publish(ctx context.Context, opts git.PublishOptions) []git.Result
}

// Controller runs the menu loop.
type Controller struct {
	cfg       Config
	lister    Lister
	editor    Editor
	publisher Publisher

	in     *bufio.Reader
	out    io.Writer
	styles theme.Styles

	now        func() time.Time
	isTerminal func(w io.Writer) bool
	onPublish  func(results []git.Result)
}

// New builds a Controller reading selections from in and writing to out.
func New(cfg Config, lister Lister, ed Editor, pub Publisher, in io.Reader, out io.Writer) *Controller {
	return &Controller{
		cfg:        cfg,
		lister:     lister,
		editor:     ed,
		publisher:  pub,
		in:         bufio.NewReader(in),
		out:        out,
		styles:     theme.NewStyles(cfg.Theme),
		now:        time.Now,
		isTerminal: isTerminal,
	}
}

// OnPublish registers fn to receive the results of every publish.
func (c *Controller) OnPublish(fn func(results []git.Result)) {
	c.onPublish = fn
}

// Warn prints a styled notice line.
func (c *Controller) Warn(message, severity string) {
	printNotice(c.out, c.styles, message, severity)
}

// NewNotifier returns a git.NotifyFn printing notices to out the way the menu
// does.
func NewNotifier(out io.Writer, themeName string) git.NotifyFn {
	styles := theme.NewStyles(themeName)
	return func(message, severity string) {
		printNotice(out, styles, message, severity)
	}
}

func printNotice(out io.Writer, styles theme.Styles, message, severity string) {
	style := styles.Warn
	if severity == "error" {
		style = styles.Error
	}
	fmt.Fprintln(out, style.Render(message))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec
}

// Run shows the menu until the exit option is chosen, the input ends or ctx
// is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		c.render()
		selection, err := c.readLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if !c.dispatch(ctx, selection) {
			return nil
		}
	}
	return nil
}

// dispatch runs the action for selection and reports whether the loop goes on.
func (c *Controller) dispatch(ctx context.Context, selection string) bool {
	selection = strings.TrimSpace(selection)
	log.Printf("menu: selection %q", selection)

	switch selection {
	case OptionList:
		c.listAvailable()
	case OptionEdit:
		c.editPrimary(ctx)
	case OptionPublish:
		c.publishChanges(ctx)
	case OptionExit:
		return false
	default:
		return true
	}
	return c.pause()
}

func (c *Controller) render() {
	if c.cfg.ClearScreen && c.isTerminal(c.out) {
		fmt.Fprint(c.out, clearSequence)
	}
	fmt.Fprint(c.out, c.menuText())
}

func (c *Controller) menuText() string {
	s := c.styles
	var b strings.Builder
	fmt.Fprintln(&b, s.Title.Render("Playlist manager"))
	fmt.Fprintln(&b, s.Muted.Render(c.cfg.WorkDir))
	fmt.Fprintln(&b)
	entries := []struct{ key, label string }{
		{OptionList, fmt.Sprintf("List playlists (%s)", c.cfg.Pattern)},
		{OptionEdit, fmt.Sprintf("Edit %s", c.cfg.PrimaryFile)},
		{OptionPublish, "Publish changes (git add, commit, push)"},
		{OptionExit, "Exit"},
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "  %s %s\n", s.Key.Render(e.key+")"), s.Option.Render(e.label))
	}
	fmt.Fprintln(&b)
	fmt.Fprint(&b, "Select an option: ")
	return b.String()
}

// readLine returns the next input line of any length. A last line without a
// newline is still returned; io.EOF only comes once the input is drained.
func (c *Controller) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		return line, nil
	}
	return line, err
}

// pause waits for Enter. It reports false when the input has ended.
func (c *Controller) pause() bool {
	fmt.Fprint(c.out, c.styles.Muted.Render("Press Enter to continue..."))
	_, err := c.readLine()
	fmt.Fprintln(c.out)
	return err == nil
}

func (c *Controller) listAvailable() {
	names, err := c.lister.List(c.cfg.WorkDir, c.cfg.Pattern)
	if err != nil {
		c.Warn(err.Error(), "error")
		return
	}

	fmt.Fprintln(c.out, c.styles.Title.Render("Available playlists:"))
	if len(names) == 0 {
		fmt.Fprintln(c.out, c.styles.Muted.Render("  (none)"))
		return
	}
	for _, name := range names {
		prefix := ""
		if c.cfg.ShowIcons {
			prefix = iconPrefix(name)
		}
		fmt.Fprintf(c.out, "  %s%s\n", prefix, name)
	}
}

func (c *Controller) editPrimary(ctx context.Context) {
	path := c.cfg.PrimaryPath()
	fmt.Fprintln(c.out, c.styles.Info.Render("Opening "+path))

	err := c.editor.Open(ctx, path)
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		c.Warn(fmt.Sprintf("editor exited with status %d", exitErr.ExitCode()), "warn")
	default:
		c.Warn(err.Error(), "error")
	}
}

func (c *Controller) publishChanges(ctx context.Context) {
	message := git.CommitMessage(c.cfg.CommitPrefix, c.cfg.CommitTimeFormat, c.now())
	results := c.publisher.Publish(ctx, git.PublishOptions{
		Pattern: c.cfg.Pattern,
		AuxFile: c.cfg.AuxFile,
		Message: message,
	})
	if c.onPublish != nil {
		c.onPublish(results)
	}
	fmt.Fprintln(c.out, c.styles.Success.Render("Done."))
}
