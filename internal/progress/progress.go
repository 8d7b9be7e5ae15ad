// Package progress shows validate runs: a bubbletea view with a spinner and a
// progress bar on terminals, plain lines elsewhere.
package progress

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"

	"github.com/chmouel/lazyplaylist/internal/theme"
	"github.com/chmouel/lazyplaylist/internal/validate"
)

const (
	recentLimit  = 6
	defaultWidth = 80
	ellipsis     = "…"
)

type (
	// EventMsg carries a validate.Event into the program.
	EventMsg validate.Event

	// FinishedMsg ends the program.
	FinishedMsg struct {
		Report *validate.Report
		Err    error
	}
)

// Model is the bubbletea model of a validate run.
type Model struct {
	spinner  spinner.Model
	progress progress.Model
	styles   theme.Styles
	cancel   context.CancelFunc

	total    int
	done     int
	valid    int
	failed   int
	warnings []string
	recent   []string
	width    int
	stopping bool
	finished bool
	report   *validate.Report
	err      error
}

// NewModel builds the model. cancel is called when the user interrupts.
func NewModel(themeName string, cancel context.CancelFunc) *Model {
	styles := theme.NewStyles(themeName)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Title

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	if cancel == nil {
		cancel = func() {}
	}
	return &Model{
		spinner:  sp,
		progress: prog,
		styles:   styles,
		cancel:   cancel,
		width:    defaultWidth,
	}
}

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.stopping {
				m.stopping = true
				m.cancel()
			}
		}
		return m, nil

	case EventMsg:
		m.apply(validate.Event(msg))
		if m.total == 0 {
			return m, nil
		}
		return m, m.progress.SetPercent(float64(m.done) / float64(m.total))

	case FinishedMsg:
		m.finished = true
		m.report = msg.Report
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *Model) apply(e validate.Event) {
	switch e.Kind {
	case validate.EventStart:
		m.total = e.Total
	case validate.EventWarning:
		m.warnings = append(m.warnings, e.Message)
	case validate.EventProbed:
		m.done = e.Done
		m.total = e.Total
		if e.Result.Alive {
			m.valid++
		} else {
			m.failed++
		}
		m.recent = append(m.recent, ResultLine(e))
		if len(m.recent) > recentLimit {
			m.recent = m.recent[len(m.recent)-recentLimit:]
		}
	case validate.EventDone:
		m.done = e.Done
	}
}

// View renders the model.
func (m *Model) View() string {
	if m.finished {
		return ""
	}
	var b strings.Builder
	title := "Validating channels"
	if m.stopping {
		title = "Stopping, waiting for running probes"
	}
	fmt.Fprintf(&b, "%s %s\n\n", m.spinner.View(), m.styles.Title.Render(title))
	for _, w := range m.warnings {
		fmt.Fprintln(&b, m.styles.Warn.Render(truncate.StringWithTail(w, uint(max(m.width, 10)), ellipsis)))
	}

	percent := 0.0
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}
	fmt.Fprintf(&b, "%s %d/%d\n", m.progress.ViewAs(percent), m.done, m.total)
	fmt.Fprintf(&b, "%s  %s\n\n",
		m.styles.Success.Render(fmt.Sprintf("valid %d", m.valid)),
		m.styles.Error.Render(fmt.Sprintf("failed %d", m.failed)))

	for _, line := range m.recent {
		fmt.Fprintln(&b, m.styles.Muted.Render(truncate.StringWithTail(line, uint(max(m.width, 10)), ellipsis)))
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, m.styles.Muted.Render("ctrl+c stops and keeps the channels checked so far"))
	return b.String()
}

// Result returns what the FinishedMsg carried.
func (m *Model) Result() (*validate.Report, error) {
	return m.report, m.err
}

// Counts returns the valid and failed channels seen so far.
func (m *Model) Counts() (valid, failed int) {
	return m.valid, m.failed
}

// ResultLine formats a probed-channel event as one line.
func ResultLine(e validate.Event) string {
	state := "FAIL"
	if e.Result.Alive {
		state = "OK  "
	}
	return fmt.Sprintf("[%d/%d] %s %s (%s)", e.Done, e.Total, state, e.Result.Channel.Name, e.Result.Reason)
}

// Run runs a validation with opts behind the interactive view. Interrupting
// the view cancels the outstanding probes; the run still returns its report.
func Run(ctx context.Context, opts validate.Options, themeName string, in io.Reader, out io.Writer) (*validate.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(themeName, cancel)
	p := tea.NewProgram(model, tea.WithInput(in), tea.WithOutput(out))

	v := validate.New(opts, func(e validate.Event) { p.Send(EventMsg(e)) })
	results := make(chan FinishedMsg, 1)
	go func() {
		report, err := v.Run(ctx)
		msg := FinishedMsg{Report: report, Err: err}
		results <- msg
		p.Send(msg)
	}()

	if _, err := p.Run(); err != nil {
		// an interrupted program still waits for the run to write what it has
		cancel()
		res := <-results
		if res.Report == nil {
			return nil, err
		}
		return res.Report, res.Err
	}
	res := <-results
	return res.Report, res.Err
}

// Plain returns an event handler printing one line per event to out, for runs
// whose output is not a terminal.
func Plain(out io.Writer, width int) func(validate.Event) {
	if width <= 0 {
		width = defaultWidth
	}
	start := time.Now()
	return func(e validate.Event) {
		var line string
		switch e.Kind {
		case validate.EventStart, validate.EventWarning:
			line = e.Message
		case validate.EventProbed:
			line = ResultLine(e)
		case validate.EventDone:
			line = fmt.Sprintf("finished %d channels in %s", e.Total, time.Since(start).Round(time.Millisecond))
		}
		fmt.Fprintln(out, truncate.StringWithTail(line, uint(width), ellipsis)) //nolint:gosec
	}
}
