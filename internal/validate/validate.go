// Package validate rebuilds the primary playlist from source playlists,
// keeping only the channels whose streams answer.
package validate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	log "github.com/chmouel/lazyplaylist/internal/log"
	"github.com/chmouel/lazyplaylist/internal/models"
	"github.com/chmouel/lazyplaylist/internal/playlist"
)

// Options configures a validation run. Relative paths are resolved against
// WorkDir.
type Options struct {
	WorkDir     string
	Pattern     string
	PrimaryFile string
	Sources     []string // empty means every playlist but the primary and the output
	Output      string
	LogDir      string
	Timeout     time.Duration
	Concurrency int
	UserAgent   string
	MinBytes    int
	SkipProbe   bool
	Dedupe      bool
	Groups      []string
	Languages   []string
	Countries   []string

	// RemoteSources are playlist URLs downloaded into RawDir and read after
	// the local sources.
	RemoteSources []string
	RawDir        string
	// CSVDir receives the kept and rejected channel exports; empty disables
	// them.
	CSVDir string
}

// EventKind tells what an Event reports.
type EventKind int

// Event kinds.
const (
	EventStart EventKind = iota
	EventWarning
	EventProbed
	EventDone
)

// Event is a progress update. Done and Total count probed channels.
type Event struct {
	Kind    EventKind
	Message string
	Result  models.ProbeResult
	Done    int
	Total   int
}

// Validator runs validations.
type Validator struct {
	opts    Options
	prober  *Prober
	fetcher *Fetcher
	onEvent func(Event)
	eventMu sync.Mutex

	now   func() time.Time
	newID func() string
}

// New builds a Validator. onEvent may be nil; it is never called concurrently.
func New(opts Options, onEvent func(Event)) *Validator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.Output == "" {
		opts.Output = opts.PrimaryFile
	}
	if opts.RawDir == "" {
		opts.RawDir = "RAW"
	}
	return &Validator{
		opts:    opts,
		prober:  NewProber(opts.Timeout, opts.UserAgent, opts.MinBytes),
		fetcher: NewFetcher(opts.Timeout, opts.UserAgent, filepath.Join(opts.WorkDir, opts.RawDir)),
		onEvent: onEvent,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (v *Validator) emit(e Event) {
	if v.onEvent == nil {
		return
	}
	v.eventMu.Lock()
	defer v.eventMu.Unlock()
	v.onEvent(e)
}

func (v *Validator) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(v.opts.WorkDir, path)
}

// SourceNames returns the playlists a run reads.
func (v *Validator) SourceNames() ([]string, error) {
	if len(v.opts.Sources) > 0 {
		return v.opts.Sources, nil
	}
	names, err := playlist.List(v.opts.WorkDir, v.opts.Pattern)
	if err != nil {
		return nil, err
	}
	output := filepath.Base(v.opts.Output)
	sources := make([]string, 0, len(names))
	for _, name := range names {
		if name == v.opts.PrimaryFile || name == output {
			continue
		}
		sources = append(sources, name)
	}
	return sources, nil
}

// LoadChannels parses every local source, then every remote source, and
// applies the filters and the dedupe. It also returns the channels dropped by
// a filter, as results carrying the filter reason, and the number of remote
// sources downloaded. Missing, unreadable or undownloadable sources are
// reported as warnings and skipped.
func (v *Validator) LoadChannels(ctx context.Context) ([]models.Channel, []models.ProbeResult, int, error) {
	sources, err := v.SourceNames()
	if err != nil {
		return nil, nil, 0, err
	}

	var channels []models.Channel
	for _, source := range sources {
		path := v.resolve(source)
		if _, err := os.Stat(path); err != nil {
			v.emit(Event{Kind: EventWarning, Message: fmt.Sprintf("source not found: %s", source)})
			continue
		}
		channels = append(channels, v.parseSource(source, path)...)
	}

	downloaded := 0
	for _, rawURL := range v.opts.RemoteSources {
		if ctx.Err() != nil {
			break
		}
		path, err := v.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			v.emit(Event{Kind: EventWarning, Message: err.Error()})
			continue
		}
		downloaded++
		log.Printf("validate: downloaded %s to %s", rawURL, path)
		channels = append(channels, v.parseSource(rawURL, path)...)
	}

	filter := playlist.Filter{Languages: v.opts.Languages, Countries: v.opts.Countries, Groups: v.opts.Groups}
	var rejected []models.ProbeResult
	if !filter.Empty() {
		kept := channels[:0]
		for _, ch := range channels {
			if ok, reason := filter.Match(ch); !ok {
				rejected = append(rejected, models.ProbeResult{Channel: ch, Reason: reason})
				continue
			}
			kept = append(kept, ch)
		}
		channels = kept
		log.Printf("validate: filters kept %d channels, rejected %d", len(channels), len(rejected))
	}

	if v.opts.Dedupe {
		channels = playlist.Dedupe(channels)
	}
	return channels, rejected, downloaded, nil
}

func (v *Validator) parseSource(name, path string) []models.Channel {
	parsed, err := playlist.ParseFile(path)
	if err != nil {
		v.emit(Event{Kind: EventWarning, Message: err.Error()})
		return nil
	}
	log.Printf("validate: %s has %d channels", name, len(parsed))
	return parsed
}

// Run loads the channels, probes them and writes the output playlist and the
// run log. Cancelling ctx stops outstanding probes; what was probed is still
// written.
func (v *Validator) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:   v.newID(),
		Started: v.now(),
	}

	channels, rejected, downloaded, err := v.LoadChannels(ctx)
	if err != nil {
		return nil, err
	}
	report.Rejected = rejected
	report.RemoteTotal = len(v.opts.RemoteSources)
	report.Downloaded = downloaded

	v.emit(Event{Kind: EventStart, Total: len(channels), Message: fmt.Sprintf("validating %d channels", len(channels))})
	report.Results = v.probeAll(ctx, channels)
	report.Cancelled = ctx.Err() != nil

	alive := make([]models.Channel, 0, len(report.Results))
	for _, r := range report.Results {
		if r.Alive {
			alive = append(alive, r.Channel)
			report.Valid++
		} else {
			report.Failed++
		}
	}

	report.OutputPath = v.resolve(v.opts.Output)
	if err := playlist.WriteFile(report.OutputPath, alive); err != nil {
		return report, err
	}

	logDir := v.resolve(v.opts.LogDir)
	if logDir == "" {
		logDir = v.opts.WorkDir
	}
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return report, fmt.Errorf("failed to create %s: %w", logDir, err)
	}
	report.LogPath = filepath.Join(logDir, LogFileName(report.Started))
	if err := report.WriteLogFile(report.LogPath); err != nil {
		return report, err
	}

	if v.opts.CSVDir != "" {
		if err := v.writeCSV(report, alive); err != nil {
			return report, err
		}
	}

	v.emit(Event{Kind: EventDone, Done: len(report.Results), Total: len(report.Results)})
	return report, nil
}

func (v *Validator) probeAll(ctx context.Context, channels []models.Channel) []models.ProbeResult {
	results := make([]models.ProbeResult, len(channels))
	total := len(channels)

	if v.opts.SkipProbe {
		for i, ch := range channels {
			results[i] = models.ProbeResult{Channel: ch, Alive: true, Reason: models.ReasonSkipped}
			v.emit(Event{Kind: EventProbed, Result: results[i], Done: i + 1, Total: total})
		}
		return results
	}

	var done atomic.Int32
	var g errgroup.Group
	g.SetLimit(v.opts.Concurrency)
	for i, ch := range channels {
		if ctx.Err() != nil {
			results[i] = models.ProbeResult{Channel: ch, Reason: models.ReasonCancelled}
			continue
		}
		g.Go(func() error {
			results[i] = v.prober.Probe(ctx, ch)
			n := done.Add(1)
			v.emit(Event{Kind: EventProbed, Result: results[i], Done: int(n), Total: total})
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (v *Validator) writeCSV(report *Report, alive []models.Channel) error {
	dir := v.resolve(v.opts.CSVDir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	report.CSVValidPath = filepath.Join(dir, ValidCSVName)
	if err := writeCSVFile(report.CSVValidPath, func(w io.Writer) error {
		return WriteValidCSV(w, alive)
	}); err != nil {
		return err
	}

	dropped := append([]models.ProbeResult{}, report.Rejected...)
	for _, r := range report.Results {
		if !r.Alive {
			dropped = append(dropped, r)
		}
	}
	report.CSVRejectedPath = filepath.Join(dir, RejectedCSVName)
	return writeCSVFile(report.CSVRejectedPath, func(w io.Writer) error {
		return WriteRejectedCSV(w, dropped)
	})
}
