package validate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chmouel/lazyplaylist/internal/models"
)

const logRule = "=================================================="

// Report is the outcome of a validation run.
type Report struct {
	RunID      string
	Started    time.Time
	Results    []models.ProbeResult
	Valid      int
	Failed     int
	Cancelled  bool
	OutputPath string
	LogPath    string

	// Rejected holds the channels dropped by a filter before probing.
	Rejected    []models.ProbeResult
	RemoteTotal int
	Downloaded  int

	CSVValidPath    string
	CSVRejectedPath string
}

// LogFileName names the run log for a run started at t.
func LogFileName(t time.Time) string {
	return "validacion_" + t.Format("20060102_150405") + ".txt"
}

// Total is the number of channels considered.
func (r *Report) Total() int {
	return r.Valid + r.Failed
}

// WriteLog writes the run log: a header, then one block per channel.
func (r *Report) WriteLog(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "VALIDATION %s - %s\n", r.RunID, r.Started.Format(time.DateTime))
	fmt.Fprintln(bw, logRule)
	fmt.Fprintln(bw)
	for _, res := range r.Results {
		state := "FAILED"
		if res.Alive {
			state = "VALID"
		}
		fmt.Fprintf(bw, "%s: %s\n", state, res.Channel.Info)
		fmt.Fprintf(bw, "   URL: %s\n", res.Channel.URL)
		fmt.Fprintf(bw, "   reason: %s", res.Reason)
		if res.Status != 0 {
			fmt.Fprintf(bw, " (HTTP %d)", res.Status)
		}
		if res.Elapsed > 0 {
			fmt.Fprintf(bw, " in %s", res.Elapsed.Round(time.Millisecond))
		}
		fmt.Fprint(bw, "\n\n")
	}
	for _, res := range r.Rejected {
		fmt.Fprintf(bw, "FILTERED: %s\n", res.Channel.Info)
		fmt.Fprintf(bw, "   URL: %s\n", res.Channel.URL)
		fmt.Fprintf(bw, "   reason: %s\n\n", res.Reason)
	}
	if r.Cancelled {
		fmt.Fprintln(bw, "run cancelled before every channel was probed")
	}
	return bw.Flush()
}

// WriteLogFile writes the run log to path.
func (r *Report) WriteLogFile(path string) error {
	f, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("failed to create log %s: %w", path, err)
	}
	if err := r.WriteLog(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write log %s: %w", path, err)
	}
	return f.Close()
}

// WriteSummary prints the end-of-run totals.
func (r *Report) WriteSummary(w io.Writer) {
	fmt.Fprintln(w, logRule)
	if r.Cancelled {
		fmt.Fprintln(w, "Validation interrupted")
	} else {
		fmt.Fprintln(w, "Validation complete")
	}
	fmt.Fprintln(w, logRule)
	var lines []string
	if r.RemoteTotal > 0 {
		lines = append(lines, fmt.Sprintf("Remote downloaded:  %d/%d", r.Downloaded, r.RemoteTotal))
	}
	lines = append(lines,
		fmt.Sprintf("Channels processed: %d", r.Total()),
		fmt.Sprintf("Valid channels:     %d", r.Valid),
		fmt.Sprintf("Failed channels:    %d", r.Failed),
		fmt.Sprintf("Filtered out:       %d", len(r.Rejected)),
		fmt.Sprintf("Playlist written:   %s", r.OutputPath),
		fmt.Sprintf("Log written:        %s", r.LogPath),
	)
	if r.CSVValidPath != "" {
		lines = append(lines,
			fmt.Sprintf("CSV kept:           %s", r.CSVValidPath),
			fmt.Sprintf("CSV rejected:       %s", r.CSVRejectedPath),
		)
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))
	fmt.Fprintln(w, logRule)
}
