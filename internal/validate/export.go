package validate

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/chmouel/lazyplaylist/internal/models"
)

// CSV export file names, written into Options.CSVDir.
const (
	ValidCSVName    = "filtered_valid_m3u.csv"
	RejectedCSVName = "filtered_out.csv"
)

var csvColumns = []string{"name", "url", "country", "language", "category", "quality", "tvg_id", "tvg_name", "tvg_logo"}

func channelRecord(ch models.Channel) []string {
	return []string{ch.Name, ch.URL, ch.Country, ch.Language, ch.Group, ch.Quality, ch.TvgID, ch.TvgName, ch.TvgLogo}
}

// WriteValidCSV writes one row per kept channel.
func WriteValidCSV(w io.Writer, channels []models.Channel) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	for _, ch := range channels {
		if err := cw.Write(channelRecord(ch)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRejectedCSV writes one row per dropped channel with the reason and the
// HTTP status, left empty when no response was received.
func WriteRejectedCSV(w io.Writer, results []models.ProbeResult) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, csvColumns...), "reject_reason", "http_status")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, res := range results {
		status := ""
		if res.Status != 0 {
			status = strconv.Itoa(res.Status)
		}
		if err := cw.Write(append(channelRecord(res.Channel), res.Reason, status)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeCSVFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
