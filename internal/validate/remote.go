package validate

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const maxRawNameLen = 180

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// IsURL reports whether s is an absolute http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SplitURLs returns the URLs found in values, each of which may hold several
// URLs separated by whitespace or newlines. Anything that is not a URL is
// dropped.
func SplitURLs(values ...string) []string {
	var urls []string
	for _, v := range values {
		for _, field := range strings.Fields(v) {
			if IsURL(field) {
				urls = append(urls, field)
			}
		}
	}
	return urls
}

// ReadSourceList reads playlist URLs from the first column of a CSV file.
// Rows whose first cell is not a URL, a header included, are skipped.
func ReadSourceList(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var urls []string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return urls, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read source list %s: %w", path, err)
		}
		if len(record) == 0 {
			continue
		}
		if candidate := strings.TrimSpace(record[0]); IsURL(candidate) {
			urls = append(urls, candidate)
		}
	}
}

// Fetcher downloads remote playlists into a directory.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	dir        string
	now        func() time.Time
}

// NewFetcher returns a Fetcher saving into dir. timeout bounds the wait for
// response headers; the body may take longer.
func NewFetcher(timeout time.Duration, userAgent, dir string) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	return &Fetcher{
		httpClient: &http.Client{Transport: transport},
		userAgent:  userAgent,
		dir:        dir,
		now:        time.Now,
	}
}

// Fetch downloads rawURL and returns the path of the saved copy, named
// <unix time>_<sanitised base name>.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed for %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("download failed: HTTP %d for %s", resp.StatusCode, rawURL)
	}

	if err := os.MkdirAll(f.dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", f.dir, err)
	}
	dest := filepath.Join(f.dir, fmt.Sprintf("%d_%s", f.now().Unix(), RawFileName(rawURL)))
	out, err := os.Create(dest) //nolint:gosec
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return "", fmt.Errorf("download failed for %s: %w", rawURL, err)
	}
	return dest, out.Close()
}

// RawFileName derives a safe local file name from a playlist URL.
func RawFileName(rawURL string) string {
	base := ""
	if u, err := url.Parse(rawURL); err == nil {
		base = path.Base(u.Path)
		if unescaped, err := url.PathUnescape(base); err == nil {
			base = unescaped
		}
	}
	if base == "." || base == "/" {
		base = ""
	}
	name := strings.Trim(unsafeNameChars.ReplaceAllString(base, "_"), "_")
	if name == "" {
		name = "playlist.m3u"
	}
	if len(name) > maxRawNameLen {
		name = name[:maxRawNameLen]
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".m3u", ".m3u8", ".txt":
	default:
		name += ".m3u"
	}
	return name
}
