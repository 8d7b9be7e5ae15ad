// Package playlist enumerates, parses and writes extended M3U channel lists.
package playlist

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/chmouel/lazyplaylist/internal/models"
)

const (
	headerTag = "#EXTM3U"
	extinfTag = "#EXTINF"

	// DefaultPattern matches the channel lists kept in the working directory.
	DefaultPattern = "*.m3u"
)

var attrPattern = regexp.MustCompile(`([A-Za-z0-9_-]+)="([^"]*)"`)

var qualityTags = func() map[string]*regexp.Regexp {
	tags := map[string]*regexp.Regexp{}
	for _, tag := range []string{"UHD", "4K", "1080", "720", "HD", "FHD", "SD", "HEVC", "H265"} {
		tags[tag] = regexp.MustCompile(`(?i)\b` + tag + `\b`)
	}
	return tags
}()

// List returns the names of the regular files in dir whose base name matches
// pattern, sorted lexicographically.
func List(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid playlist pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if ok, _ := filepath.Match(pattern, entry.Name()); ok {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ParseFile parses the playlist at path. Each channel records the file's base
// name as its source.
func ParseFile(path string) ([]models.Channel, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	channels, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	source := filepath.Base(path)
	for i := range channels {
		channels[i].Source = source
	}
	return channels, nil
}

// Parse reads an extended M3U stream. The #EXTM3U header is optional. For every
// #EXTINF line the next non-empty line that is not a comment is taken as the
// stream URL; lines outside that pairing are ignored.
func Parse(r io.Reader) ([]models.Channel, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		channels []models.Channel
		pending  string
	)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, extinfTag):
			pending = line
		case strings.HasPrefix(line, "#"):
			continue
		case pending != "":
			channels = append(channels, newChannel(pending, line))
			pending = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return channels, nil
}

func newChannel(info, streamURL string) models.Channel {
	ch := models.Channel{Info: info, URL: streamURL}

	for _, m := range attrPattern.FindAllStringSubmatch(info, -1) {
		value := strings.TrimSpace(m[2])
		switch strings.ToLower(m[1]) {
		case "tvg-id":
			ch.TvgID = value
		case "tvg-name":
			ch.TvgName = value
		case "tvg-logo":
			ch.TvgLogo = value
		case "group-title":
			ch.Group = value
		case "country":
			ch.Country = value
		case "tvg-country":
			if ch.Country == "" {
				ch.Country = value
			}
		case "language":
			ch.Language = value
		case "tvg-language":
			if ch.Language == "" {
				ch.Language = value
			}
		}
	}

	ch.Name = displayName(info, streamURL)
	ch.Quality = Quality(info)
	return ch
}

// Quality returns the resolution and codec tags found as whole words in an
// #EXTINF line, upper-cased, sorted and joined by "/".
func Quality(info string) string {
	var found []string
	for tag, re := range qualityTags {
		if re.MatchString(info) {
			found = append(found, tag)
		}
	}
	sort.Strings(found)
	return strings.Join(found, "/")
}

// displayName takes the title after the last comma that is outside quotes,
// then falls back to the URL's base name.
func displayName(info, streamURL string) string {
	inQuote := false
	comma := -1
	for i, r := range info {
		switch r {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				comma = i
			}
		}
	}
	if comma >= 0 {
		if name := strings.TrimSpace(info[comma+1:]); name != "" {
			return name
		}
	}

	if u, err := url.Parse(streamURL); err == nil && u.Path != "" {
		base := path.Base(u.Path)
		base = strings.TrimSuffix(base, path.Ext(base))
		if base != "" && base != "." && base != "/" {
			return base
		}
	}
	return "Unknown"
}

// Write emits channels as an extended M3U document, keeping each original
// #EXTINF line.
func Write(w io.Writer, channels []models.Channel) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, headerTag); err != nil {
		return err
	}
	for _, ch := range channels {
		info := ch.Info
		if info == "" {
			info = fmt.Sprintf("%s:-1,%s", extinfTag, ch.Name)
		}
		if _, err := fmt.Fprintf(bw, "%s\n%s\n", info, ch.URL); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes channels to path, replacing any previous content.
func WriteFile(path string, channels []models.Channel) error {
	f, err := os.Create(path) //nolint:gosec
	if err != nil {
		return err
	}
	if err := Write(f, channels); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Dedupe drops channels that repeat an earlier one's canonical key, keeping
// the first occurrence.
func Dedupe(channels []models.Channel) []models.Channel {
	seen := make(map[string]struct{}, len(channels))
	out := make([]models.Channel, 0, len(channels))
	for _, ch := range channels {
		key := CanonicalKey(ch)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ch)
	}
	return out
}

// CanonicalKey identifies a channel by normalised name, stream host, group,
// language and country.
func CanonicalKey(ch models.Channel) string {
	name := strings.ToLower(strings.Join(strings.Fields(ch.Name), " "))
	host := ""
	if u, err := url.Parse(ch.URL); err == nil {
		host = strings.ToLower(u.Host)
	}
	return strings.Join([]string{
		name,
		host,
		normalizedAttr(ch, "group-title"),
		normalizedAttr(ch, "language"),
		normalizedAttr(ch, "country"),
	}, "|")
}

func normalizedAttr(ch models.Channel, key string) string {
	return strings.ToLower(strings.TrimSpace(ch.Attr(key)))
}

// Filter selects channels by language, country and group-title, ignoring
// case. An empty list accepts every value.
type Filter struct {
	Languages []string
	Countries []string
	Groups    []string
}

// Empty reports whether the filter accepts every channel.
func (f Filter) Empty() bool {
	return len(f.Languages) == 0 && len(f.Countries) == 0 && len(f.Groups) == 0
}

// Match reports whether ch passes the filter and, when it does not, the reason
// it was dropped. A channel without a language or country attribute still
// matches when its name carries the tag, as in "TV5 (fr)" or "CBC [CA]".
func (f Filter) Match(ch models.Channel) (bool, string) {
	name := strings.ToLower(ch.Name)
	if len(f.Languages) > 0 && !matchesTag(normalizedAttr(ch, "language"), name, f.Languages, "(", ")") {
		return false, models.ReasonLanguageFilter
	}
	if len(f.Countries) > 0 && !matchesTag(normalizedAttr(ch, "country"), name, f.Countries, "[", "]") {
		return false, models.ReasonCountryFilter
	}
	if len(f.Groups) > 0 && !matchesTag(normalizedAttr(ch, "group-title"), "", f.Groups, "", "") {
		return false, models.ReasonGroupFilter
	}
	return true, ""
}

func matchesTag(value, name string, wanted []string, open, closing string) bool {
	for _, w := range wanted {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if value == w {
			return true
		}
		if open != "" && strings.Contains(name, open+w+closing) {
			return true
		}
	}
	return false
}
