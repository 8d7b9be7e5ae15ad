// Package models defines the value types shared between lazyplaylist packages.
package models

// Channel is one entry of an extended M3U playlist: the #EXTINF line and the
// stream URL that follows it.
type Channel struct {
	Name     string
	URL      string
	Info     string // raw #EXTINF line, written back unchanged
	TvgID    string
	TvgName  string
	TvgLogo  string
	Group    string // group-title
	Country  string
	Language string
	Quality  string // tags such as HD/1080 seen in the #EXTINF line, joined by /
	Source   string // playlist file the entry came from
}

// Attr returns the EXTINF attribute with the given key, as parsed.
func (c Channel) Attr(key string) string {
	switch key {
	case "tvg-id":
		return c.TvgID
	case "tvg-name":
		return c.TvgName
	case "tvg-logo":
		return c.TvgLogo
	case "group-title":
		return c.Group
	case "country", "tvg-country":
		return c.Country
	case "language", "tvg-language":
		return c.Language
	case "quality":
		return c.Quality
	}
	return ""
}
