package models

import "time"

// Probe outcome reasons.
const (
	ReasonOK        = "ok"
	ReasonNoData    = "no_data"
	ReasonTimeout   = "timeout"
	ReasonSkipped   = "skipped"
	ReasonCancelled = "cancelled"
	ReasonError     = "error"

	// Reasons for channels dropped by a filter before probing.
	ReasonLanguageFilter = "lang_filter"
	ReasonCountryFilter  = "country_filter"
	ReasonGroupFilter    = "category_filter"
)

// ProbeResult records whether a channel stream answered.
type ProbeResult struct {
	Channel Channel
	Alive   bool
	Status  int    // HTTP status code, 0 when no response
	Reason  string // one of the Reason constants or http_<code>
	Elapsed time.Duration
}
