package models

import "time"

// ProbeOutcome tags how a probe of a candidate URL concluded.
type ProbeOutcome string

const (
	// ProbeOutcomeOK means the page was fetched and classified.
	ProbeOutcomeOK ProbeOutcome = "ok"
	// ProbeOutcomeFetchFailed means all fetch attempts were exhausted. No
	// availability claim is made; IsAvailable is false by convention only.
	ProbeOutcomeFetchFailed ProbeOutcome = "fetch_failed"
	// ProbeOutcomeParseUnavailable means the page was fetched but the
	// classifier could not interpret it.
	ProbeOutcomeParseUnavailable ProbeOutcome = "parse_unavailable"
)

// ProbeResult is the outcome of checking one candidate URL at one point in
// time. Immutable once produced; persisted as an append-only history row keyed
// by (task, URL, time).
type ProbeResult struct {
	URL         string                 `json:"url"`
	Title       string                 `json:"title,omitempty"`
	IsAvailable bool                   `json:"is_available"`
	Price       *float64               `json:"price,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	Outcome     ProbeOutcome           `json:"outcome"`
}

// Candidate is a (title, URL) pair returned by search, not yet confirmed
// relevant.
type Candidate struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}
