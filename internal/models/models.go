package models

import "time"

// SentinelTime is the timestamp assigned to records whose source provided no
// parseable publish date. Year 1900 keeps unknown-dated records sorted after
// everything real under newest-first ordering.
var SentinelTime = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// UnknownDateLabel is what the presentation layer shows instead of the sentinel.
const UnknownDateLabel = "Unknown"

// DisplayDateFormat renders publish dates as "Jan 02, 2006".
const DisplayDateFormat = "Jan 02, 2006"

// SourceKind distinguishes fixed-URL feeds from templated search feeds.
type SourceKind string

const (
	KindStaticURL     SourceKind = "static_url"
	KindQueryTemplate SourceKind = "query_template"
)

// FeedSource maps a logical source name to a feed endpoint. For
// query-template sources the endpoint contains a %s placeholder that receives
// the URL-escaped search term.
type FeedSource struct {
	Name     string     `json:"name" yaml:"name"`
	Endpoint string     `json:"endpoint" yaml:"url"`
	Kind     SourceKind `json:"kind" yaml:"kind"`
}

// WatchlistGroup is a named, ordered collection of company names or search
// terms scanned together as one unit.
type WatchlistGroup struct {
	Name      string   `json:"name" yaml:"name"`
	Companies []string `json:"companies" yaml:"companies"`
}

// RawEntry is the provisional result of parsing one feed entry, before
// normalization. Optional fields are pointers or empty strings so the
// normalizer handles every present/absent combination explicitly.
type RawEntry struct {
	Title     string
	Link      string
	Published *time.Time
	Publisher string
}

// HeadlineRecord is the canonical unit flowing through the pipeline.
// Immutable once created; a record always carries a non-empty headline and
// link, and PublishedAt is never zero (the sentinel substitutes for missing
// dates).
type HeadlineRecord struct {
	Source      string    `json:"source"`
	Company     string    `json:"company,omitempty"`
	Headline    string    `json:"headline"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
	DisplayDate string    `json:"display_date"`
}

// HasKnownDate reports whether the record carries a real publish date rather
// than the sentinel.
func (r HeadlineRecord) HasKnownDate() bool {
	return !r.PublishedAt.Equal(SentinelTime)
}

// SortKey selects the ordering applied by the filter engine.
type SortKey string

const (
	SortNewestFirst SortKey = "newest_first"
	SortBySource    SortKey = "by_source"
	SortByCompany   SortKey = "by_company"
)

// FilterState is the request-scoped filter configuration. It is rebuilt per
// query and never shared between scans.
type FilterState struct {
	Keyword   string
	Whitelist []string
	Blacklist []string
	SortKey   SortKey
}

// AlertTrigger controls when the dispatcher fires.
type AlertTrigger string

const (
	TriggerNever         AlertTrigger = "never"
	TriggerOnEverySearch AlertTrigger = "on_every_search"
)

// AlertPolicy decides whether an alert payload is built and how many records
// it includes.
type AlertPolicy struct {
	Enabled      bool
	Trigger      AlertTrigger
	PayloadLimit int
}

// AlertPayload is handed to the transport collaborator for delivery. The
// dispatcher builds it; it performs no I/O itself.
type AlertPayload struct {
	ID          string    `json:"id"`
	Group       string    `json:"group"`
	Count       int       `json:"count"`
	Headlines   []string  `json:"headlines"`
	GeneratedAt time.Time `json:"generated_at"`
}

// FetchError tags a per-source failure with the source that produced it.
// It is contained at the fetcher boundary and never aborts sibling fetches.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return e.Source + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ScanResult is the outcome of one aggregation run: the filtered, ordered
// record set plus the distinct sources observed (for filter controls) and the
// per-source failures that were contained along the way. A new scan replaces
// the prior result entirely.
type ScanResult struct {
	Group     string           `json:"group"`
	Records   []HeadlineRecord `json:"records"`
	Sources   []string         `json:"sources"`
	Failures  []string         `json:"failures,omitempty"`
	FetchedAt time.Time        `json:"fetched_at"`
}
