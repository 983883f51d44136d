package fetch

import (
	"time"

	"github.com/feedstash/feedstash/app/opml"
	"github.com/feedstash/feedstash/app/overrides"
	"github.com/feedstash/feedstash/app/summarize"
)

// DefaultTimeout bounds a single fetch when no other timeout is configured.
const DefaultTimeout = 10 * time.Second

// Options configures a run. Zero values fall back to sane defaults.
type Options struct {
	MaxConcurrent int
	Timeout       time.Duration
	UserAgent     string

	// Overrides is optional; nil overrides nothing.
	Overrides *overrides.Set
	// Summarizer is optional; when set, item summaries are generated and
	// attached to each item's Extra bag.
	Summarizer summarize.Summarizer
}

// Outcome is the result of one fetch-parse-sanitize-persist cycle. Exactly
// one Outcome is produced per input source.
type Outcome struct {
	Source      opml.Source
	Succeeded   bool
	Message     string
	StoragePath string
}

// Summary aggregates every outcome of a run. Total always equals the number
// of input sources; outcome order is completion order, not input order.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Outcomes  []Outcome
}
