package overrides

import "time"

// Defaults applies to every feed that has no entry of its own.
type Defaults struct {
	Timeout int `yaml:"timeout"` // seconds
}

// FeedOverride adjusts fetching for a single feed, keyed by its URL.
type FeedOverride struct {
	URL      string `yaml:"url"`
	Disabled bool   `yaml:"disabled"`
	Timeout  int    `yaml:"timeout"` // seconds
}

// Set is a loaded overrides file. A nil *Set is valid and overrides nothing.
type Set struct {
	defaults Defaults
	byURL    map[string]FeedOverride
}

// Disabled reports whether the feed at url is switched off.
func (s *Set) Disabled(url string) bool {
	if s == nil {
		return false
	}
	return s.byURL[url].Disabled
}

// TimeoutFor resolves the fetch timeout for url: per-feed override first,
// then the file's defaults, then fallback.
func (s *Set) TimeoutFor(url string, fallback time.Duration) time.Duration {
	if s == nil {
		return fallback
	}
	if o, ok := s.byURL[url]; ok && o.Timeout > 0 {
		return time.Duration(o.Timeout) * time.Second
	}
	if s.defaults.Timeout > 0 {
		return time.Duration(s.defaults.Timeout) * time.Second
	}
	return fallback
}
