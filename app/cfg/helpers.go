package cfg

import "time"

// GetFetchTimeout returns the per-fetch timeout as time.Duration.
func (c *Cfg) GetFetchTimeout() time.Duration {
	if c.FetchTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.FetchTimeout) * time.Second
}
