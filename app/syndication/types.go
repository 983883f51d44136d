package syndication

// Document is the canonical form of one parsed syndication feed. Items keep
// document order, which is not necessarily chronological order.
type Document struct {
	Title       string `json:"title"`
	SiteURL     string `json:"site_url"`
	Description string `json:"description"`
	Items       []Item `json:"items"`
}

// Item is one feed entry. Published is the raw publication string as it
// appeared in the markup; formats vary by publisher and are not normalized.
// Extra collects any additional simple string-valued elements discovered in
// the item's markup.
type Item struct {
	Title     string            `json:"title"`
	Link      string            `json:"link"`
	Published string            `json:"published"`
	Summary   string            `json:"summary"`
	GUID      string            `json:"guid"`
	Extra     map[string]string `json:"extra,omitempty"`
}
