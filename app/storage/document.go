package storage

import (
	"time"

	"github.com/feedstash/feedstash/app/opml"
	"github.com/feedstash/feedstash/app/syndication"
)

// Document is the persisted record for one successfully fetched source: the
// sanitized feed plus enough provenance to trace it back to the outline.
type Document struct {
	SourceTitle string                `json:"source_title"`
	FeedURL     string                `json:"feed_url"`
	SiteURL     string                `json:"site_url,omitempty"`
	Categories  []string              `json:"categories,omitempty"`
	FetchedAt   time.Time             `json:"fetched_at"`
	Feed        *syndication.Document `json:"feed"`
}

func NewDocument(src opml.Source, feed *syndication.Document) *Document {
	return &Document{
		SourceTitle: src.Title,
		FeedURL:     src.FeedURL,
		SiteURL:     src.SiteURL,
		Categories:  src.Categories,
		FetchedAt:   time.Now().UTC(),
		Feed:        feed,
	}
}
