package summarize

import (
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/feedstash/feedstash/app/sanitize"
)

// Extractor recovers the plain-text body of an item for the summarizer.
// Readability handles article-sized HTML; short or plain snippets fall back
// to a plain tag strip.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Run(content string) string {
	if !strings.Contains(content, "<") {
		return strings.TrimSpace(content)
	}

	article, err := readability.FromReader(strings.NewReader(content), nil)
	if err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return text
		}
	}
	return sanitize.CleanText(content)
}
