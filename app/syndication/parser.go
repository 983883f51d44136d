package syndication

import (
	"log/slog"
	"strings"

	"github.com/feedstash/feedstash/app/markup"
)

// Parser extracts a canonical feed document out of loosely-structured
// syndication markup. It is a forgiving first-match scanner, not a
// conformant feed parser: real-world feeds are frequently malformed (missing
// namespaces, broken entities, vendor extensions), so extraction degrades to
// empty fields instead of failing.
//
// Feed-level fields are taken from the first match anywhere in the raw
// document, before item spans are considered. A value appearing inside an
// early item can therefore be attributed to the feed level; downstream
// consumers rely on that behavior, keep it.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Run parses one raw feed body. It never fails; any input that contains no
// recognizable structure yields an empty document.
func (p *Parser) Run(data []byte) *Document {
	raw := string(data)
	lower := strings.ToLower(raw)

	doc := &Document{
		Title:       extractFirst(raw, lower, "title"),
		SiteURL:     extractLink(raw, lower),
		Description: extractFirst(raw, lower, "description", "subtitle"),
	}

	for _, sp := range itemSpans(lower) {
		doc.Items = append(doc.Items, parseItem(raw[sp.start:sp.end], lower[sp.start:sp.end]))
	}

	slog.Debug("Parsed feed", "title", doc.Title, "items", len(doc.Items))
	return doc
}

// Fields extracted into named Item fields; everything else found at item
// level goes into the Extra bag.
var knownItemFields = map[string]bool{
	"title":           true,
	"link":            true,
	"guid":            true,
	"id":              true,
	"pubdate":         true,
	"published":       true,
	"updated":         true,
	"dc:date":         true,
	"description":     true,
	"summary":         true,
	"content":         true,
	"content:encoded": true,
}

func parseItem(raw, lower string) Item {
	return Item{
		Title:     extractFirst(raw, lower, "title"),
		Link:      extractLink(raw, lower),
		Published: extractFirst(raw, lower, "pubdate", "published", "dc:date", "updated"),
		Summary:   extractFirst(raw, lower, "description", "summary", "content:encoded", "content"),
		GUID:      extractFirst(raw, lower, "guid", "id"),
		Extra:     extraFields(raw, lower),
	}
}

type span struct {
	start, end int
}

// itemSpans locates every item or entry container in document order. A
// missing close tag extends the last span to the end of the input.
func itemSpans(lower string) []span {
	var spans []span
	pos := 0
	for {
		iStart, iContent, iSelf, iOK := markup.NextTag(lower, "item", pos)
		eStart, eContent, eSelf, eOK := markup.NextTag(lower, "entry", pos)

		var name string
		var contentStart int
		var selfClosing bool
		switch {
		case !iOK && !eOK:
			return spans
		case iOK && (!eOK || iStart < eStart):
			name, contentStart, selfClosing = "item", iContent, iSelf
		default:
			name, contentStart, selfClosing = "entry", eContent, eSelf
		}

		if selfClosing {
			pos = contentStart
			continue
		}

		closeIdx := strings.Index(lower[contentStart:], "</"+name)
		if closeIdx < 0 {
			spans = append(spans, span{contentStart, len(lower)})
			return spans
		}
		closeStart := contentStart + closeIdx
		spans = append(spans, span{contentStart, closeStart})

		gt := strings.Index(lower[closeStart:], ">")
		if gt < 0 {
			return spans
		}
		pos = closeStart + gt + 1
	}
}

// extractFirst returns the trimmed content of whichever candidate element
// occurs earliest in the scanned text, or "" when none is found complete.
func extractFirst(raw, lower string, names ...string) string {
	bestStart := -1
	var bestValue string
	for _, name := range names {
		start, contentStart, selfClosing, ok := markup.NextTag(lower, name, 0)
		if !ok || selfClosing {
			continue
		}
		closeIdx := strings.Index(lower[contentStart:], "</"+name)
		if closeIdx < 0 {
			continue
		}
		if bestStart == -1 || start < bestStart {
			bestStart = start
			bestValue = strings.TrimSpace(raw[contentStart : contentStart+closeIdx])
		}
	}
	return bestValue
}

// extractLink handles both link conventions: element content (RSS) and an
// href attribute (Atom, where the element is usually self-closing).
func extractLink(raw, lower string) string {
	pos := 0
	for {
		start, contentStart, selfClosing, ok := markup.NextTag(lower, "link", pos)
		if !ok {
			return ""
		}
		attrs := markup.ParseAttrs(raw[start:contentStart])
		if selfClosing {
			if href := attrs["href"]; href != "" {
				return href
			}
			pos = contentStart
			continue
		}
		if closeIdx := strings.Index(lower[contentStart:], "</link"); closeIdx >= 0 {
			if inner := strings.TrimSpace(raw[contentStart : contentStart+closeIdx]); inner != "" {
				return inner
			}
		}
		if href := attrs["href"]; href != "" {
			return href
		}
		pos = contentStart
	}
}

// extraFields collects additional simple string-valued elements found in an
// item span. Known fields are skipped whole; elements whose content itself
// contains markup are descended into rather than recorded. First occurrence
// of a name wins.
func extraFields(raw, lower string) map[string]string {
	var extra map[string]string
	pos := 0
	for pos < len(lower) {
		idx := strings.Index(lower[pos:], "<")
		if idx < 0 {
			break
		}
		idx += pos
		if idx+1 >= len(lower) {
			break
		}
		if c := lower[idx+1]; c < 'a' || c > 'z' {
			pos = idx + 1
			continue
		}
		nameEnd := idx + 1
		for nameEnd < len(lower) && !isNameBoundary(lower[nameEnd]) {
			nameEnd++
		}
		name := lower[idx+1 : nameEnd]
		gt := strings.Index(lower[nameEnd:], ">")
		if gt < 0 {
			break
		}
		contentStart := nameEnd + gt + 1
		selfClosing := lower[contentStart-2] == '/'
		pos = contentStart
		if selfClosing {
			continue
		}

		closeIdx := strings.Index(lower[contentStart:], "</"+name)
		if closeIdx < 0 {
			continue
		}
		closeStart := contentStart + closeIdx

		if knownItemFields[name] {
			pos = closeStart + 1
			continue
		}

		value := strings.TrimSpace(raw[contentStart:closeStart])
		if value == "" || strings.Contains(value, "<") {
			// Empty or structured content: scan inside instead.
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		if _, seen := extra[name]; !seen {
			extra[name] = value
		}
		pos = closeStart + 1
	}
	return extra
}

func isNameBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '>', '/':
		return true
	}
	return false
}
