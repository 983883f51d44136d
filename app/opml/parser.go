package opml

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/feedstash/feedstash/app/markup"
)

// DefaultTitle is used when the outline document carries no title element.
const DefaultTitle = "Untitled Subscriptions"

// ErrNoBody indicates the top-level body container could not be located.
// Every other malformation is tolerated and yields a partial tree.
var ErrNoBody = errors.New("body element not found")

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Run parses raw outline markup into a Document. Only a missing body
// container is fatal; unclosed or garbled outline elements degrade to
// partial trees instead of failing the whole document.
func (p *Parser) Run(data []byte) (*Document, error) {
	raw := string(data)
	lower := strings.ToLower(raw)

	_, bodyStart, _, ok := markup.NextTag(lower, "body", 0)
	if !ok {
		return nil, fmt.Errorf("parse outline: %w", ErrNoBody)
	}

	bodyEnd := strings.Index(lower[bodyStart:], "</body")
	if bodyEnd < 0 {
		bodyEnd = len(raw)
	} else {
		bodyEnd += bodyStart
	}

	doc := &Document{
		Title:    documentTitle(raw, lower, bodyStart),
		Outlines: parseOutlines(raw[bodyStart:bodyEnd]),
	}
	return doc, nil
}

// documentTitle extracts the first title element found before the body.
func documentTitle(raw, lower string, bodyStart int) string {
	start, contentStart, selfClosing, ok := markup.NextTag(lower, "title", 0)
	if !ok || start >= bodyStart || selfClosing {
		return DefaultTitle
	}
	end := strings.Index(lower[contentStart:], "</title")
	if end < 0 {
		return DefaultTitle
	}
	title := strings.TrimSpace(html.UnescapeString(raw[contentStart : contentStart+end]))
	if title == "" {
		return DefaultTitle
	}
	return title
}

// parseOutlines scans one nesting level for outline elements, recursing into
// container elements to build their children.
func parseOutlines(raw string) []Outline {
	lower := strings.ToLower(raw)
	var nodes []Outline

	pos := 0
	for {
		start, contentStart, selfClosing, ok := markup.NextTag(lower, "outline", pos)
		if !ok {
			break
		}
		node := newOutline(markup.ParseAttrs(raw[start:contentStart]))
		if selfClosing {
			nodes = append(nodes, node)
			pos = contentStart
			continue
		}
		inner, next := innerContent(raw, lower, contentStart)
		node.Outlines = parseOutlines(inner)
		nodes = append(nodes, node)
		pos = next
	}
	return nodes
}

// innerContent returns the content between an outline open tag and its
// matching close tag, accounting for nested outlines, plus the scan position
// just past the close tag. A missing close tag consumes the rest of the
// input, so unbalanced markup still yields a partial tree.
func innerContent(raw, lower string, from int) (string, int) {
	depth := 1
	pos := from
	for {
		closeStart := strings.Index(lower[pos:], "</outline")
		if closeStart < 0 {
			return raw[from:], len(raw)
		}
		closeStart += pos
		closeEnd := strings.Index(lower[closeStart:], ">")
		if closeEnd < 0 {
			closeEnd = len(raw)
		} else {
			closeEnd += closeStart + 1
		}

		openStart, openEnd, selfClosing, ok := markup.NextTag(lower, "outline", pos)
		if ok && openStart < closeStart {
			if !selfClosing {
				depth++
			}
			pos = openEnd
			continue
		}

		depth--
		if depth == 0 {
			return raw[from:closeStart], closeEnd
		}
		pos = closeEnd
	}
}

func newOutline(attrs map[string]string) Outline {
	node := Outline{
		Title:   attrs["title"],
		Text:    attrs["text"],
		Type:    attrs["type"],
		XMLURL:  attrs["xmlurl"],
		HTMLURL: attrs["htmlurl"],
	}
	if node.Text == "" {
		node.Text = node.Title
	}
	if node.Title == "" {
		node.Title = node.Text
	}
	return node
}
