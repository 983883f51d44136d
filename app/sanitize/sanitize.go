// Package sanitize cleans text recovered from syndication markup: escaped
// literal blocks, residual tag syntax, and characters that cannot appear in
// filenames.
package sanitize

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// PlaceholderName substitutes for titles that sanitize down to nothing.
const PlaceholderName = "unnamed_feed"

const (
	cdataOpen  = "<![CDATA["
	cdataClose = "]]>"
)

var (
	unsafeChars    = regexp.MustCompile(`[/\\?%*:|"<>\s]+`)
	underscoreRuns = regexp.MustCompile(`_+`)
)

// StripEscapedBlocks removes CDATA wrappers while preserving their inner
// content. When the markers are unbalanced the marker tokens themselves are
// stripped rather than left in the output.
func StripEscapedBlocks(s string) string {
	for {
		start := strings.Index(s, cdataOpen)
		if start < 0 {
			break
		}
		end := strings.Index(s[start+len(cdataOpen):], cdataClose)
		if end < 0 {
			s = strings.ReplaceAll(s, cdataOpen, "")
			s = strings.ReplaceAll(s, cdataClose, "")
			break
		}
		end += start + len(cdataOpen)
		s = s[:start] + s[start+len(cdataOpen):end] + s[end+len(cdataClose):]
	}
	// Any close marker left at this point has no matching open marker.
	return strings.ReplaceAll(s, cdataClose, "")
}

// StripTags removes tag syntax, keeping text content. Entities are resolved
// as a side effect of tokenization.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<>&") {
		return s
	}
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(tokenizer.Text())
		}
	}
}

// CleanText is the per-field cleanup applied to every string recovered from
// a feed before persistence.
func CleanText(s string) string {
	return strings.TrimSpace(StripTags(StripEscapedBlocks(s)))
}

// ToSafeFilename maps arbitrary text to a filesystem-safe name. The mapping
// is deterministic and idempotent: applying it twice yields the same result
// as applying it once.
func ToSafeFilename(s string) string {
	s = StripTags(StripEscapedBlocks(s))
	s = norm.NFKC.String(s)
	s = unsafeChars.ReplaceAllString(s, "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_.")
	s = strings.ToLower(s)
	if s == "" {
		return PlaceholderName
	}
	return s
}
