// Package markup provides the low-level tag scanning shared by the outline
// and syndication parsers. It is deliberately not an XML parser: no
// namespace resolution, no validation, no entity table beyond the standard
// HTML one. Scanning is forgiving and never fails; callers that cannot find
// what they want leave fields empty.
package markup

import (
	"html"
	"strings"
)

// NextTag locates the next <name ...> open tag at or after from. The lower
// argument must be the lowercased form of the scanned text so tag name
// matching is case-insensitive. It returns the index of '<', the index just
// past '>', and whether the tag is self-closing.
func NextTag(lower, name string, from int) (start, end int, selfClosing, ok bool) {
	marker := "<" + name
	pos := from
	for {
		idx := strings.Index(lower[pos:], marker)
		if idx < 0 {
			return 0, 0, false, false
		}
		idx += pos
		after := idx + len(marker)
		if after < len(lower) && !isBoundary(lower[after]) {
			pos = after
			continue
		}
		gt := strings.Index(lower[after:], ">")
		if gt < 0 {
			// Truncated tag, treat the rest of the input as its body.
			return idx, len(lower), false, true
		}
		gt += after
		return idx, gt + 1, lower[gt-1] == '/', true
	}
}

func isBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '>', '/':
		return true
	}
	return false
}

// ParseAttrs reads key="value" pairs out of a raw open tag. Keys are
// lowercased so attribute matching is case-insensitive; values are
// entity-unescaped. Malformed pairs are skipped.
func ParseAttrs(tag string) map[string]string {
	attrs := make(map[string]string)
	i := 0
	// Skip the tag name itself.
	for i < len(tag) && !isSpace(tag[i]) && tag[i] != '>' {
		i++
	}
	for i < len(tag) {
		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		nameStart := i
		for i < len(tag) && !isSpace(tag[i]) && tag[i] != '=' && tag[i] != '>' && tag[i] != '/' {
			i++
		}
		name := strings.ToLower(tag[nameStart:i])
		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || tag[i] != '=' {
			if name == "" {
				i++
			}
			continue
		}
		i++
		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		if i >= len(tag) {
			break
		}
		var value string
		if tag[i] == '"' || tag[i] == '\'' {
			quote := tag[i]
			i++
			valueStart := i
			for i < len(tag) && tag[i] != quote {
				i++
			}
			value = tag[valueStart:i]
			if i < len(tag) {
				i++
			}
		} else {
			valueStart := i
			for i < len(tag) && !isSpace(tag[i]) && tag[i] != '>' {
				i++
			}
			value = tag[valueStart:i]
		}
		if name != "" {
			attrs[name] = html.UnescapeString(value)
		}
	}
	return attrs
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
