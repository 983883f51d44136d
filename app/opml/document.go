package opml

import "slices"

// Flatten projects the outline tree into a flat list of feed sources in
// pre-order. Every node with a feed URL becomes one Source; a node's own
// title joins the category path only when the node has children. Duplicate
// feed URLs are deliberately kept: a feed may sit in several categories.
func (d *Document) Flatten() []Source {
	var sources []Source
	collectSources(d.Outlines, nil, &sources)
	return sources
}

// FilterByCategory returns the flattened sources whose category path
// contains name. Matching is exact and case-sensitive.
func (d *Document) FilterByCategory(name string) []Source {
	var filtered []Source
	for _, src := range d.Flatten() {
		if slices.Contains(src.Categories, name) {
			filtered = append(filtered, src)
		}
	}
	return filtered
}

func collectSources(nodes []Outline, path []string, out *[]Source) {
	for _, node := range nodes {
		if node.XMLURL != "" {
			*out = append(*out, Source{
				Title:      node.Title,
				FeedURL:    node.XMLURL,
				SiteURL:    node.HTMLURL,
				Categories: slices.Clone(path),
			})
		}
		if len(node.Outlines) > 0 {
			childPath := append(slices.Clone(path), node.Title)
			collectSources(node.Outlines, childPath, out)
		}
	}
}
