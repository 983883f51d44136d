package opml

// Outline is one node of the subscription tree. A node carrying an XMLURL is
// a leaf feed reference; a node with children and no XMLURL is a category. A
// node may carry both, in which case its children are categorized under it.
type Outline struct {
	Title    string
	Text     string
	Type     string
	XMLURL   string
	HTMLURL  string
	Outlines []Outline
}

// Document is a parsed subscription outline. Immutable once parsed.
type Document struct {
	Title    string
	Outlines []Outline
}

// Source is one fetchable feed reference flattened out of the tree,
// annotated with the category names on the path from the document root.
type Source struct {
	Title      string
	FeedURL    string
	SiteURL    string
	Categories []string
}
