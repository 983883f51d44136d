package opml

import (
	"bytes"
	"fmt"
	"html"
	"strings"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run serializes a document back to outline markup. Attribute values and the
// title element are escaped so parsing the output reproduces the same
// titles, tree shape and feed URLs.
func (g *Generator) Run(doc *Document) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<opml version="2.0">` + "\n")
	buf.WriteString("  <head>\n")
	fmt.Fprintf(&buf, "    <title>%s</title>\n", html.EscapeString(doc.Title))
	buf.WriteString("  </head>\n")
	buf.WriteString("  <body>\n")

	for _, node := range doc.Outlines {
		g.writeOutline(&buf, node, 4)
	}

	buf.WriteString("  </body>\n")
	buf.WriteString("</opml>\n")

	return buf.String()
}

func (g *Generator) writeOutline(buf *bytes.Buffer, node Outline, indent int) {
	pad := strings.Repeat(" ", indent)

	buf.WriteString(pad)
	buf.WriteString("<outline")
	g.writeAttr(buf, "text", node.Text)
	if node.Title != "" && node.Title != node.Text {
		g.writeAttr(buf, "title", node.Title)
	}
	g.writeAttr(buf, "type", node.Type)
	g.writeAttr(buf, "xmlUrl", node.XMLURL)
	g.writeAttr(buf, "htmlUrl", node.HTMLURL)

	if len(node.Outlines) == 0 {
		buf.WriteString(" />\n")
		return
	}

	buf.WriteString(">\n")
	for _, child := range node.Outlines {
		g.writeOutline(buf, child, indent+2)
	}
	buf.WriteString(pad)
	buf.WriteString("</outline>\n")
}

func (g *Generator) writeAttr(buf *bytes.Buffer, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(buf, ` %s="%s"`, name, html.EscapeString(value))
}
