package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML extracts the text content of an HTML document, dropping
// all markup. If parsing fails the input is returned as-is so that
// ingestion still proceeds on whatever text is there.
func StripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}
