package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// HeuristicExtractor prefers <main>, then <article>, then <body>, and skips
// navigation, footers and consent banners. Block elements are separated by
// newlines so words from adjacent blocks do not run together.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Extract(input string, _ string) (Document, error) {
	node, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return Document{}, fmt.Errorf("parse html: %w", err)
	}
	return fromNode(node), nil
}

// FromHTML runs the heuristic extraction on raw bytes.
func FromHTML(input []byte) Document {
	doc, _ := HeuristicExtractor{}.Extract(string(input), "")
	return doc
}

func fromNode(root *html.Node) Document {
	var title string
	if head := findFirst(root, "head"); head != nil {
		if t := findFirst(head, "title"); t != nil && t.FirstChild != nil {
			title = strings.TrimSpace(t.FirstChild.Data)
		}
	}

	content := findFirst(root, "main")
	if content == nil {
		content = findFirst(root, "article")
	}
	if content == nil {
		content = findFirst(root, "body")
	}
	var b strings.Builder
	if content != nil {
		collectText(&b, content)
	}
	return Document{Title: title, Text: b.String()}
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if res := findFirst(c, tag); res != nil {
			return res
		}
	}
	return nil
}

var skipped = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"nav": true, "footer": true, "aside": true, "iframe": true,
}

var blocks = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true, "br": true, "hr": true,
	"pre": true, "table": true, "tr": true, "section": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

func collectText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		name := strings.ToLower(n.Data)
		if skipped[name] || isBoilerplateContainer(n) {
			return
		}
		if blocks[name] {
			b.WriteByte('\n')
			defer b.WriteByte('\n')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
}

var consentMarkers = []string{"cookie", "consent", "gdpr"}

// isBoilerplateContainer returns true if the element looks like a cookie/consent banner.
func isBoilerplateContainer(n *html.Node) bool {
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && key != "role" && key != "aria-label" && !strings.HasPrefix(key, "data-") {
			continue
		}
		val := strings.ToLower(attr.Val)
		for _, m := range consentMarkers {
			if strings.Contains(val, m) {
				return true
			}
		}
	}
	return false
}
