package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// invisible lists elements whose text content is never shown to a reader.
const invisible = "script, style, noscript, template"

// TextExtractor returns all human-readable text nodes of the page
// concatenated in document order with no separators added.
type TextExtractor struct{}

func (TextExtractor) Extract(html string, _ string) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Document{}, fmt.Errorf("parse html: %w", err)
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find(invisible).Remove()
	return Document{Title: title, Text: doc.Text()}, nil
}
