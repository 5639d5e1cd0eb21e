package extract

import (
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// ReadabilityExtractor keeps the main article text only.
type ReadabilityExtractor struct{}

func (ReadabilityExtractor) Extract(html string, pageURL string) (Document, error) {
	var u *url.URL
	if pageURL != "" {
		if parsed, err := url.Parse(pageURL); err == nil {
			u = parsed
		}
	}
	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return Document{}, fmt.Errorf("readability: %w", err)
	}
	return Document{Title: strings.TrimSpace(article.Title), Text: article.TextContent}, nil
}
