package extract

import (
	"fmt"
	"strings"
)

// Document is a simplified representation of extracted page content.
type Document struct {
	Title string
	Text  string
}

// Extractor converts an HTML page into visible text.
// Implementations must be deterministic and free of side effects.
type Extractor interface {
	Extract(html string, pageURL string) (Document, error)
}

// Mode names an extraction strategy.
type Mode string

const (
	// ModeText keeps every visible text node in document order.
	ModeText Mode = "text"
	// ModeHeuristic prefers <main>/<article> and drops navigation boilerplate.
	ModeHeuristic Mode = "heuristic"
	// ModeReadability keeps only the article body as found by go-readability.
	ModeReadability Mode = "readability"
)

// ParseMode maps a config value to a Mode. Empty means ModeText.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeText, nil
	case ModeText, ModeHeuristic, ModeReadability:
		return m, nil
	default:
		return "", fmt.Errorf("unknown extract mode %q", s)
	}
}

// New returns the Extractor for mode. Unknown modes fall back to ModeText.
func New(mode Mode) Extractor {
	switch mode {
	case ModeHeuristic:
		return HeuristicExtractor{}
	case ModeReadability:
		return ReadabilityExtractor{}
	default:
		return TextExtractor{}
	}
}
