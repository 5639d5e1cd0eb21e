package render

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/width"
)

// TextRenderer prints a horizontal bar chart for terminals. Word clouds and
// pie charts have no sensible text form and are reported as unsupported.
type TextRenderer struct {
	barWidth int
}

func NewText(barWidth int) *TextRenderer {
	if barWidth <= 0 {
		barWidth = 40
	}
	return &TextRenderer{barWidth: barWidth}
}

func (r *TextRenderer) Backend() Backend { return Text }

func (r *TextRenderer) Supports(chart ChartType) Support {
	if chart == Bar {
		return Native
	}
	return Unsupported
}

func (r *TextRenderer) Render(data ChartData, chart ChartType) (Artifact, error) {
	if err := check(r, data, chart); err != nil {
		return Artifact{}, err
	}
	labelW := 0
	for _, w := range data.Words {
		if n := displayWidth(w); n > labelW {
			labelW = n
		}
	}
	hi := data.max()

	var buf bytes.Buffer
	if data.Title != "" {
		fmt.Fprintf(&buf, "%s\n\n", data.Title)
	}
	for i, word := range data.Words {
		n := data.Counts[i] * r.barWidth / hi
		if n == 0 && data.Counts[i] > 0 {
			n = 1
		}
		pad := strings.Repeat(" ", labelW-displayWidth(word))
		fmt.Fprintf(&buf, "%s%s │%s %d\n", word, pad, strings.Repeat("█", n), data.Counts[i])
	}
	return Artifact{ContentType: "text/plain; charset=utf-8", Ext: ".txt", Body: buf.Bytes()}, nil
}

// displayWidth counts terminal columns: East Asian wide and fullwidth runes take two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}
