package render

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// Landscape A4 drawing area in millimetres.
const (
	pageW  = 297.0
	left   = 25.0
	right  = pageW - 15.0
	top    = 32.0
	bottom = 165.0
)

// palette follows the usual ten-colour categorical scheme.
var palette = [][3]int{
	{31, 119, 180}, {255, 127, 14}, {44, 160, 44}, {214, 39, 40}, {148, 103, 189},
	{140, 86, 75}, {227, 119, 194}, {127, 127, 127}, {188, 189, 34}, {23, 190, 207},
}

const cloudNote = "word cloud approximated as a sized-text layout"

// PDFRenderer draws bar and pie charts with gofpdf. A word cloud is
// approximated by laying words out left to right with font size
// proportional to count.
type PDFRenderer struct {
	fontPath string
}

func NewPDF(fontPath string) *PDFRenderer {
	return &PDFRenderer{fontPath: fontPath}
}

func (r *PDFRenderer) Backend() Backend { return PDF }

func (r *PDFRenderer) Supports(chart ChartType) Support {
	switch chart {
	case Bar, Pie:
		return Native
	case WordCloud:
		return Approximate
	}
	return Unsupported
}

type pdfCanvas struct {
	pdf    *gofpdf.Fpdf
	family string
	tr     func(string) string
	noteY  float64
}

func (r *PDFRenderer) Render(data ChartData, chart ChartType) (Artifact, error) {
	if err := check(r, data, chart); err != nil {
		return Artifact{}, err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	c := &pdfCanvas{pdf: pdf, family: "Helvetica", tr: pdf.UnicodeTranslatorFromDescriptor("")}
	if r.fontPath != "" {
		pdf.AddUTF8Font("wordfreq", "", r.fontPath)
		if err := pdf.Error(); err != nil {
			return Artifact{}, fmt.Errorf("render pdf: load font %s: %w", r.fontPath, err)
		}
		c.family = "wordfreq"
		c.tr = func(s string) string { return s }
	}
	pdf.SetTitle(data.Title, true)
	pdf.SetCreator("wordfreq", true)
	pdf.AddPage()
	pdf.SetFont(c.family, "", 16)
	pdf.CellFormat(0, 10, c.tr(data.Title), "", 1, "C", false, 0, "")

	var note string
	switch chart {
	case Bar:
		c.bar(data)
	case Pie:
		c.pie(data)
	default:
		c.cloud(data)
		note = cloudNote
	}
	if r.fontPath == "" && needsUnicodeFont(data.Words) {
		c.footnote("Some glyphs cannot be shown with the built-in font; configure a TrueType font to render them.")
	}
	if note != "" {
		c.footnote("Note: " + note)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Artifact{}, fmt.Errorf("render pdf %s: %w", chart, err)
	}
	return Artifact{ContentType: "application/pdf", Ext: ".pdf", Body: buf.Bytes(), Note: note}, nil
}

func (c *pdfCanvas) fill(i int) {
	col := palette[i%len(palette)]
	c.pdf.SetFillColor(col[0], col[1], col[2])
}

func (c *pdfCanvas) bar(data ChartData) {
	pdf := c.pdf
	hi := data.max()
	n := len(data.Words)
	slot := (right - left) / float64(n)
	barW := slot * 0.7
	height := bottom - top

	pdf.SetDrawColor(60, 60, 60)
	pdf.Line(left, top, left, bottom)
	pdf.Line(left, bottom, right, bottom)
	pdf.SetFont(c.family, "", 8)
	maxLabel := strconv.Itoa(hi)
	pdf.Text(left-2-pdf.GetStringWidth(maxLabel), top+1, maxLabel)
	pdf.Text(left-2-pdf.GetStringWidth("0"), bottom, "0")

	for i, count := range data.Counts {
		h := height * float64(count) / float64(hi)
		x := left + slot*float64(i) + (slot-barW)/2
		y := bottom - h
		c.fill(0)
		pdf.Rect(x, y, barW, h, "F")

		s := strconv.Itoa(count)
		pdf.Text(x+barW/2-pdf.GetStringWidth(s)/2, y-1.5, s)

		lx, ly := x+barW/2, bottom+4
		pdf.TransformBegin()
		pdf.TransformRotate(-45, lx, ly)
		pdf.Text(lx, ly, c.tr(data.Words[i]))
		pdf.TransformEnd()
	}
}

func (c *pdfCanvas) pie(data ChartData) {
	pdf := c.pdf
	const cx, cy, radius = 95.0, 105.0, 65.0
	total := float64(data.total())
	start := -math.Pi / 2

	for i, count := range data.Counts {
		sweep := 2 * math.Pi * float64(count) / total
		steps := int(math.Ceil(sweep / (math.Pi / 90)))
		if steps < 1 {
			steps = 1
		}
		points := make([]gofpdf.PointType, 0, steps+2)
		points = append(points, gofpdf.PointType{X: cx, Y: cy})
		for s := 0; s <= steps; s++ {
			a := start + sweep*float64(s)/float64(steps)
			points = append(points, gofpdf.PointType{X: cx + radius*math.Cos(a), Y: cy + radius*math.Sin(a)})
		}
		c.fill(i)
		pdf.Polygon(points, "F")
		start += sweep
	}

	pdf.SetFont(c.family, "", 10)
	y := top + 3
	for i, count := range data.Counts {
		c.fill(i)
		pdf.Rect(185, y-3.5, 4, 4, "F")
		pct := 100 * float64(count) / total
		pdf.Text(192, y, c.tr(fmt.Sprintf("%s  %d (%.1f%%)", data.Words[i], count, pct)))
		y += 6.5
	}
}

func (c *pdfCanvas) cloud(data ChartData) {
	pdf := c.pdf
	const minSize, maxSize = 10.0, 40.0
	hi := data.max()
	lo := hi
	for _, n := range data.Counts {
		if n < lo {
			lo = n
		}
	}
	lineH := maxSize * 0.3528 * 1.25
	x, y := left, top+lineH

	for i, word := range data.Words {
		size := maxSize
		if hi > lo {
			size = minSize + (maxSize-minSize)*float64(data.Counts[i]-lo)/float64(hi-lo)
		}
		pdf.SetFont(c.family, "", size)
		text := c.tr(word)
		w := pdf.GetStringWidth(text)
		if x > left && x+w > right {
			x = left
			y += lineH
		}
		col := palette[i%len(palette)]
		pdf.SetTextColor(col[0], col[1], col[2])
		pdf.Text(x, y, text)
		x += w + 6
	}
	pdf.SetTextColor(0, 0, 0)
}

func (c *pdfCanvas) footnote(s string) {
	c.pdf.SetFont(c.family, "", 8)
	c.pdf.SetTextColor(90, 90, 90)
	if c.noteY == 0 {
		c.noteY = 193
	}
	c.pdf.Text(left, c.noteY, c.tr(s))
	c.noteY += 5
	c.pdf.SetTextColor(0, 0, 0)
}

func needsUnicodeFont(words []string) bool {
	for _, w := range words {
		for _, r := range w {
			if r > 0xFF {
				return true
			}
		}
	}
	return false
}
