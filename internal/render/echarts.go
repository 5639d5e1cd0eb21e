package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// EChartsRenderer produces a standalone HTML page driven by ECharts.
type EChartsRenderer struct {
	width  string
	height string
}

func NewECharts(width, height string) *EChartsRenderer {
	if width == "" {
		width = "900px"
	}
	if height == "" {
		height = "500px"
	}
	return &EChartsRenderer{width: width, height: height}
}

func (r *EChartsRenderer) Backend() Backend { return ECharts }

func (r *EChartsRenderer) Supports(chart ChartType) Support {
	switch chart {
	case WordCloud, Bar, Pie:
		return Native
	}
	return Unsupported
}

type pageRenderer interface {
	Render(w io.Writer) error
}

func (r *EChartsRenderer) Render(data ChartData, chart ChartType) (Artifact, error) {
	if err := check(r, data, chart); err != nil {
		return Artifact{}, err
	}
	initOpts := charts.WithInitializationOpts(opts.Initialization{
		PageTitle: data.Title,
		Width:     r.width,
		Height:    r.height,
	})
	title := charts.WithTitleOpts(opts.Title{Title: data.Title})

	var page pageRenderer
	switch chart {
	case Bar:
		items := make([]opts.BarData, len(data.Counts))
		for i, c := range data.Counts {
			items[i] = opts.BarData{Name: data.Words[i], Value: c}
		}
		bar := charts.NewBar()
		bar.SetGlobalOptions(initOpts, title)
		bar.SetXAxis(data.Words).AddSeries("词频", items)
		page = bar
	case Pie:
		items := make([]opts.PieData, len(data.Counts))
		for i, c := range data.Counts {
			items[i] = opts.PieData{Name: data.Words[i], Value: c}
		}
		pie := charts.NewPie()
		pie.SetGlobalOptions(initOpts, title)
		pie.AddSeries("", items)
		page = pie
	default:
		items := make([]opts.WordCloudData, len(data.Counts))
		for i, c := range data.Counts {
			items[i] = opts.WordCloudData{Name: data.Words[i], Value: c}
		}
		wc := charts.NewWordCloud()
		wc.SetGlobalOptions(initOpts, title)
		wc.AddSeries("", items)
		page = wc
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return Artifact{}, fmt.Errorf("render echarts %s: %w", chart, err)
	}
	return Artifact{ContentType: "text/html; charset=utf-8", Ext: ".html", Body: buf.Bytes()}, nil
}
