package chart

import (
	"errors"
	"html/template"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	// DefaultAssetsHost serves the echarts bundle go-echarts targets.
	DefaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"
	DefaultChartID    = "bbcChart"

	echartsBundle = "echarts.min.js"
)

var errNoSeries = errors.New("chart has no series")

// ECharts renders a Config as a go-echarts bar chart snippet.
type ECharts struct {
	AssetsHost string
	ChartID    string
	Width      string
	Height     string
}

var _ Renderer = (*ECharts)(nil)

func NewECharts() *ECharts {
	return &ECharts{
		AssetsHost: DefaultAssetsHost,
		ChartID:    DefaultChartID,
		Width:      "100%",
		Height:     "480px",
	}
}

// Assets returns the echarts bundle URL the snippet needs on the page.
func (e *ECharts) Assets() []string {
	return []string{e.AssetsHost + echartsBundle}
}

// Render builds the chart element and its init script.
func (e *ECharts) Render(cfg Config) (template.HTML, error) {
	if len(cfg.Series) == 0 {
		return "", errNoSeries
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:    e.ChartID,
			AssetsHost: e.AssetsHost,
			Width:      e.Width,
			Height:     e.Height,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: cfg.Title.Text,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:        opts.Bool(true),
			Trigger:     "axis",
			AxisPointer: e.axisPointer(cfg.XAxis.Crosshair),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: 45},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         cfg.YAxis.Title.Text,
			NameLocation: "center",
			NameGap:      50,
			Min:          cfg.YAxis.Min,
		}),
	)

	bar.SetXAxis(cfg.XAxis.Categories)
	for _, s := range cfg.Series {
		data := make([]opts.BarData, len(s.Data))
		for i, v := range s.Data {
			data[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(s.Name, data)
	}

	snippet := bar.RenderSnippet()
	return template.HTML(snippet.Element + snippet.Script), nil
}

func (e *ECharts) axisPointer(crosshair bool) *opts.AxisPointer {
	if !crosshair {
		return nil
	}
	return &opts.AxisPointer{Type: "shadow"}
}
