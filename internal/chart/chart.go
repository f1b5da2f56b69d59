// Package chart reshapes the dataset into a column chart configuration and
// renders it.
package chart

import (
	"html/template"
	"slices"

	"bbcstats/internal/core"
)

const (
	TypeColumn = "column"
	Title      = "BBC Monthly Broadcasting Data"
	YAxisTitle = "Monthly Broadcasts"
)

// Config describes a column chart in the shape external chart consumers
// expect from GET /api/chart.
type Config struct {
	Chart   Options  `json:"chart"`
	Title   Text     `json:"title"`
	XAxis   XAxis    `json:"xAxis"`
	YAxis   YAxis    `json:"yAxis"`
	Credits Credits  `json:"credits"`
	Series  []Series `json:"series"`
}

type Options struct {
	Type string `json:"type"`
}

type Text struct {
	Text string `json:"text"`
}

type XAxis struct {
	Categories []string `json:"categories"`
	Crosshair  bool     `json:"crosshair"`
}

type YAxis struct {
	Min   float64 `json:"min"`
	Title Text    `json:"title"`
}

type Credits struct {
	Enabled bool `json:"enabled"`
}

// Series is one channel's values, positionally aligned with XAxis.Categories.
type Series struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

// Renderer draws a chart configuration as an embeddable HTML fragment.
type Renderer interface {
	Render(cfg Config) (template.HTML, error)
	// Assets lists the script URLs the fragment depends on.
	Assets() []string
}

// SeriesKeys returns the channel keys of cols in series order, which is
// alphabetical by key.
func SeriesKeys(cols core.Columns) []string {
	keys := cols.Channels().Keys()
	slices.Sort(keys)
	return keys
}

// Build reshapes ds into a column chart. Categories are the period keys in
// dataset order and every series has one value per category. Table sorting
// has no effect here; callers pass the dataset as loaded.
func Build(ds core.Dataset) Config {
	categories := ds.Keys()
	keys := SeriesKeys(core.DefaultColumns)

	series := make([]Series, len(keys))
	for i, key := range keys {
		series[i] = Series{Name: key, Data: make([]float64, 0, len(categories))}
	}
	for _, rec := range ds.All() {
		for i, key := range keys {
			v, _ := rec.Value(key)
			series[i].Data = append(series[i].Data, v)
		}
	}

	return Config{
		Chart:   Options{Type: TypeColumn},
		Title:   Text{Text: Title},
		XAxis:   XAxis{Categories: categories, Crosshair: true},
		YAxis:   YAxis{Min: 0, Title: Text{Text: YAxisTitle}},
		Credits: Credits{Enabled: false},
		Series:  series,
	}
}
