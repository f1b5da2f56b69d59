// Package table renders the sortable broadcast table and drives its header
// state machine.
package table

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"

	"bbcstats/internal/core"
)

const (
	headTemplate = "table_head"
	bodyTemplate = "table_body"

	// PagePath serves the whole page; PartialPath serves a sorted body.
	PagePath    = "/"
	PartialPath = "/ui/table"
)

// Renderer turns header state and datasets into HTML fragments. It has no
// side effects and is safe for concurrent use.
type Renderer struct {
	tmpl    *template.Template
	columns core.Columns
}

type headCell struct {
	Key        string
	Label      string
	Pending    string
	Indicator  string
	PageURL    string
	PartialURL string
}

type headData struct {
	OOB   bool
	Cells []headCell
}

type bodyData struct {
	Rows [][]string
}

// NewRenderer parses the table partials from fsys.
func NewRenderer(fsys fs.FS, columns core.Columns) (*Renderer, error) {
	t, err := template.ParseFS(fsys, "templates/table.html")
	if err != nil {
		return nil, fmt.Errorf("parse table templates: %w", err)
	}
	for _, name := range []string{headTemplate, bodyTemplate} {
		if t.Lookup(name) == nil {
			return nil, fmt.Errorf("parse table templates: missing %q", name)
		}
	}
	return &Renderer{tmpl: t, columns: columns}, nil
}

// Columns returns the table layout.
func (r *Renderer) Columns() core.Columns {
	return r.columns
}

// Header renders the header row for state. Each cell links to the sort it
// would apply next, carrying the full encoded state so the server stays
// stateless.
func (r *Renderer) Header(state core.HeaderState) (template.HTML, error) {
	return r.header(state, false)
}

// HeaderSwap is Header marked for an out-of-band swap alongside a body partial.
func (r *Renderer) HeaderSwap(state core.HeaderState) (template.HTML, error) {
	return r.header(state, true)
}

func (r *Renderer) header(state core.HeaderState, oob bool) (template.HTML, error) {
	encoded := state.Encode()
	data := headData{OOB: oob, Cells: make([]headCell, 0, len(r.columns))}
	for _, col := range r.columns {
		cell := headCell{Key: col.Key, Label: col.Label}
		if d, ok := state.Pending(col.Key); ok {
			cell.Pending = d.String()
		}
		if d, ok := state.Indicator(col.Key); ok {
			cell.Indicator = d.String()
		}
		q := url.Values{"sort": {col.Key}, "state": {encoded}}.Encode()
		cell.PageURL = PagePath + "?" + q
		cell.PartialURL = PartialPath + "?" + q
		data.Cells = append(data.Cells, cell)
	}
	return r.execute(headTemplate, data)
}

// Body renders one row per entry in dataset order with a cell per column: the
// date column shows the formatted period key, channels their values.
func (r *Renderer) Body(ds core.Dataset) (template.HTML, error) {
	rows := make([][]string, 0, ds.Len())
	for key, rec := range ds.All() {
		row := make([]string, len(r.columns))
		for i, col := range r.columns {
			if col.Key == core.DateKey {
				row[i] = core.FormatDate(key)
				continue
			}
			v, _ := rec.Value(col.Key)
			row[i] = core.FormatValue(v)
		}
		rows = append(rows, row)
	}
	return r.execute(bodyTemplate, bodyData{Rows: rows})
}

func (r *Renderer) execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
