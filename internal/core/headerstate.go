package core

import (
	"fmt"
	"strings"
)

// HeaderState is the sort state carried by the table header: the direction the
// next activation of each column will apply, and which column shows the
// active-sort indicator.
type HeaderState struct {
	columns   Columns
	pending   []Direction
	active    string
	indicator Direction
}

// NewHeaderState returns the initial state: every column ascending, no indicator.
func NewHeaderState(cols Columns) HeaderState {
	pending := make([]Direction, len(cols))
	for i := range pending {
		pending[i] = Ascending
	}
	return HeaderState{columns: cols, pending: pending}
}

// Columns returns the columns the state describes.
func (s HeaderState) Columns() Columns {
	return s.columns
}

// Pending returns the direction the next activation of key will sort by.
func (s HeaderState) Pending(key string) (Direction, bool) {
	i := s.columns.Index(key)
	if i < 0 {
		return "", false
	}
	return s.pending[i], true
}

// Indicator returns the direction shown on key's indicator, if it is the active column.
func (s HeaderState) Indicator(key string) (Direction, bool) {
	if s.active == "" || s.active != key {
		return "", false
	}
	return s.indicator, true
}

// Active returns the key of the column showing the indicator, or "".
func (s HeaderState) Active() string {
	return s.active
}

// Activate handles a click on key's header cell. It returns the direction to
// sort by now and the next state: key's pending direction flipped, every other
// indicator cleared, and key's indicator showing the direction just applied.
func (s HeaderState) Activate(key string) (Direction, HeaderState, error) {
	i := s.columns.Index(key)
	if i < 0 {
		return "", s, fmt.Errorf("%w: %q", ErrUnknownColumn, key)
	}
	applied := s.pending[i]

	next := HeaderState{
		columns:   s.columns,
		pending:   append([]Direction(nil), s.pending...),
		active:    key,
		indicator: applied,
	}
	next.pending[i] = applied.Toggle()
	return applied, next, nil
}

// Encode serialises the state for a header cell URL: the pending directions in
// column order, then ";key.dir" when a column is active.
func (s HeaderState) Encode() string {
	parts := make([]string, len(s.pending))
	for i, d := range s.pending {
		parts[i] = string(d)
	}
	out := strings.Join(parts, ",")
	if s.active != "" {
		out += ";" + s.active + "." + string(s.indicator)
	}
	return out
}

// ParseHeaderState reverses Encode. An empty string is the initial state.
func ParseHeaderState(cols Columns, raw string) (HeaderState, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NewHeaderState(cols), nil
	}

	dirs, active, hasActive := strings.Cut(raw, ";")
	fields := strings.Split(dirs, ",")
	if len(fields) != len(cols) {
		return HeaderState{}, fmt.Errorf("%w: %d directions for %d columns", ErrInvalidHeaderState, len(fields), len(cols))
	}

	s := HeaderState{columns: cols, pending: make([]Direction, len(cols))}
	for i, f := range fields {
		d, err := ParseDirection(f)
		if err != nil {
			return HeaderState{}, fmt.Errorf("%w: column %s: %w", ErrInvalidHeaderState, cols[i].Key, err)
		}
		s.pending[i] = d
	}

	if hasActive {
		key, dir, ok := strings.Cut(active, ".")
		if !ok || !cols.Has(key) {
			return HeaderState{}, fmt.Errorf("%w: indicator %q", ErrInvalidHeaderState, active)
		}
		d, err := ParseDirection(dir)
		if err != nil {
			return HeaderState{}, fmt.Errorf("%w: indicator: %w", ErrInvalidHeaderState, err)
		}
		s.active, s.indicator = key, d
	}
	return s, nil
}
