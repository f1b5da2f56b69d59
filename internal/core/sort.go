package core

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Direction is the order a column sorts in.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection accepts "asc" or "desc".
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Ascending, Descending:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

func (d Direction) String() string { return string(d) }

// Sort returns a copy of ds reordered by key. The date column compares period
// keys numerically once their first hyphen is removed; channel columns compare
// the record field. Keys that cannot be compared (an unknown column, a period
// without a leading number) compare equal, so their relative order is kept.
func Sort(ds Dataset, key string, dir Direction) Dataset {
	entries := ds.Entries()
	compare := comparator(key)
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if dir == Descending {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return NewDataset(entries...)
}

func comparator(key string) func(a, b Entry) int {
	if key == DateKey {
		return func(a, b Entry) int {
			x, okx := periodOrdinal(a.Key)
			y, oky := periodOrdinal(b.Key)
			if !okx || !oky {
				return 0
			}
			return cmp.Compare(x, y)
		}
	}
	return func(a, b Entry) int {
		x, okx := a.Record.Value(key)
		y, oky := b.Record.Value(key)
		if !okx || !oky {
			return 0
		}
		return cmp.Compare(x, y)
	}
}

// periodOrdinal strips the first hyphen of a period key and reads the leading
// integer, so "2018-01" becomes 201801. Only one hyphen is removed; the YYYY-MM
// format never has more.
func periodOrdinal(key string) (int64, bool) {
	s := strings.Replace(key, "-", "", 1)
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
