// Package core holds the broadcast statistics domain: the dataset, its columns,
// date formatting, sorting and the sortable header state.
package core

import (
	"iter"
	"strconv"
)

// DayRecord holds one period's value for each broadcast channel.
type DayRecord struct {
	BBCOne    float64 `json:"bbcone"`
	BBCTwo    float64 `json:"bbctwo"`
	BBCThree  float64 `json:"bbcthree"`
	BBCFour   float64 `json:"bbcfour"`
	BBCNews24 float64 `json:"bbcnews24"`
	CBBC      float64 `json:"cbbc"`
	CBeebies  float64 `json:"cbeebies"`
}

// Value returns the field named by a channel key.
func (r DayRecord) Value(key string) (float64, bool) {
	switch key {
	case KeyBBCOne:
		return r.BBCOne, true
	case KeyBBCTwo:
		return r.BBCTwo, true
	case KeyBBCThree:
		return r.BBCThree, true
	case KeyBBCFour:
		return r.BBCFour, true
	case KeyBBCNews24:
		return r.BBCNews24, true
	case KeyCBBC:
		return r.CBBC, true
	case KeyCBeebies:
		return r.CBeebies, true
	}
	return 0, false
}

// Set assigns the field named by a channel key. It reports false for unknown keys.
func (r *DayRecord) Set(key string, v float64) bool {
	switch key {
	case KeyBBCOne:
		r.BBCOne = v
	case KeyBBCTwo:
		r.BBCTwo = v
	case KeyBBCThree:
		r.BBCThree = v
	case KeyBBCFour:
		r.BBCFour = v
	case KeyBBCNews24:
		r.BBCNews24 = v
	case KeyCBBC:
		r.CBBC = v
	case KeyCBeebies:
		r.CBeebies = v
	default:
		return false
	}
	return true
}

// FormatValue renders a channel value for display, without trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Entry is one dataset row.
type Entry struct {
	Key    string
	Record DayRecord
}

// Dataset is an ordered mapping from a YYYY-MM period key to its record.
// A Dataset is never modified after construction; sorting returns a new one.
type Dataset struct {
	entries []Entry
	index   map[string]int
}

// NewDataset builds a dataset in the given order. A repeated key keeps its first
// position and takes the last record, matching how a JSON object is read.
func NewDataset(entries ...Entry) Dataset {
	ds := Dataset{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if i, ok := ds.index[e.Key]; ok {
			ds.entries[i].Record = e.Record
			continue
		}
		ds.index[e.Key] = len(ds.entries)
		ds.entries = append(ds.entries, e)
	}
	return ds
}

// Len returns the number of entries.
func (d Dataset) Len() int {
	return len(d.entries)
}

// Keys returns the period keys in dataset order.
func (d Dataset) Keys() []string {
	keys := make([]string, len(d.entries))
	for i, e := range d.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the rows in dataset order.
func (d Dataset) Entries() []Entry {
	return append([]Entry(nil), d.entries...)
}

// Record looks up the record stored under key.
func (d Dataset) Record(key string) (DayRecord, bool) {
	i, ok := d.index[key]
	if !ok {
		return DayRecord{}, false
	}
	return d.entries[i].Record, true
}

// All iterates the rows in dataset order.
func (d Dataset) All() iter.Seq2[string, DayRecord] {
	return func(yield func(string, DayRecord) bool) {
		for _, e := range d.entries {
			if !yield(e.Key, e.Record) {
				return
			}
		}
	}
}
