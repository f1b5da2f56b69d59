package core

import (
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

// Channel fields match their lowercase keys exactly.
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	CaseSensitive:          true,
}.Froze()

var errTrailingData = errors.New("unexpected data after top-level object")

// DecodeDataset parses a data file object, keeping the order in which the
// period keys appear in the document. Channel fields missing from a record
// decode as zero, and keys differing only in case are ignored.
func DecodeDataset(data []byte) (Dataset, error) {
	it := jsoniter.ParseBytes(json, data)
	var entries []Entry
	it.ReadObjectCB(func(field *jsoniter.Iterator, key string) bool {
		var rec DayRecord
		field.ReadVal(&rec)
		entries = append(entries, Entry{Key: key, Record: rec})
		return field.Error == nil
	})
	if it.Error != nil {
		return Dataset{}, fmt.Errorf("decode dataset: %w", it.Error)
	}
	// Only whitespace may follow; reaching the end sets io.EOF.
	if it.WhatIsNext(); it.Error != io.EOF {
		return Dataset{}, fmt.Errorf("decode dataset: %w", errTrailingData)
	}
	return NewDataset(entries...), nil
}

// MarshalJSON writes the dataset as a JSON object in dataset order.
func (d Dataset) MarshalJSON() ([]byte, error) {
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, e := range d.entries {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(e.Key)
		stream.WriteVal(e.Record)
	}
	stream.WriteObjectEnd()
	if stream.Error != nil {
		return nil, fmt.Errorf("encode dataset: %w", stream.Error)
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

// UnmarshalJSON implements json.Unmarshaler using DecodeDataset.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	ds, err := DecodeDataset(data)
	if err != nil {
		return err
	}
	*d = ds
	return nil
}
