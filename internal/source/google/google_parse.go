package google

import (
	"fmt"
	"strconv"
	"strings"

	"bbcstats/internal/core"
)

// parseDataset converts a values matrix (as returned by the Sheets API) into a
// dataset. The first row holds column keys and must include "date"; columns
// that are not channel keys are ignored. Blank rows are skipped and blank
// cells read as zero.
func parseDataset(values [][]interface{}) (core.Dataset, error) {
	if len(values) == 0 {
		return core.NewDataset(), nil
	}
	headers := toStrings(values[0])
	colDate := indexOf(headers, core.DateKey)
	if colDate == -1 {
		return core.Dataset{}, fmt.Errorf("unexpected header: missing %s; got headers=%v", core.DateKey, headers)
	}

	var entries []core.Entry
	for i := 1; i < len(values); i++ {
		row := values[i]
		cell := safeGet(row, colDate)
		if cell == nil {
			continue
		}
		key := strings.TrimSpace(fmt.Sprint(cell))
		if key == "" {
			continue
		}
		var rec core.DayRecord
		for j, h := range headers {
			if j == colDate || !core.DefaultColumns.Has(strings.ToLower(h)) {
				continue
			}
			v, err := parseNumber(safeGet(row, j))
			if err != nil {
				return core.Dataset{}, fmt.Errorf("row %d column %s: %w", i+1, h, err)
			}
			rec.Set(strings.ToLower(h), v)
		}
		entries = append(entries, core.Entry{Key: key, Record: rec})
	}
	return core.NewDataset(entries...), nil
}

func parseNumber(v interface{}) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(row []interface{}, idx int) interface{} {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}
