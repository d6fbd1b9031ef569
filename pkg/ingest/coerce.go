package ingest

import (
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order. The extract ships US-formatted
// timestamps; ISO layouts are accepted so re-exports and fixtures load too.
var timestampLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 03:04:05 PM",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// rowReader coerces the cells of one source row against the column index.
// Cells that are empty or fail coercion become nil; failures are collected
// per column so the loader can count and report them.
type rowReader struct {
	row    []string
	index  map[string]int
	loc    *time.Location
	failed []string
}

func (r *rowReader) cell(col string) (string, bool) {
	pos, ok := r.index[col]
	if !ok || pos < 0 || pos >= len(r.row) {
		return "", false
	}
	return r.row[pos], true
}

// raw returns the trimmed cell value, empty when the column is absent.
func (r *rowReader) raw(col string) string {
	cell, _ := r.cell(col)
	return strings.TrimSpace(cell)
}

func (r *rowReader) text(col string) *string {
	cell, ok := r.cell(col)
	if !ok || strings.TrimSpace(cell) == "" {
		return nil
	}
	return &cell
}

func (r *rowReader) timestamp(col string) *time.Time {
	cell, ok := r.cell(col)
	if !ok || strings.TrimSpace(cell) == "" {
		return nil
	}
	t, ok := parseTimestamp(cell, r.loc)
	if !ok {
		r.failed = append(r.failed, col)
		return nil
	}
	return &t
}

func (r *rowReader) float(col string) *float64 {
	cell, ok := r.cell(col)
	if !ok || strings.TrimSpace(cell) == "" {
		return nil
	}
	f, ok := parseFloat(cell)
	if !ok {
		r.failed = append(r.failed, col)
		return nil
	}
	return &f
}
