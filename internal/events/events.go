// Package events reads the CCTV frame-missing event log.
package events

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ColumnViewID   = "view_id"
	ColumnDatetime = "datetime"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Record is one logged "video frame missing" occurrence.
type Record struct {
	ViewID string
	Time   time.Time

	// Extra holds every other column of the row, keyed by header name.
	Extra map[string]string
}

// timeLayouts are tried in order; naive timestamps are read as UTC.
// Fractional seconds are accepted after any seconds field, and the US
// layouts take one- or two-digit months and days.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

// ParseTime parses an event timestamp in any of the accepted layouts.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// LoadFile reads all records from the CSV file at path.
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses an event log. The header must contain view_id and datetime;
// any other columns are carried in Record.Extra. The first bad row aborts
// the read.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("reading header: empty file")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		header[i] = h
		idx[h] = i
	}
	for _, need := range []string{ColumnViewID, ColumnDatetime} {
		if _, ok := idx[need]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, need)
		}
	}
	viewCol, timeCol := idx[ColumnViewID], idx[ColumnDatetime]

	records := make([]Record, 0, 1024)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if viewCol >= len(row) || timeCol >= len(row) {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, max(viewCol, timeCol)+1, len(row))
		}
		viewID := strings.TrimSpace(row[viewCol])
		if viewID == "" {
			return nil, fmt.Errorf("line %d: empty %s", line, ColumnViewID)
		}
		ts, err := ParseTime(row[timeCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var extra map[string]string
		if len(row) > 2 {
			extra = make(map[string]string, len(row)-2)
			for i, v := range row {
				if i == viewCol || i == timeCol || i >= len(header) {
					continue
				}
				extra[header[i]] = v
			}
		}

		records = append(records, Record{ViewID: viewID, Time: ts, Extra: extra})
	}

	return records, nil
}

// ViewIDOrder returns the ordering of a view_id column. When every id is an
// integer the column sorts numerically; otherwise the whole column sorts as
// text, so "10" comes before "9".
func ViewIDOrder(records []Record) func(a, b string) int {
	for _, r := range records {
		if _, err := strconv.ParseInt(r.ViewID, 10, 64); err != nil {
			return strings.Compare
		}
	}
	return compareNumeric
}

func compareNumeric(a, b string) int {
	ai, _ := strconv.ParseInt(a, 10, 64)
	bi, _ := strconv.ParseInt(b, 10, 64)
	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	}
	return strings.Compare(a, b)
}
