// Package analysis derives the dashboard tables from the raw event log.
//
// Every function here is a pure function of its input: the records are never
// modified and the same input always yields the same rows in the same order.
package analysis

import (
	"sort"
	"time"

	"cctvinsight/internal/events"
)

const (
	DateLayout = "2006-01-02"
	HourLayout = "15:04:05"
)

// CameraCount is one row of the camera frequency table.
type CameraCount struct {
	ViewID    string `json:"view_id"`
	Frequency int    `json:"frequency"`
}

// DailyCount is one row of the daily frequency table.
type DailyCount struct {
	Date      string `json:"date"` // YYYY-MM-DD
	ViewID    string `json:"view_id"`
	Frequency int    `json:"frequency"`
}

// HourlyCount is one row of the hourly heatmap table. Rows are per
// (date-hour, camera): the same Hour may repeat for a camera when its events
// span several days.
type HourlyCount struct {
	DateHour  time.Time `json:"date_hour"`
	Hour      string    `json:"hour"` // HH:MM:SS
	ViewID    string    `json:"view_id"`
	Frequency int       `json:"frequency"`
}

// Tables bundles the three derived tables built at startup.
type Tables struct {
	Records int           `json:"records"`
	Cameras []CameraCount `json:"cameras"`
	Daily   []DailyCount  `json:"daily"`
	Hourly  []HourlyCount `json:"hourly"`
}

// Build runs all three aggregations over records.
func Build(records []events.Record) Tables {
	return Tables{
		Records: len(records),
		Cameras: CameraFrequency(records),
		Daily:   DailyFrequency(records),
		Hourly:  HourlyHeatmap(records),
	}
}

// CameraFrequency counts events per camera, sorted by view_id.
func CameraFrequency(records []events.Record) []CameraCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.ViewID]++
	}

	cmp := events.ViewIDOrder(records)
	rows := make([]CameraCount, 0, len(counts))
	for id, n := range counts {
		rows = append(rows, CameraCount{ViewID: id, Frequency: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		return cmp(rows[i].ViewID, rows[j].ViewID) < 0
	})
	return rows
}

// DailyFrequency counts events per (calendar date, camera). The date is taken
// in the timestamp's own location.
func DailyFrequency(records []events.Record) []DailyCount {
	type key struct {
		Date   string
		ViewID string
	}
	counts := make(map[key]int)
	for _, r := range records {
		counts[key{Date: r.Time.Format(DateLayout), ViewID: r.ViewID}]++
	}

	cmp := events.ViewIDOrder(records)
	rows := make([]DailyCount, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, DailyCount{Date: k.Date, ViewID: k.ViewID, Frequency: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return cmp(rows[i].ViewID, rows[j].ViewID) < 0
	})
	return rows
}

// HourlyHeatmap counts events per (floored date-hour, camera), then keys each
// row by time of day only. Rows from different dates that share an hour are
// kept apart, not summed. Sorted by view_id, then hour, then date.
func HourlyHeatmap(records []events.Record) []HourlyCount {
	// Keyed by the formatted instant: equal fixed-zone times parsed from
	// different rows do not share a *time.Location.
	type key struct {
		DateHour string
		ViewID   string
	}
	type bucket struct {
		at time.Time
		n  int
	}
	buckets := make(map[key]*bucket)
	for _, r := range records {
		at := FloorHour(r.Time)
		k := key{DateHour: at.Format(time.RFC3339), ViewID: r.ViewID}
		b, ok := buckets[k]
		if !ok {
			b = &bucket{at: at}
			buckets[k] = b
		}
		b.n++
	}

	cmp := events.ViewIDOrder(records)
	rows := make([]HourlyCount, 0, len(buckets))
	for k, b := range buckets {
		rows = append(rows, HourlyCount{
			DateHour:  b.at,
			Hour:      b.at.Format(HourLayout),
			ViewID:    k.ViewID,
			Frequency: b.n,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := cmp(rows[i].ViewID, rows[j].ViewID); c != 0 {
			return c < 0
		}
		if rows[i].Hour != rows[j].Hour {
			return rows[i].Hour < rows[j].Hour
		}
		if !rows[i].DateHour.Equal(rows[j].DateHour) {
			return rows[i].DateHour.Before(rows[j].DateHour)
		}
		return rows[i].DateHour.Format(time.RFC3339) < rows[j].DateHour.Format(time.RFC3339)
	})
	return rows
}

// FloorHour truncates t to the start of its clock hour. Unlike
// time.Truncate, the boundary follows t's wall clock.
func FloorHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func (c CameraCount) Count() int { return c.Frequency }
func (c DailyCount) Count() int  { return c.Frequency }
func (c HourlyCount) Count() int { return c.Frequency }

// Total sums the counts of any derived table.
func Total[T interface{ Count() int }](rows []T) int {
	n := 0
	for _, r := range rows {
		n += r.Count()
	}
	return n
}
