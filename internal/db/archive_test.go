package db

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"cctvinsight/internal/analysis"
	"cctvinsight/internal/events"
)

func sampleRecords() []events.Record {
	at := time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)
	return []events.Record{
		{ViewID: "1", Time: at, Extra: map[string]string{"severity": "high"}},
		{ViewID: "1", Time: at.Add(30 * time.Minute)},
		{ViewID: "2", Time: at.Add(24 * time.Hour)},
	}
}

func TestNewLoadRun(t *testing.T) {
	records := sampleRecords()
	tables := analysis.Build(records)
	at := time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)

	run := NewLoadRun("https://example.com/log.csv", 512, tables, at)

	if _, err := uuid.Parse(run.ID); err != nil {
		t.Errorf("run id is not a uuid: %q", run.ID)
	}
	if run.Records != 3 || run.Cameras != 2 || run.SourceBytes != 512 || !run.CreatedAt.Equal(at) {
		t.Errorf("unexpected run: %+v", run)
	}

	other := NewLoadRun("https://example.com/log.csv", 512, tables, at)
	if other.ID == run.ID {
		t.Error("each run should get its own id")
	}
}

func TestEventRows(t *testing.T) {
	records := sampleRecords()
	rows := eventRows("run-1", records)

	if len(rows) != len(records) {
		t.Fatalf("expected %d rows, got %d", len(records), len(rows))
	}
	for i, row := range rows {
		if row.LoadRunID != "run-1" || row.ViewID != records[i].ViewID || !row.OccurredAt.Equal(records[i].Time) {
			t.Errorf("row %d: unexpected %+v", i, row)
		}
	}
	if rows[0].Extra["severity"] != "high" {
		t.Errorf("extra columns not kept: %v", rows[0].Extra)
	}
	if rows[1].Extra != nil {
		t.Errorf("records without extra columns should store null, got %v", rows[1].Extra)
	}

	records[0].Extra["severity"] = "low"
	if rows[0].Extra["severity"] != "high" {
		t.Error("archived extra should not alias the record's map")
	}
}

func TestCameraRows(t *testing.T) {
	tables := analysis.Build(sampleRecords())
	rows := cameraRows("run-1", tables.Cameras)

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ViewID != "1" || rows[0].Frequency != 2 || rows[1].ViewID != "2" || rows[1].Frequency != 1 {
		t.Errorf("unexpected camera rows: %+v", rows)
	}
	for _, r := range rows {
		if r.LoadRunID != "run-1" {
			t.Errorf("row not tied to run: %+v", r)
		}
	}
}
