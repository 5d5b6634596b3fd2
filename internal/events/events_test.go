package events

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

func TestReadCSV(t *testing.T) {
	input := "id,view_id,datetime,event\n" +
		"0,1,2024-01-01 10:15:00,Video Frame Missing\n" +
		"1,1,2024-01-01 10:45:00,Video Frame Missing\n" +
		"2,2,2024-01-01T11:05:00,Video Frame Missing\n"

	records, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	want := time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)
	if records[0].ViewID != "1" || !records[0].Time.Equal(want) {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if records[2].ViewID != "2" || records[2].Time.Hour() != 11 {
		t.Errorf("Unexpected third record: %+v", records[2])
	}
	if records[1].Extra["event"] != "Video Frame Missing" || records[1].Extra["id"] != "1" {
		t.Errorf("Extra columns not carried: %+v", records[1].Extra)
	}
	if _, ok := records[1].Extra["view_id"]; ok {
		t.Error("view_id should not be duplicated into Extra")
	}
}

func TestReadCSVHeaderOnly(t *testing.T) {
	records, err := ReadCSV(strings.NewReader("view_id,datetime\n"))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
		is      error
	}{
		{name: "empty file", input: "", wantErr: "empty file"},
		{name: "missing view_id", input: "camera,datetime\n1,2024-01-01 10:00:00\n", is: ErrMissingColumn},
		{name: "missing datetime", input: "view_id,time\n1,2024-01-01 10:00:00\n", is: ErrMissingColumn},
		{name: "bad timestamp", input: "view_id,datetime\n1,2024-01-01 10:00:00\n2,yesterday\n", wantErr: "line 3"},
		{name: "empty view_id", input: "view_id,datetime\n,2024-01-01 10:00:00\n", wantErr: "empty view_id"},
		{name: "short row", input: "datetime,x,view_id\n2024-01-01 10:00:00\n", wantErr: "expected at least 3 fields"},
		{name: "bad quoting", input: "view_id,datetime\n\"1,2024-01-01 10:00:00\n", wantErr: "reading csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("Expected %v, got %v", tt.is, err)
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestReadCSVByteOrderMark(t *testing.T) {
	records, err := ReadCSV(strings.NewReader("\ufeffview_id,datetime\n7,2024-03-05 23:59:59\n"))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(records) != 1 || records[0].ViewID != "7" {
		t.Errorf("Unexpected records: %+v", records)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	if err := os.WriteFile(path, []byte("view_id,datetime\n3,2024-02-01 08:00:00\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	records, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected 1 record, got %d", len(records))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01 10:15:00", time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)},
		{"2024-01-01 10:15:00.250", time.Date(2024, 1, 1, 10, 15, 0, 250_000_000, time.UTC)},
		{"2024-01-01T10:15:00", time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)},
		{"2024-01-01 10:15", time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)},
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"01/02/2024 10:15:00", time.Date(2024, 1, 2, 10, 15, 0, 0, time.UTC)},
		{"01/02/2024", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"1/2/2024 10:15", time.Date(2024, 1, 2, 10, 15, 0, 0, time.UTC)},
		{"1/2/2024 9:05:00", time.Date(2024, 1, 2, 9, 5, 0, 0, time.UTC)},
		{"12/31/2024", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"2024/01/01 10:15:00", time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)},
		{"2024/01/01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01 10:15:00 +0000", time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)},
		{"2024-01-01 15:45:00 +05:30", time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)},
		{" 2024-01-01 10:15:00 ", time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTime(tt.in)
		if err != nil {
			t.Errorf("ParseTime(%q) error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	withOffset, err := ParseTime("2024-01-01T10:15:00+05:30")
	if err != nil {
		t.Fatalf("ParseTime with offset: %v", err)
	}
	if withOffset.Hour() != 10 {
		t.Errorf("Offset timestamps should keep their wall clock, got hour %d", withOffset.Hour())
	}

	if _, err := ParseTime("not a time"); err == nil {
		t.Error("Expected error for garbage timestamp")
	}
}

func TestViewIDOrder(t *testing.T) {
	records := func(ids ...string) []Record {
		out := make([]Record, len(ids))
		for i, id := range ids {
			out[i] = Record{ViewID: id}
		}
		return out
	}

	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{"all integers sort numerically", []string{"10", "9", "2", "100"}, []string{"2", "9", "10", "100"}},
		{"any text id sorts the column as text", []string{"10", "9", "a", "2"}, []string{"10", "2", "9", "a"}},
		{"text only", []string{"cam-b", "cam-a"}, []string{"cam-a", "cam-b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmp := ViewIDOrder(records(tt.ids...))
			ids := append([]string(nil), tt.ids...)
			sort.Slice(ids, func(i, j int) bool { return cmp(ids[i], ids[j]) < 0 })
			for i := range tt.want {
				if ids[i] != tt.want[i] {
					t.Fatalf("Unexpected order: %v, want %v", ids, tt.want)
				}
			}
		})
	}
}
