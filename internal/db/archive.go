package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"cctvinsight/internal/analysis"
	"cctvinsight/internal/events"
)

// eventBatchSize bounds the rows per INSERT when archiving events.
const eventBatchSize = 1000

// NewLoadRun describes a load before it is archived.
func NewLoadRun(sourceURL string, sourceBytes int64, tables analysis.Tables, at time.Time) LoadRun {
	return LoadRun{
		ID:          uuid.NewString(),
		CreatedAt:   at,
		SourceURL:   sourceURL,
		SourceBytes: sourceBytes,
		Records:     tables.Records,
		Cameras:     len(tables.Cameras),
	}
}

// eventRows converts records into archive rows for run.
func eventRows(runID string, records []events.Record) []Event {
	rows := make([]Event, 0, len(records))
	for _, r := range records {
		var extra datatypes.JSONMap
		if len(r.Extra) > 0 {
			extra = make(datatypes.JSONMap, len(r.Extra))
			for k, v := range r.Extra {
				extra[k] = v
			}
		}
		rows = append(rows, Event{
			LoadRunID:  runID,
			ViewID:     r.ViewID,
			OccurredAt: r.Time,
			Extra:      extra,
		})
	}
	return rows
}

func cameraRows(runID string, cams []analysis.CameraCount) []CameraTotal {
	rows := make([]CameraTotal, 0, len(cams))
	for _, c := range cams {
		rows = append(rows, CameraTotal{LoadRunID: runID, ViewID: c.ViewID, Frequency: c.Frequency})
	}
	return rows
}

// SaveRun archives run with its events and camera totals in one transaction.
func SaveRun(db *gorm.DB, run LoadRun, records []events.Record, tables analysis.Tables) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("create load run: %w", err)
		}

		if evs := eventRows(run.ID, records); len(evs) > 0 {
			if err := tx.CreateInBatches(evs, eventBatchSize).Error; err != nil {
				return fmt.Errorf("archive events: %w", err)
			}
		}
		if cams := cameraRows(run.ID, tables.Cameras); len(cams) > 0 {
			if err := tx.Create(&cams).Error; err != nil {
				return fmt.Errorf("archive camera totals: %w", err)
			}
		}
		return nil
	})
}
