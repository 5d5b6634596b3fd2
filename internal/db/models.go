package db

import (
	"time"

	"gorm.io/datatypes"
)

// LoadRun records one startup load of the event log.
type LoadRun struct {
	ID string `gorm:"primaryKey;size:36"`

	CreatedAt time.Time `gorm:"index"`

	SourceURL   string `gorm:"size:1024"`
	SourceBytes int64
	Records     int
	Cameras     int
}

// Event is one archived frame-missing event. Columns of the CSV other than
// view_id and datetime are kept in Extra.
type Event struct {
	ID uint `gorm:"primaryKey"`

	LoadRunID  string    `gorm:"index;size:36;not null"`
	ViewID     string    `gorm:"index;size:64;not null"`
	OccurredAt time.Time `gorm:"index;not null"`

	Extra datatypes.JSONMap
}

// CameraTotal stores the camera frequency table of a run.
type CameraTotal struct {
	ID uint `gorm:"primaryKey"`

	LoadRunID string `gorm:"uniqueIndex:idx_camera_total_unique,priority:1;size:36;not null"`
	ViewID    string `gorm:"uniqueIndex:idx_camera_total_unique,priority:2;size:64;not null"`
	Frequency int    `gorm:"not null"`
}
