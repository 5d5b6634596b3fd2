package db

import (
	"time"

	"gorm.io/gorm"
)

// PruneRuns deletes load runs older than retentionDays, together with their
// events and camera totals. It returns the number of runs removed.
func PruneRuns(db *gorm.DB, retentionDays int, now time.Time) (int64, error) {
	cutoff := now.Add(-time.Duration(retentionDays) * 24 * time.Hour)

	var removed int64
	err := db.Transaction(func(tx *gorm.DB) error {
		old := tx.Model(&LoadRun{}).Select("id").Where("created_at < ?", cutoff)

		if err := tx.Where("load_run_id IN (?)", old).Delete(&Event{}).Error; err != nil {
			return err
		}
		if err := tx.Where("load_run_id IN (?)", old).Delete(&CameraTotal{}).Error; err != nil {
			return err
		}
		res := tx.Where("created_at < ?", cutoff).Delete(&LoadRun{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return nil
	})
	return removed, err
}
