package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// legacyDateRangeColumn is the single combined column older schemas used
	// instead of start_date/end_date.
	legacyDateRangeColumn = "date_range"
	// legacyTable holds the old rows while they are copied into the new schema.
	legacyTable = "weather_history_legacy"

	legacyBatchSize = 500
)

// ErrLegacySchema is returned by AutoMigrate while weather_history still has
// the legacy date_range layout.
var ErrLegacySchema = errors.New("weather_history has the legacy date_range schema; run MigrateLegacyDateRange first")

var isoDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// legacyRecord is a weather_history row as the old schema stored it.
// Every column except id was nullable there.
type legacyRecord struct {
	ID          uint `gorm:"primaryKey"`
	Location    *string
	Temperature *float64
	Description *string
	DateRange   *string
	Note        *string
	Timestamp   *time.Time
}

// hasLegacySchema reports whether weather_history still carries date_range.
func hasLegacySchema(db *gorm.DB) bool {
	m := db.Migrator()
	return m.HasTable(&WeatherHistoryRecord{}) && m.HasColumn(&WeatherHistoryRecord{}, legacyDateRangeColumn)
}

// MigrateLegacyDateRange rebuilds a legacy weather_history table in the
// current layout and reports how many records were carried over.
//
// The legacy table is renamed aside, the new table is created, every row is
// copied with date_range split into start_date/end_date, and the legacy table
// is dropped. It runs in one transaction where the dialect supports
// transactional DDL, and resumes from the renamed table if an earlier run was
// interrupted. It is a no-op on a current schema and must run before
// AutoMigrate.
func (s *HistoryStore) MigrateLegacyDateRange(ctx context.Context, log *zap.Logger) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db := s.db.WithContext(ctx)
	rename := hasLegacySchema(db)
	if !rename && !db.Migrator().HasTable(legacyTable) {
		return 0, nil
	}

	copied, filled := 0, 0
	err := db.Transaction(func(tx *gorm.DB) error {
		if rename {
			if err := tx.Migrator().RenameTable(WeatherHistoryRecord{}.TableName(), legacyTable); err != nil {
				return fmt.Errorf("rename legacy table: %w", err)
			}
		}
		if err := tx.AutoMigrate(&WeatherHistoryRecord{}); err != nil {
			return fmt.Errorf("create weather_history: %w", err)
		}

		var batch []legacyRecord
		res := tx.Table(legacyTable).FindInBatches(&batch, legacyBatchSize, func(_ *gorm.DB, _ int) error {
			records := make([]WeatherHistoryRecord, 0, len(batch))
			for _, old := range batch {
				rec := s.fromLegacy(old)
				if rec.StartDate != nil {
					filled++
				} else if old.DateRange != nil && *old.DateRange != "" {
					log.Warn("legacy date_range has no ISO dates; leaving dates empty",
						zap.Uint("id", old.ID),
						zap.String("date_range", *old.DateRange))
				}
				records = append(records, rec)
			}
			if err := tx.Create(&records).Error; err != nil {
				return fmt.Errorf("copy legacy records: %w", err)
			}
			copied += len(records)
			return nil
		})
		if res.Error != nil {
			return fmt.Errorf("read legacy records: %w", res.Error)
		}

		if err := tx.Migrator().DropTable(legacyTable); err != nil {
			return fmt.Errorf("drop legacy table: %w", err)
		}
		return resetIDSequence(tx)
	})
	if err != nil {
		return 0, err
	}

	if hasLegacySchema(db) || db.Migrator().HasTable(legacyTable) {
		return copied, errors.New("legacy date_range schema still present after migration")
	}

	log.Info("legacy weather_history migrated",
		zap.Int("records", copied),
		zap.Int("date_ranges", filled))
	return copied, nil
}

// fromLegacy maps an old row onto the current model. Missing values become
// zero values, and a missing timestamp becomes the migration time.
func (s *HistoryStore) fromLegacy(old legacyRecord) WeatherHistoryRecord {
	rec := WeatherHistoryRecord{
		ID:   old.ID,
		Note: old.Note,
	}
	if old.Location != nil {
		rec.Location = *old.Location
	}
	if old.Temperature != nil {
		rec.Temperature = *old.Temperature
	}
	if old.Description != nil {
		rec.Description = *old.Description
	}
	if old.Timestamp != nil {
		rec.Timestamp = old.Timestamp.UTC()
	} else {
		rec.Timestamp = s.now().UTC()
	}
	if old.DateRange != nil {
		if start, end, ok := splitLegacyDateRange(*old.DateRange); ok {
			rec.StartDate, rec.EndDate = &start, &end
		}
	}
	return rec
}

// resetIDSequence moves the postgres id sequence past the copied ids.
// sqlite and mysql advance their counters on explicit inserts.
func resetIDSequence(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	err := tx.Exec(
		"SELECT setval(pg_get_serial_sequence(?, 'id'), COALESCE(MAX(id), 0) + 1, false) FROM weather_history",
		WeatherHistoryRecord{}.TableName(),
	).Error
	if err != nil {
		return fmt.Errorf("reset weather_history id sequence: %w", err)
	}
	return nil
}

// splitLegacyDateRange extracts start and end from strings such as
// "2024-01-01", "2024-01-01 to 2024-01-05" or "2024-01-01/2024-01-05".
// A single date is used for both ends.
func splitLegacyDateRange(raw string) (start, end string, ok bool) {
	dates := isoDatePattern.FindAllString(raw, -1)
	if len(dates) == 0 {
		return "", "", false
	}
	return dates[0], dates[len(dates)-1], true
}
