package store

import "time"

// WeatherHistoryRecord is one logged weather lookup.
// Location, Temperature, Description and Timestamp are write-once;
// only Note, StartDate and EndDate change after creation.
type WeatherHistoryRecord struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Location    string    `json:"location" gorm:"index;not null"`
	Temperature float64   `json:"temperature" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	StartDate   *string   `json:"start_date" gorm:"size:10"` // YYYY-MM-DD
	EndDate     *string   `json:"end_date" gorm:"size:10"`   // YYYY-MM-DD
	Note        *string   `json:"note"`
	Timestamp   time.Time `json:"timestamp" gorm:"index;not null"` // UTC, set on create
}

// TableName keeps the table name stable across gorm naming strategies.
func (WeatherHistoryRecord) TableName() string {
	return "weather_history"
}

// NewRecord carries the client-supplied fields of a record to create.
type NewRecord struct {
	Location    string
	Temperature float64
	Description string
	StartDate   *string
	EndDate     *string
	Note        *string
}

// RecordUpdate is a partial update; nil fields are left untouched.
type RecordUpdate struct {
	Note      *string
	StartDate *string
	EndDate   *string
}

func (u RecordUpdate) columns() map[string]interface{} {
	updates := map[string]interface{}{}
	if u.Note != nil {
		updates["note"] = *u.Note
	}
	if u.StartDate != nil {
		updates["start_date"] = *u.StartDate
	}
	if u.EndDate != nil {
		updates["end_date"] = *u.EndDate
	}
	return updates
}
