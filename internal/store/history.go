package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when no history record has the requested id.
	ErrNotFound = errors.New("history record not found")
)

// HistoryStore persists weather lookup history through gorm.
// It holds no state besides the injected handle, so concurrent updates to
// the same record are last-write-wins.
type HistoryStore struct {
	db  *gorm.DB
	now func() time.Time
}

// Option customizes a HistoryStore.
type Option func(*HistoryStore)

// WithClock replaces the clock used to stamp new records.
func WithClock(now func() time.Time) Option {
	return func(s *HistoryStore) {
		s.now = now
	}
}

// NewHistoryStore creates a store on top of an open gorm handle.
func NewHistoryStore(db *gorm.DB, opts ...Option) *HistoryStore {
	s := &HistoryStore{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AutoMigrate creates or updates the weather_history table.
// It refuses a legacy table, which gorm would rebuild without its data.
func (s *HistoryStore) AutoMigrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if hasLegacySchema(db) {
		return ErrLegacySchema
	}
	if err := db.AutoMigrate(&WeatherHistoryRecord{}); err != nil {
		return fmt.Errorf("auto migrate weather_history: %w", err)
	}
	return nil
}

// Create stamps the record with the current UTC time and inserts it.
func (s *HistoryStore) Create(ctx context.Context, in NewRecord) (WeatherHistoryRecord, error) {
	rec := WeatherHistoryRecord{
		Location:    in.Location,
		Temperature: in.Temperature,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Note:        in.Note,
		Timestamp:   s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return WeatherHistoryRecord{}, fmt.Errorf("create history record: %w", err)
	}
	return rec, nil
}

// List returns one page of records, most recent first.
func (s *HistoryStore) List(ctx context.Context, skip, limit int) ([]WeatherHistoryRecord, error) {
	records := make([]WeatherHistoryRecord, 0)
	err := s.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Offset(skip).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list history records: %w", err)
	}
	return records, nil
}

// Get returns the record with the given id.
func (s *HistoryStore) Get(ctx context.Context, id uint) (WeatherHistoryRecord, error) {
	var rec WeatherHistoryRecord
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WeatherHistoryRecord{}, ErrNotFound
		}
		return WeatherHistoryRecord{}, fmt.Errorf("get history record %d: %w", id, err)
	}
	return rec, nil
}

// Update applies the non-nil fields of upd and returns the stored record.
func (s *HistoryStore) Update(ctx context.Context, id uint, upd RecordUpdate) (WeatherHistoryRecord, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return WeatherHistoryRecord{}, err
	}

	updates := upd.columns()
	if len(updates) == 0 {
		return rec, nil
	}

	if err := s.db.WithContext(ctx).Model(&rec).Updates(updates).Error; err != nil {
		return WeatherHistoryRecord{}, fmt.Errorf("update history record %d: %w", id, err)
	}
	return s.Get(ctx, id)
}

// Delete removes the record permanently.
func (s *HistoryStore) Delete(ctx context.Context, id uint) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&rec).Error; err != nil {
		return fmt.Errorf("delete history record %d: %w", id, err)
	}
	return nil
}

// PruneBefore deletes every record stamped before cutoff and reports how many went.
func (s *HistoryStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where(clause.Lt{Column: clause.Column{Name: "timestamp"}, Value: cutoff.UTC()}).
		Delete(&WeatherHistoryRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune history records: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Ping checks the underlying connection.
func (s *HistoryStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
