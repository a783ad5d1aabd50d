package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/i474232898/weather-lookup/internal/database"
)

func ptr[T any](v T) *T {
	return &v
}

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Options{
		Driver:       database.DriverSQLite,
		DSN:          ":memory:",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     logger.Silent,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func setupStore(t *testing.T, opts ...Option) *HistoryStore {
	t.Helper()
	s := NewHistoryStore(setupSQLite(t), opts...)
	require.NoError(t, s.AutoMigrate(context.Background()))
	return s
}

// steppingClock returns a clock that advances one minute per call.
func steppingClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Minute)
		return now
	}
}

func setupMockDB(t *testing.T) (*HistoryStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	t.Cleanup(func() { sqlDB.Close() })
	return NewHistoryStore(gormDB), mock
}

func TestHistoryStore_CreateAndGet(t *testing.T) {
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := setupStore(t, WithClock(func() time.Time { return stamp }))
	ctx := context.Background()

	created, err := s.Create(ctx, NewRecord{
		Location:    "Paris, France",
		Temperature: 12.5,
		Description: "Partly cloudy",
		StartDate:   ptr("2024-03-01"),
		EndDate:     ptr("2024-03-05"),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.True(t, stamp.Equal(created.Timestamp))
	assert.Nil(t, created.Note)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paris, France", got.Location)
	assert.Equal(t, 12.5, got.Temperature)
	assert.Equal(t, "Partly cloudy", got.Description)
	require.NotNil(t, got.StartDate)
	assert.Equal(t, "2024-03-01", *got.StartDate)
	require.NotNil(t, got.EndDate)
	assert.Equal(t, "2024-03-05", *got.EndDate)
	assert.Nil(t, got.Note)
	assert.True(t, stamp.Equal(got.Timestamp))
}

func TestHistoryStore_ListNewestFirst(t *testing.T) {
	s := setupStore(t, WithClock(steppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	ctx := context.Background()

	for _, loc := range []string{"A", "B", "C"} {
		_, err := s.Create(ctx, NewRecord{Location: loc, Temperature: 1, Description: "x"})
		require.NoError(t, err)
	}

	page, err := s.List(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "C", page[0].Location)
	assert.Equal(t, "B", page[1].Location)

	rest, err := s.List(ctx, 2, 100)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "A", rest[0].Location)

	none, err := s.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestHistoryStore_ListEmpty(t *testing.T) {
	s := setupStore(t)

	records, err := s.List(context.Background(), 0, 100)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestHistoryStore_UpdateOnlyTouchesGivenFields(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, NewRecord{
		Location:    "Berlin",
		Temperature: 3,
		Description: "Fog",
		StartDate:   ptr("2024-02-01"),
		EndDate:     ptr("2024-02-03"),
	})
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, RecordUpdate{Note: ptr("bring a coat")})
	require.NoError(t, err)
	require.NotNil(t, updated.Note)
	assert.Equal(t, "bring a coat", *updated.Note)
	assert.Equal(t, "2024-02-01", *updated.StartDate)
	assert.Equal(t, "2024-02-03", *updated.EndDate)
	assert.Equal(t, "Berlin", updated.Location)
	assert.True(t, created.Timestamp.Equal(updated.Timestamp))

	updated, err = s.Update(ctx, created.ID, RecordUpdate{StartDate: ptr("2024-02-02")})
	require.NoError(t, err)
	assert.Equal(t, "2024-02-02", *updated.StartDate)
	assert.Equal(t, "2024-02-03", *updated.EndDate)
	assert.Equal(t, "bring a coat", *updated.Note)
}

func TestHistoryStore_EmptyUpdateReturnsRecordUnchanged(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, NewRecord{Location: "Oslo", Temperature: -4, Description: "Snow"})
	require.NoError(t, err)

	got, err := s.Update(ctx, created.ID, RecordUpdate{})
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Nil(t, got.Note)
}

func TestHistoryStore_MissingRecord(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, 42)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.Update(ctx, 42, RecordUpdate{Note: ptr("x")})
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.Delete(ctx, 42)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestHistoryStore_Delete(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, NewRecord{Location: "Rome", Temperature: 20, Description: "Sunny"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID))

	_, err = s.Get(ctx, created.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(s.Delete(ctx, created.ID), ErrNotFound))
}

func TestHistoryStore_PruneBefore(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := setupStore(t, WithClock(steppingClock(start)))
	ctx := context.Background()

	for _, loc := range []string{"old-1", "old-2", "new"} {
		_, err := s.Create(ctx, NewRecord{Location: loc, Temperature: 0, Description: "x"})
		require.NoError(t, err)
	}

	n, err := s.PruneBefore(ctx, start.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := s.List(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "new", left[0].Location)
}

func TestHistoryStore_Ping(t *testing.T) {
	s := setupStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestHistoryStore_ListQueryShape(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `weather_history` ORDER BY `timestamp` DESC,`id` DESC LIMIT .+ OFFSET .+").
		WillReturnRows(sqlmock.NewRows([]string{"id", "location", "temperature", "description", "start_date", "end_date", "note", "timestamp"}).
			AddRow(7, "Lisbon", 18.2, "Clear", nil, nil, "sunny", time.Now()))

	records, err := s.List(context.Background(), 5, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uint(7), records[0].ID)
	require.NotNil(t, records[0].Note)
	assert.Equal(t, "sunny", *records[0].Note)
	assert.Nil(t, records[0].StartDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_GetNotFoundWithMock(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `weather_history` WHERE `weather_history`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "location"}))

	_, err := s.Get(context.Background(), 99)
	assert.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_GetDatabaseErrorIsWrapped(t *testing.T) {
	s, mock := setupMockDB(t)

	dbErr := errors.New("connection reset")
	mock.ExpectQuery("SELECT .* FROM `weather_history`").WillReturnError(dbErr)

	_, err := s.Get(context.Background(), 1)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, dbErr))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_PruneQueryShape(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `weather_history` WHERE `timestamp` < \\?").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	n, err := s.PruneBefore(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
