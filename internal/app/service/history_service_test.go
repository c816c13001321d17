package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/binghan60/EKERA-LunchBOT/internal/app/model"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/repository"
	"github.com/binghan60/EKERA-LunchBOT/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupHistoryServiceTest(t *testing.T) (HistoryService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return NewHistoryService(repository.NewDrawHistoryRepository(testDB)), testDB
}

func appendDraw(t *testing.T, testDB *gorm.DB, groupID, name string, drawnAt time.Time) {
	record := &model.DrawRecord{
		GroupID:        groupID,
		RestaurantName: name,
		Office:         "taipei",
		DrawnAt:        drawnAt,
	}
	require.NoError(t, testDB.Create(record).Error)
	// autoCreateTime overwrites DrawnAt on insert, pin it back for the test.
	require.NoError(t, testDB.Model(record).Update("drawn_at", drawnAt).Error)
}

func TestHistoryService_QueryHistory_WholeDayBounds(t *testing.T) {
	svc, testDB := setupHistoryServiceTest(t)

	day := time.Date(2026, 8, 10, 0, 0, 0, 0, time.Local)
	appendDraw(t, testDB, "group-1", "early", day.Add(9*time.Hour))
	appendDraw(t, testDB, "group-1", "late", day.Add(23*time.Hour+59*time.Minute))
	appendDraw(t, testDB, "group-1", "before", day.Add(-time.Hour))
	appendDraw(t, testDB, "group-1", "after", day.Add(25*time.Hour))

	// A single-day range covers 00:00:00 through 23:59:59.999.
	records, err := svc.QueryHistory("group-1", "2026-08-10", "2026-08-10")
	require.NoError(t, err)
	require.Len(t, records, 2)
	names := []string{records[0].RestaurantName, records[1].RestaurantName}
	assert.ElementsMatch(t, []string{"early", "late"}, names)

	// One-sided ranges leave the other side unbounded.
	records, err = svc.QueryHistory("group-1", "2026-08-10", "")
	require.NoError(t, err)
	assert.Len(t, records, 3)

	records, err = svc.QueryHistory("group-1", "", "2026-08-09")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "before", records[0].RestaurantName)
}

func TestHistoryService_QueryHistory_InvalidDates(t *testing.T) {
	svc, _ := setupHistoryServiceTest(t)

	_, err := svc.QueryHistory("group-1", "not-a-date", "")
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = svc.QueryHistory("group-1", "2026-08-10", "2026-08-01")
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestHistoryService_QueryStatistics(t *testing.T) {
	svc, testDB := setupHistoryServiceTest(t)

	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.Local)
	for i := 0; i < 3; i++ {
		appendDraw(t, testDB, "group-1", "noodles", now)
	}
	appendDraw(t, testDB, "group-1", "curry", now)
	appendDraw(t, testDB, "group-2", "noodles", now)

	stats, err := svc.QueryStatistics("group-1", "", "")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	// Sorted by count descending, and scoped to the group.
	assert.Equal(t, "noodles", stats[0].RestaurantName)
	assert.EqualValues(t, 3, stats[0].Count)
	assert.Equal(t, "curry", stats[1].RestaurantName)
	assert.EqualValues(t, 1, stats[1].Count)
}

func TestHistoryService_ExportStatistics(t *testing.T) {
	svc, testDB := setupHistoryServiceTest(t)

	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.Local)
	appendDraw(t, testDB, "group-1", "noodles", now)
	appendDraw(t, testDB, "group-1", "noodles", now)

	data, err := svc.ExportStatistics("group-1", "", "")
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "noodles", rows[1][0])
	assert.Equal(t, "2", rows[1][1])
}
