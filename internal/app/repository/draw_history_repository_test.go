package repository

import (
	"testing"
	"time"

	"github.com/binghan60/EKERA-LunchBOT/internal/app/model"
	"github.com/binghan60/EKERA-LunchBOT/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupHistoryRepoTest(t *testing.T) (DrawHistoryRepository, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return NewDrawHistoryRepository(testDB), testDB
}

func TestDrawHistoryRepository_CreateAndFind(t *testing.T) {
	repo, _ := setupHistoryRepoTest(t)

	require.NoError(t, repo.Create(&model.DrawRecord{
		GroupID:        "group-1",
		RestaurantName: "noodles",
		Office:         "taipei",
	}))

	records, err := repo.FindByFilter(HistoryFilter{GroupID: "group-1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "noodles", records[0].RestaurantName)
	assert.False(t, records[0].DrawnAt.IsZero())

	// Other groups see nothing.
	records, err = repo.FindByFilter(HistoryFilter{GroupID: "group-2"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDrawHistoryRepository_FindByFilter_Range(t *testing.T) {
	repo, testDB := setupHistoryRepoTest(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.Local)
	for i := 0; i < 5; i++ {
		record := &model.DrawRecord{
			GroupID:        "group-1",
			RestaurantName: "noodles",
			Office:         "taipei",
		}
		require.NoError(t, repo.Create(record))
		require.NoError(t, testDB.Model(record).Update("drawn_at", base.AddDate(0, 0, i)).Error)
	}

	start := base.AddDate(0, 0, 1)
	end := base.AddDate(0, 0, 3)
	records, err := repo.FindByFilter(HistoryFilter{GroupID: "group-1", Start: &start, End: &end})
	require.NoError(t, err)
	assert.Len(t, records, 3)

	// Newest first.
	require.True(t, records[0].DrawnAt.After(records[1].DrawnAt))
}

// Deleting a restaurant nulls the reference but keeps the ledger row and its
// denormalized name, so statistics still count it.
func TestDrawHistoryRepository_SurvivesRestaurantDeletion(t *testing.T) {
	repo, testDB := setupHistoryRepoTest(t)

	restaurant := &model.Restaurant{GroupID: "group-1", Name: "noodles", IsActive: true}
	require.NoError(t, testDB.Create(restaurant).Error)

	id := restaurant.ID
	require.NoError(t, repo.Create(&model.DrawRecord{
		GroupID:        "group-1",
		RestaurantID:   &id,
		RestaurantName: "noodles",
		Office:         "taipei",
	}))

	require.NoError(t, testDB.Delete(&model.Restaurant{}, restaurant.ID).Error)

	records, err := repo.FindByFilter(HistoryFilter{GroupID: "group-1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "noodles", records[0].RestaurantName)

	counts, err := repo.CountByRestaurant(HistoryFilter{GroupID: "group-1"})
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, "noodles", counts[0].RestaurantName)
	assert.EqualValues(t, 1, counts[0].Count)
}

func TestDrawHistoryRepository_CountByRestaurant_Order(t *testing.T) {
	repo, _ := setupHistoryRepoTest(t)

	for i := 0; i < 2; i++ {
		require.NoError(t, repo.Create(&model.DrawRecord{
			GroupID: "group-1", RestaurantName: "curry", Office: "taipei",
		}))
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, repo.Create(&model.DrawRecord{
			GroupID: "group-1", RestaurantName: "noodles", Office: "taipei",
		}))
	}

	counts, err := repo.CountByRestaurant(HistoryFilter{GroupID: "group-1"})
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "noodles", counts[0].RestaurantName)
	assert.EqualValues(t, 4, counts[0].Count)
	assert.Equal(t, "curry", counts[1].RestaurantName)
	assert.EqualValues(t, 2, counts[1].Count)
}
