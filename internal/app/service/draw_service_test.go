package service

import (
	"errors"
	"testing"

	"github.com/binghan60/EKERA-LunchBOT/internal/app/model"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/repository"
	"github.com/binghan60/EKERA-LunchBOT/internal/db"
	"github.com/binghan60/EKERA-LunchBOT/pkg/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// failingHistoryRepo simulates a broken ledger.
type failingHistoryRepo struct{}

func (failingHistoryRepo) Create(*model.DrawRecord) error { return errors.New("ledger down") }
func (failingHistoryRepo) FindByFilter(repository.HistoryFilter) ([]model.DrawRecord, error) {
	return nil, errors.New("ledger down")
}
func (failingHistoryRepo) CountByRestaurant(repository.HistoryFilter) ([]repository.DrawCount, error) {
	return nil, errors.New("ledger down")
}

func setupDrawServiceTest(t *testing.T) (DrawService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	svc := NewDrawService(
		repository.NewBindingRepository(testDB),
		repository.NewRestaurantRepository(testDB),
		repository.NewGroupConfigRepository(testDB),
		repository.NewDrawHistoryRepository(testDB),
		mailer.Noop(),
	)
	return svc, testDB
}

func createRestaurant(t *testing.T, testDB *gorm.DB, groupID, name string, active bool) *model.Restaurant {
	r := &model.Restaurant{
		GroupID:  groupID,
		Name:     name,
		IsActive: active,
	}
	require.NoError(t, testDB.Create(r).Error)
	return r
}

func bindRestaurant(t *testing.T, testDB *gorm.DB, groupID, office string, restaurantID uint, active bool) *model.OfficeBinding {
	b := &model.OfficeBinding{
		GroupID:          groupID,
		Office:           office,
		RestaurantID:     restaurantID,
		IsActiveInOffice: active,
	}
	require.NoError(t, testDB.Create(b).Error)
	return b
}

func TestDrawService_Draw_NoBindings(t *testing.T) {
	svc, _ := setupDrawServiceTest(t)

	restaurant, err := svc.Draw("group-1", "taipei")
	require.NoError(t, err)
	assert.Nil(t, restaurant)
}

func TestDrawService_Draw_InactiveBindingFiltered(t *testing.T) {
	svc, testDB := setupDrawServiceTest(t)

	r := createRestaurant(t, testDB, "group-1", "noodles", true)
	bindRestaurant(t, testDB, "group-1", "taipei", r.ID, false)

	restaurant, err := svc.Draw("group-1", "taipei")
	require.NoError(t, err)
	assert.Nil(t, restaurant)
}

func TestDrawService_Draw_CatalogInactiveFiltered(t *testing.T) {
	svc, testDB := setupDrawServiceTest(t)

	// Binding says active, catalog says no. Catalog wins.
	r := createRestaurant(t, testDB, "group-1", "noodles", false)
	bindRestaurant(t, testDB, "group-1", "taipei", r.ID, true)

	restaurant, err := svc.Draw("group-1", "taipei")
	require.NoError(t, err)
	assert.Nil(t, restaurant)
}

func TestDrawService_Draw_ScopedToOfficeAndGroup(t *testing.T) {
	svc, testDB := setupDrawServiceTest(t)

	here := createRestaurant(t, testDB, "group-1", "noodles", true)
	bindRestaurant(t, testDB, "group-1", "taipei", here.ID, true)

	elsewhere := createRestaurant(t, testDB, "group-1", "curry", true)
	bindRestaurant(t, testDB, "group-1", "hsinchu", elsewhere.ID, true)

	otherGroup := createRestaurant(t, testDB, "group-2", "sushi", true)
	bindRestaurant(t, testDB, "group-2", "taipei", otherGroup.ID, true)

	for i := 0; i < 10; i++ {
		restaurant, err := svc.Draw("group-1", "taipei")
		require.NoError(t, err)
		require.NotNil(t, restaurant)
		assert.Equal(t, here.ID, restaurant.ID)
	}
}

func TestDrawService_Draw_DeterministicPick(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	restaurantRepo := repository.NewRestaurantRepository(testDB)
	bindingRepo := repository.NewBindingRepository(testDB)

	a := createRestaurant(t, testDB, "group-1", "a", true)
	b := createRestaurant(t, testDB, "group-1", "b", true)
	c := createRestaurant(t, testDB, "group-1", "c", true)
	for _, r := range []*model.Restaurant{a, b, c} {
		bindRestaurant(t, testDB, "group-1", "taipei", r.ID, true)
	}

	svc := NewDrawService(
		bindingRepo,
		restaurantRepo,
		repository.NewGroupConfigRepository(testDB),
		repository.NewDrawHistoryRepository(testDB),
		mailer.Noop(),
		func(n int) int { return n - 1 },
	)

	restaurant, err := svc.Draw("group-1", "taipei")
	require.NoError(t, err)
	require.NotNil(t, restaurant)
	// Candidates come back ordered by id, the picker takes the last one.
	assert.Equal(t, c.ID, restaurant.ID)
}

func TestDrawService_Draw_AppendsLedger(t *testing.T) {
	svc, testDB := setupDrawServiceTest(t)

	r := createRestaurant(t, testDB, "group-1", "noodles", true)
	bindRestaurant(t, testDB, "group-1", "taipei", r.ID, true)

	for i := 0; i < 3; i++ {
		_, err := svc.Draw("group-1", "taipei")
		require.NoError(t, err)
	}

	var records []model.DrawRecord
	require.NoError(t, testDB.Where("group_id = ?", "group-1").Find(&records).Error)
	require.Len(t, records, 3)
	for _, rec := range records {
		assert.Equal(t, "noodles", rec.RestaurantName)
		assert.Equal(t, "taipei", rec.Office)
		require.NotNil(t, rec.RestaurantID)
		assert.Equal(t, r.ID, *rec.RestaurantID)
	}
}

func TestDrawService_Draw_LedgerFailureDoesNotBlockResult(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	r := createRestaurant(t, testDB, "group-1", "noodles", true)
	bindRestaurant(t, testDB, "group-1", "taipei", r.ID, true)

	svc := NewDrawService(
		repository.NewBindingRepository(testDB),
		repository.NewRestaurantRepository(testDB),
		repository.NewGroupConfigRepository(testDB),
		failingHistoryRepo{},
		mailer.Noop(),
	)

	restaurant, err := svc.Draw("group-1", "taipei")
	require.NoError(t, err)
	require.NotNil(t, restaurant)
	assert.Equal(t, r.ID, restaurant.ID)
}

func TestDrawService_DrawForGroup_NotConfigured(t *testing.T) {
	svc, _ := setupDrawServiceTest(t)

	_, _, err := svc.DrawForGroup("group-1")
	assert.ErrorIs(t, err, ErrGroupNotConfigured)
}

func TestDrawService_DrawForGroup_UsesCurrentOffice(t *testing.T) {
	svc, testDB := setupDrawServiceTest(t)

	require.NoError(t, testDB.Create(&model.GroupConfig{
		GroupID:       "group-1",
		CurrentOffice: "hsinchu",
		OfficeOption:  model.StringArray{"taipei", "hsinchu"},
	}).Error)

	taipei := createRestaurant(t, testDB, "group-1", "noodles", true)
	bindRestaurant(t, testDB, "group-1", "taipei", taipei.ID, true)
	hsinchu := createRestaurant(t, testDB, "group-1", "curry", true)
	bindRestaurant(t, testDB, "group-1", "hsinchu", hsinchu.ID, true)

	restaurant, office, err := svc.DrawForGroup("group-1")
	require.NoError(t, err)
	require.NotNil(t, restaurant)
	assert.Equal(t, "hsinchu", office)
	assert.Equal(t, hsinchu.ID, restaurant.ID)
}

// An office dropped from the option set still draws while bindings remain.
func TestDrawService_Draw_OfficeOutsideOptions(t *testing.T) {
	svc, testDB := setupDrawServiceTest(t)

	require.NoError(t, testDB.Create(&model.GroupConfig{
		GroupID:       "group-1",
		CurrentOffice: "taipei",
		OfficeOption:  model.StringArray{"taipei"},
	}).Error)

	r := createRestaurant(t, testDB, "group-1", "noodles", true)
	bindRestaurant(t, testDB, "group-1", "legacy", r.ID, true)

	restaurant, err := svc.Draw("group-1", "legacy")
	require.NoError(t, err)
	require.NotNil(t, restaurant)
	assert.Equal(t, r.ID, restaurant.ID)
}
