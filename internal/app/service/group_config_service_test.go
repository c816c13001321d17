package service

import (
	"testing"

	"github.com/binghan60/EKERA-LunchBOT/internal/app/model"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/repository"
	"github.com/binghan60/EKERA-LunchBOT/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupGroupConfigServiceTest(t *testing.T) (GroupConfigService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	svc := NewGroupConfigService(
		repository.NewGroupConfigRepository(testDB),
		repository.NewBindingRepository(testDB),
	)
	return svc, testDB
}

func TestGroupConfigService_EnsureConfig_Bootstrap(t *testing.T) {
	svc, _ := setupGroupConfigServiceTest(t)

	config, err := svc.EnsureConfig("group-1")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultOffice, config.CurrentOffice)
	assert.Equal(t, model.StringArray{model.DefaultOffice}, config.OfficeOption)
	assert.False(t, config.LunchNotification)

	// Second call returns the same record instead of creating another.
	again, err := svc.EnsureConfig("group-1")
	require.NoError(t, err)
	assert.Equal(t, config.ID, again.ID)
}

func TestGroupConfigService_CreateConfig(t *testing.T) {
	svc, _ := setupGroupConfigServiceTest(t)

	_, err := svc.CreateConfig("group-1", "hsinchu", []string{"taipei"}, false)
	assert.ErrorIs(t, err, ErrOfficeNotInOptions)

	config, err := svc.CreateConfig("group-1", "taipei", []string{"taipei", "hsinchu"}, true)
	require.NoError(t, err)
	assert.Equal(t, "taipei", config.CurrentOffice)
	assert.True(t, config.LunchNotification)

	_, err = svc.CreateConfig("group-1", "taipei", []string{"taipei"}, false)
	assert.ErrorIs(t, err, ErrConfigExists)
}

func TestGroupConfigService_AddOffice(t *testing.T) {
	svc, _ := setupGroupConfigServiceTest(t)

	config, added, err := svc.AddOffice("group-1", "taipei")
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, config.HasOffice("taipei"))

	// Duplicate and blank names are silent no-ops.
	_, added, err = svc.AddOffice("group-1", "taipei")
	require.NoError(t, err)
	assert.False(t, added)

	_, added, err = svc.AddOffice("group-1", "   ")
	require.NoError(t, err)
	assert.False(t, added)
}

func TestGroupConfigService_RemoveOffice(t *testing.T) {
	svc, testDB := setupGroupConfigServiceTest(t)

	_, err := svc.CreateConfig("group-1", "taipei", []string{"taipei", "hsinchu"}, false)
	require.NoError(t, err)

	r := createRestaurant(t, testDB, "group-1", "noodles", true)
	bindRestaurant(t, testDB, "group-1", "hsinchu", r.ID, true)
	bindRestaurant(t, testDB, "group-1", "taipei", r.ID, true)

	_, err = svc.RemoveOffice("group-1", "taipei")
	assert.ErrorIs(t, err, ErrOfficeInUse)

	_, err = svc.RemoveOffice("group-1", "kaohsiung")
	assert.ErrorIs(t, err, ErrInvalidOffice)

	config, err := svc.RemoveOffice("group-1", "hsinchu")
	require.NoError(t, err)
	assert.False(t, config.HasOffice("hsinchu"))

	// The removed office's bindings are gone, the rest survive.
	var count int64
	require.NoError(t, testDB.Model(&model.OfficeBinding{}).
		Where("group_id = ? AND office = ?", "group-1", "hsinchu").Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, testDB.Model(&model.OfficeBinding{}).
		Where("group_id = ? AND office = ?", "group-1", "taipei").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGroupConfigService_UpdateConfig_ShrinkCascades(t *testing.T) {
	svc, testDB := setupGroupConfigServiceTest(t)

	_, err := svc.CreateConfig("group-1", "taipei", []string{"taipei", "hsinchu", "tainan"}, false)
	require.NoError(t, err)

	r := createRestaurant(t, testDB, "group-1", "noodles", true)
	bindRestaurant(t, testDB, "group-1", "hsinchu", r.ID, true)
	bindRestaurant(t, testDB, "group-1", "tainan", r.ID, true)
	bindRestaurant(t, testDB, "group-1", "taipei", r.ID, true)

	newOptions := []string{"taipei"}
	config, err := svc.UpdateConfig("group-1", GroupConfigUpdateInput{OfficeOption: &newOptions})
	require.NoError(t, err)
	assert.Equal(t, model.StringArray{"taipei"}, config.OfficeOption)

	var count int64
	require.NoError(t, testDB.Model(&model.OfficeBinding{}).
		Where("group_id = ?", "group-1").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGroupConfigService_UpdateConfig_Validation(t *testing.T) {
	svc, _ := setupGroupConfigServiceTest(t)

	_, err := svc.CreateConfig("group-1", "taipei", []string{"taipei", "hsinchu"}, false)
	require.NoError(t, err)

	// Shrinking the options away from the current office is rejected.
	newOptions := []string{"hsinchu"}
	_, err = svc.UpdateConfig("group-1", GroupConfigUpdateInput{OfficeOption: &newOptions})
	assert.ErrorIs(t, err, ErrOfficeNotInOptions)

	// Moving the current office in the same update is fine.
	office := "hsinchu"
	config, err := svc.UpdateConfig("group-1", GroupConfigUpdateInput{
		OfficeOption:  &newOptions,
		CurrentOffice: &office,
	})
	require.NoError(t, err)
	assert.Equal(t, "hsinchu", config.CurrentOffice)
}

func TestGroupConfigService_SetCurrentOffice(t *testing.T) {
	svc, _ := setupGroupConfigServiceTest(t)

	_, err := svc.SetCurrentOffice("group-1", "taipei")
	assert.ErrorIs(t, err, ErrGroupNotConfigured)

	_, err = svc.CreateConfig("group-1", "taipei", []string{"taipei", "hsinchu"}, false)
	require.NoError(t, err)

	_, err = svc.SetCurrentOffice("group-1", "kaohsiung")
	assert.ErrorIs(t, err, ErrInvalidOffice)

	config, err := svc.SetCurrentOffice("group-1", "hsinchu")
	require.NoError(t, err)
	assert.Equal(t, "hsinchu", config.CurrentOffice)
}

func TestGroupConfigService_SetLunchNotification(t *testing.T) {
	svc, _ := setupGroupConfigServiceTest(t)

	config, err := svc.SetLunchNotification("group-1", true)
	require.NoError(t, err)
	assert.True(t, config.LunchNotification)

	notifiable, err := svc.ListNotifiable()
	require.NoError(t, err)
	require.Len(t, notifiable, 1)
	assert.Equal(t, "group-1", notifiable[0].GroupID)

	_, err = svc.SetLunchNotification("group-1", false)
	require.NoError(t, err)

	notifiable, err = svc.ListNotifiable()
	require.NoError(t, err)
	assert.Empty(t, notifiable)
}
