package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/model"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/repository"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/service"
	"github.com/binghan60/EKERA-LunchBOT/internal/db"
	"github.com/binghan60/EKERA-LunchBOT/pkg/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDrawControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	bindingRepo := repository.NewBindingRepository(testDB)
	restaurantRepo := repository.NewRestaurantRepository(testDB)
	configRepo := repository.NewGroupConfigRepository(testDB)
	historyRepo := repository.NewDrawHistoryRepository(testDB)

	drawService := service.NewDrawService(bindingRepo, restaurantRepo, configRepo, historyRepo, mailer.Noop())
	historyService := service.NewHistoryService(historyRepo)

	drawController := NewDrawController(drawService, nil)
	historyController := NewHistoryController(historyService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/v1/draw", drawController.Draw)
	router.GET("/api/v1/history", historyController.ListHistory)
	router.GET("/api/v1/history/statistics", historyController.Statistics)

	return router, testDB
}

func seedDrawable(t *testing.T, testDB *gorm.DB, groupID, office, name string) {
	restaurant := &model.Restaurant{GroupID: groupID, Name: name, IsActive: true}
	require.NoError(t, testDB.Create(restaurant).Error)
	require.NoError(t, testDB.Create(&model.OfficeBinding{
		GroupID:          groupID,
		Office:           office,
		RestaurantID:     restaurant.ID,
		IsActiveInOffice: true,
	}).Error)
}

func TestDrawController_Draw_Success(t *testing.T) {
	router, testDB := setupDrawControllerTest(t)

	require.NoError(t, testDB.Create(&model.GroupConfig{
		GroupID:       "G1",
		CurrentOffice: "taipei",
		OfficeOption:  model.StringArray{"taipei"},
	}).Error)
	seedDrawable(t, testDB, "G1", "taipei", "noodles")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/draw?group_id=G1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["drawn"])
	assert.Equal(t, "noodles", resp["restaurant_name"])
	assert.Equal(t, "taipei", resp["office"])
}

func TestDrawController_Draw_EmptyIsOK(t *testing.T) {
	router, testDB := setupDrawControllerTest(t)

	require.NoError(t, testDB.Create(&model.GroupConfig{
		GroupID:       "G1",
		CurrentOffice: "taipei",
		OfficeOption:  model.StringArray{"taipei"},
	}).Error)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/draw?group_id=G1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["drawn"])
}

func TestDrawController_Draw_NotConfigured(t *testing.T) {
	router, _ := setupDrawControllerTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/draw?group_id=G1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "GROUP_NOT_CONFIGURED", resp["error"])
}

func TestDrawController_Draw_MissingGroupID(t *testing.T) {
	router, _ := setupDrawControllerTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/draw", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryController_ListAndStatistics(t *testing.T) {
	router, testDB := setupDrawControllerTest(t)

	require.NoError(t, testDB.Create(&model.GroupConfig{
		GroupID:       "G1",
		CurrentOffice: "taipei",
		OfficeOption:  model.StringArray{"taipei"},
	}).Error)
	seedDrawable(t, testDB, "G1", "taipei", "noodles")

	// Two draws leave two ledger rows.
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/draw?group_id=G1", nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/history?group_id=G1", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var listResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.EqualValues(t, 2, listResp["count"])

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/history/statistics?group_id=G1", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var statsResp struct {
		Statistics []struct {
			RestaurantName string `json:"restaurant_name"`
			Count          int64  `json:"count"`
		} `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &statsResp))
	require.Len(t, statsResp.Statistics, 1)
	assert.Equal(t, "noodles", statsResp.Statistics[0].RestaurantName)
	assert.EqualValues(t, 2, statsResp.Statistics[0].Count)
}

func TestHistoryController_InvalidDate(t *testing.T) {
	router, _ := setupDrawControllerTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/history?group_id=G1&start_date=bad", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_INVALID_DATE", resp["error"])
}
