package controller

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/repository"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/service"
	"github.com/binghan60/EKERA-LunchBOT/internal/bot"
	"github.com/binghan60/EKERA-LunchBOT/internal/db"
	"github.com/binghan60/EKERA-LunchBOT/internal/storage"
	"github.com/binghan60/EKERA-LunchBOT/pkg/line"
	"github.com/binghan60/EKERA-LunchBOT/pkg/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChannelSecret = "test-channel-secret"

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testChannelSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func setupWebhookControllerTest(t *testing.T) (*gin.Engine, *httptest.Server) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	// Fake Messaging API so replies have somewhere to go.
	lineAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(lineAPI.Close)

	client, err := line.NewClient(line.Config{
		ChannelAccessToken: "test-token",
		ChannelSecret:      testChannelSecret,
		BaseURL:            lineAPI.URL,
	})
	require.NoError(t, err)

	restaurantRepo := repository.NewRestaurantRepository(testDB)
	bindingRepo := repository.NewBindingRepository(testDB)
	configRepo := repository.NewGroupConfigRepository(testDB)
	historyRepo := repository.NewDrawHistoryRepository(testDB)

	handler := bot.NewHandler(
		client,
		service.NewRestaurantService(restaurantRepo, bindingRepo, storage.NewNoopImageStore()),
		service.NewBindingService(bindingRepo, restaurantRepo, configRepo),
		service.NewGroupConfigService(configRepo, bindingRepo),
		service.NewDrawService(bindingRepo, restaurantRepo, configRepo, historyRepo, mailer.Noop()),
		service.NewNotifyService(client),
	)

	controller := NewWebhookController(testChannelSecret, handler)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/webhook", controller.HandleWebhook)
	return router, lineAPI
}

func webhookBody() []byte {
	return []byte(`{
		"destination": "bot-id",
		"events": [{
			"type": "message",
			"webhookEventId": "evt-1",
			"deliveryContext": {"isRedelivery": false},
			"replyToken": "reply-token",
			"source": {"type": "group", "groupId": "G1"},
			"message": {"id": "m1", "type": "text", "text": "/h"}
		}]
	}`)
}

func TestWebhookController_ValidSignature(t *testing.T) {
	router, _ := setupWebhookControllerTest(t)

	body := webhookBody()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("X-Line-Signature", signBody(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookController_BadSignature(t *testing.T) {
	router, _ := setupWebhookControllerTest(t)

	body := webhookBody()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("X-Line-Signature", "AAAA")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookController_MissingSignature(t *testing.T) {
	router, _ := setupWebhookControllerTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(webhookBody()))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookController_MalformedBody(t *testing.T) {
	router, _ := setupWebhookControllerTest(t)

	body := []byte(`{not json`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("X-Line-Signature", signBody(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
