package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestValidateSignature(t *testing.T) {
	body := []byte(`{"destination":"x","events":[]}`)
	secret := "channel-secret"

	assert.True(t, ValidateSignature(secret, body, sign(secret, body)))
	assert.False(t, ValidateSignature(secret, body, sign("other-secret", body)))
	assert.False(t, ValidateSignature(secret, []byte(`tampered`), sign(secret, body)))
	assert.False(t, ValidateSignature(secret, body, "not base64!!"))
	assert.False(t, ValidateSignature(secret, body, ""))
}

func TestParseWebhookRequest(t *testing.T) {
	body := []byte(`{
		"destination": "bot-id",
		"events": [{
			"type": "message",
			"webhookEventId": "evt-1",
			"deliveryContext": {"isRedelivery": true},
			"replyToken": "reply-token",
			"source": {"type": "group", "groupId": "G1", "userId": "U1"},
			"message": {"id": "m1", "type": "text", "text": "吃飯"}
		}]
	}`)

	req, err := ParseWebhookRequest(body)
	require.NoError(t, err)
	require.Len(t, req.Events, 1)

	event := req.Events[0]
	assert.Equal(t, "message", event.Type)
	assert.True(t, event.DeliveryContext.IsRedelivery)
	assert.Equal(t, "吃飯", event.Message.Text)
	assert.Equal(t, "G1", event.Source.ConversationID())

	_, err = ParseWebhookRequest([]byte(`{not json`))
	assert.Error(t, err)
}

func TestEventSource_ConversationID(t *testing.T) {
	assert.Equal(t, "G1", EventSource{Type: SourceTypeGroup, GroupID: "G1", UserID: "U1"}.ConversationID())
	assert.Equal(t, "R1", EventSource{Type: SourceTypeRoom, RoomID: "R1", UserID: "U1"}.ConversationID())
	assert.Equal(t, "U1", EventSource{Type: SourceTypeUser, UserID: "U1"}.ConversationID())
}
