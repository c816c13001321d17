package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
)

// Webhook source types
const (
	SourceTypeUser  = "user"
	SourceTypeGroup = "group"
	SourceTypeRoom  = "room"
)

// WebhookRequest is the body LINE posts to the webhook endpoint.
type WebhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is a single webhook event.
type Event struct {
	Type            string          `json:"type"`
	WebhookEventID  string          `json:"webhookEventId"`
	DeliveryContext DeliveryContext `json:"deliveryContext"`
	ReplyToken      string          `json:"replyToken"`
	Source          EventSource     `json:"source"`
	Message         EventMessage    `json:"message"`
	Timestamp       int64           `json:"timestamp"`
}

// DeliveryContext marks redelivered events.
type DeliveryContext struct {
	IsRedelivery bool `json:"isRedelivery"`
}

// EventSource identifies the conversation an event came from.
type EventSource struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	GroupID string `json:"groupId"`
	RoomID  string `json:"roomId"`
}

// ConversationID returns the stable id of the conversation: the group or room
// id when present, the user id for direct chats. This is the tenant key every
// record is scoped by.
func (s EventSource) ConversationID() string {
	switch s.Type {
	case SourceTypeGroup:
		return s.GroupID
	case SourceTypeRoom:
		return s.RoomID
	default:
		return s.UserID
	}
}

// EventMessage is the message part of a message event.
type EventMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// ParseWebhookRequest decodes a webhook body.
func ParseWebhookRequest(body []byte) (*WebhookRequest, error) {
	var req WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ValidateSignature checks the X-Line-Signature header against the body:
// base64(HMAC-SHA256(channel secret, body)).
func ValidateSignature(channelSecret string, body []byte, signature string) bool {
	decoded, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	return hmac.Equal(decoded, mac.Sum(nil))
}
