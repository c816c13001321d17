package controller

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/binghan60/EKERA-LunchBOT/internal/bot"
	"github.com/binghan60/EKERA-LunchBOT/internal/middleware"
	"github.com/binghan60/EKERA-LunchBOT/pkg/line"
	"github.com/binghan60/EKERA-LunchBOT/pkg/redis"
)

// maxWebhookBody bounds the webhook request body size.
const maxWebhookBody = 1 << 20

// WebhookController receives LINE webhook deliveries, verifies their
// signature and feeds each event to the bot handler. LINE expects a fast 200
// regardless of per-event outcomes.
type WebhookController struct {
	channelSecret string
	handler       *bot.Handler
}

func NewWebhookController(channelSecret string, handler *bot.Handler) *WebhookController {
	return &WebhookController{
		channelSecret: channelSecret,
		handler:       handler,
	}
}

func (ctrl *WebhookController) HandleWebhook(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		log.Error("Failed to read webhook body", err, nil)
		c.Status(http.StatusBadRequest)
		return
	}

	signature := c.GetHeader("X-Line-Signature")
	if !line.ValidateSignature(ctrl.channelSecret, body, signature) {
		log.Warn("Webhook signature mismatch", map[string]interface{}{
			"ip": c.ClientIP(),
		})
		c.Status(http.StatusUnauthorized)
		return
	}

	req, err := line.ParseWebhookRequest(body)
	if err != nil {
		log.Error("Failed to parse webhook body", err, nil)
		c.Status(http.StatusBadRequest)
		return
	}

	for _, event := range req.Events {
		// Redeliveries can duplicate events already processed; the event id
		// check is best-effort and only active when Redis is configured.
		if event.DeliveryContext.IsRedelivery {
			first, err := redis.MarkEventHandled(c.Request.Context(), event.WebhookEventID)
			if err == nil && !first {
				continue
			}
		} else {
			redis.MarkEventHandled(c.Request.Context(), event.WebhookEventID)
		}

		ctrl.handler.HandleEvent(c.Request.Context(), event)
	}

	c.Status(http.StatusOK)
}
