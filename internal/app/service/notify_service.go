package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"

	"github.com/binghan60/EKERA-LunchBOT/internal/app/model"
	"github.com/binghan60/EKERA-LunchBOT/pkg/line"
	"github.com/binghan60/EKERA-LunchBOT/pkg/logger"
)

// fallbackHeroImage is shown when a restaurant has no menu images yet.
const fallbackHeroImage = "https://placehold.co/1024x683/f5f5f5/aaaaaa.png?text=Lunch"

// emptyDrawText is the user-facing message for a draw with nothing eligible.
const emptyDrawText = "目前沒有可以抽的餐廳，先用「/新增餐廳 餐廳名稱 辦公室」加入吧！"

// cardTheme is one color scheme for the draw result card. Picked at random
// per message.
type cardTheme struct {
	Card   string
	Accent string
	Button string
}

var cardThemes = []cardTheme{
	{Card: "#FFF8F0", Accent: "#E8590C", Button: "#E8590C"},
	{Card: "#F0F7FF", Accent: "#1C7ED6", Button: "#1C7ED6"},
	{Card: "#F4FCE3", Accent: "#66A80F", Button: "#66A80F"},
	{Card: "#FFF0F6", Accent: "#D6336C", Button: "#D6336C"},
	{Card: "#F3F0FF", Accent: "#7048E8", Button: "#7048E8"},
}

// NotifyService turns a draw outcome into a chat message and delivers it.
// Delivery failures are reported to the caller but must never undo the draw
// they present.
type NotifyService interface {
	BuildDrawMessage(restaurant *model.Restaurant, office string) line.Message
	PushDrawResult(ctx context.Context, channelID string, restaurant *model.Restaurant, office string) error
	ReplyDrawResult(ctx context.Context, replyToken string, restaurant *model.Restaurant, office string) error
}

type notifyService struct {
	client *line.Client
}

func NewNotifyService(client *line.Client) NotifyService {
	return &notifyService{client: client}
}

// BuildDrawMessage renders the result card, or the distinct empty-draw text
// when restaurant is nil.
func (s *notifyService) BuildDrawMessage(restaurant *model.Restaurant, office string) line.Message {
	if restaurant == nil {
		return line.NewTextMessage(emptyDrawText)
	}
	return buildDrawCard(restaurant, office, cardThemes[rand.IntN(len(cardThemes))])
}

func (s *notifyService) PushDrawResult(ctx context.Context, channelID string, restaurant *model.Restaurant, office string) error {
	msg := s.BuildDrawMessage(restaurant, office)
	if err := s.client.Push(ctx, channelID, msg); err != nil {
		logger.Error("Failed to push draw result", err, map[string]interface{}{
			"channel_id": channelID,
		})
		return err
	}
	return nil
}

func (s *notifyService) ReplyDrawResult(ctx context.Context, replyToken string, restaurant *model.Restaurant, office string) error {
	msg := s.BuildDrawMessage(restaurant, office)
	if err := s.client.Reply(ctx, replyToken, msg); err != nil {
		logger.Error("Failed to reply draw result", err, nil)
		return err
	}
	return nil
}

// buildDrawCard assembles the flex bubble for a drawn restaurant: hero image,
// office badge, name, contact rows, and map/phone action buttons.
func buildDrawCard(restaurant *model.Restaurant, office string, theme cardTheme) line.Message {
	hero := fallbackHeroImage
	if len(restaurant.Menu) > 0 {
		hero = restaurant.Menu[0]
	}

	body := []interface{}{
		map[string]interface{}{
			"type":   "text",
			"text":   fmt.Sprintf("今天吃這家（%s）", office),
			"size":   "xs",
			"color":  theme.Accent,
			"weight": "bold",
		},
		map[string]interface{}{
			"type":   "text",
			"text":   restaurant.Name,
			"size":   "xl",
			"weight": "bold",
			"wrap":   true,
		},
	}
	if restaurant.Address != "" {
		body = append(body, detailRow("地址", restaurant.Address))
	}
	if restaurant.Phone != "" {
		body = append(body, detailRow("電話", restaurant.Phone))
	}

	footer := []interface{}{
		map[string]interface{}{
			"type":  "button",
			"style": "primary",
			"color": theme.Button,
			"action": map[string]interface{}{
				"type":  "uri",
				"label": "看地圖",
				"uri":   mapSearchURL(restaurant),
			},
		},
	}
	if restaurant.Phone != "" {
		footer = append(footer, map[string]interface{}{
			"type":  "button",
			"style": "secondary",
			"action": map[string]interface{}{
				"type":  "uri",
				"label": "打電話",
				"uri":   "tel:" + restaurant.Phone,
			},
		})
	}

	bubble := line.FlexObject{
		"type": "bubble",
		"hero": map[string]interface{}{
			"type":        "image",
			"url":         hero,
			"size":        "full",
			"aspectRatio": "3:2",
			"aspectMode":  "cover",
		},
		"body": map[string]interface{}{
			"type":            "box",
			"layout":          "vertical",
			"spacing":         "sm",
			"backgroundColor": theme.Card,
			"contents":        body,
		},
		"footer": map[string]interface{}{
			"type":     "box",
			"layout":   "vertical",
			"spacing":  "sm",
			"contents": footer,
		},
	}

	return line.NewFlexMessage(fmt.Sprintf("今天吃：%s", restaurant.Name), bubble)
}

func detailRow(label, value string) map[string]interface{} {
	return map[string]interface{}{
		"type":    "box",
		"layout":  "baseline",
		"spacing": "sm",
		"contents": []interface{}{
			map[string]interface{}{
				"type":  "text",
				"text":  label,
				"size":  "sm",
				"color": "#AAAAAA",
				"flex":  1,
			},
			map[string]interface{}{
				"type":  "text",
				"text":  value,
				"size":  "sm",
				"wrap":  true,
				"flex":  4,
				"color": "#555555",
			},
		},
	}
}

// mapSearchURL builds a Google Maps search link from the address when
// present, otherwise from the restaurant name.
func mapSearchURL(restaurant *model.Restaurant) string {
	query := restaurant.Address
	if query == "" {
		query = restaurant.Name
	}
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(query)
}
