package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/binghan60/EKERA-LunchBOT/internal/app/model"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/service"
	"github.com/binghan60/EKERA-LunchBOT/pkg/line"
	"github.com/binghan60/EKERA-LunchBOT/pkg/logger"
)

const helpText = `午餐小幫手指令：
/機器人 或 /h：顯示這份說明
/辦公室列表：列出所有辦公室與目前使用中的辦公室
/切換辦公室 名稱：切換目前使用的辦公室
/目前餐廳：列出目前辦公室的餐廳
/全部餐廳：列出各辦公室的所有餐廳
/新增餐廳 名稱 [辦公室]：新增餐廳並加入辦公室（預設目前辦公室）
/刪除餐廳 名稱 [辦公室]：把餐廳從辦公室移除
吃飯：隨機抽一家餐廳`

const degradedText = "小幫手暫時出了點狀況，請稍後再試一次。"

// Handler maps free-text chat commands onto the catalog, binding, config and
// draw services, replying through the chat client. Unrecognized text is
// ignored so normal conversation stays untouched.
type Handler struct {
	client      *line.Client
	restaurants service.RestaurantService
	bindings    service.BindingService
	configs     service.GroupConfigService
	draws       service.DrawService
	notify      service.NotifyService
}

func NewHandler(
	client *line.Client,
	restaurants service.RestaurantService,
	bindings service.BindingService,
	configs service.GroupConfigService,
	draws service.DrawService,
	notify service.NotifyService,
) *Handler {
	return &Handler{
		client:      client,
		restaurants: restaurants,
		bindings:    bindings,
		configs:     configs,
		draws:       draws,
		notify:      notify,
	}
}

// HandleEvent processes one webhook event. Only text messages are acted on.
func (h *Handler) HandleEvent(ctx context.Context, event line.Event) {
	if event.Type != "message" || event.Message.Type != "text" {
		return
	}

	groupID := event.Source.ConversationID()
	if groupID == "" {
		return
	}

	text := strings.TrimSpace(event.Message.Text)
	if text == "" {
		return
	}

	fields := strings.Fields(text)
	command, args := fields[0], fields[1:]

	var reply line.Message
	switch command {
	case "/機器人", "/h":
		// First contact bootstraps the group with a default office.
		if _, err := h.configs.EnsureConfig(groupID); err != nil {
			logger.Error("Failed to bootstrap group configuration", err, map[string]interface{}{"group_id": groupID})
		}
		reply = line.NewTextMessage(helpText)
	case "/辦公室列表":
		reply = h.listOffices(groupID)
	case "/切換辦公室":
		reply = h.switchOffice(groupID, args)
	case "/目前餐廳":
		reply = h.listCurrentRestaurants(groupID)
	case "/全部餐廳":
		reply = h.listAllRestaurants(groupID)
	case "/新增餐廳":
		reply = h.addRestaurant(groupID, args)
	case "/刪除餐廳":
		reply = h.removeRestaurant(groupID, args)
	case "吃飯":
		reply = h.drawLunch(groupID)
	default:
		return
	}

	if reply == nil {
		return
	}
	if err := h.client.Reply(ctx, event.ReplyToken, reply); err != nil {
		logger.Error("Failed to reply to chat command", err, map[string]interface{}{
			"group_id": groupID,
			"command":  command,
		})
	}
}

func (h *Handler) listOffices(groupID string) line.Message {
	config, err := h.configs.EnsureConfig(groupID)
	if err != nil {
		logger.Error("Failed to load group configuration", err, map[string]interface{}{"group_id": groupID})
		return line.NewTextMessage(degradedText)
	}

	var sb strings.Builder
	sb.WriteString("辦公室列表：\n")
	for _, office := range config.OfficeOption {
		if office == config.CurrentOffice {
			sb.WriteString(fmt.Sprintf("• %s（使用中）\n", office))
		} else {
			sb.WriteString(fmt.Sprintf("• %s\n", office))
		}
	}
	return line.NewTextMessage(strings.TrimRight(sb.String(), "\n"))
}

func (h *Handler) switchOffice(groupID string, args []string) line.Message {
	if len(args) == 0 {
		return line.NewTextMessage("請輸入要切換的辦公室，例如：/切換辦公室 台北")
	}

	name := args[0]
	config, err := h.configs.SetCurrentOffice(groupID, name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOffice):
			return line.NewTextMessage(fmt.Sprintf("沒有「%s」這個辦公室，先用 /辦公室列表 看看有哪些吧。", name))
		case errors.Is(err, service.ErrGroupNotConfigured):
			return line.NewTextMessage("這個群組還沒設定辦公室，先用 /新增餐廳 開始吧。")
		default:
			logger.Error("Failed to switch office", err, map[string]interface{}{"group_id": groupID})
			return line.NewTextMessage(degradedText)
		}
	}
	return line.NewTextMessage(fmt.Sprintf("已切換到「%s」辦公室。", config.CurrentOffice))
}

func (h *Handler) listCurrentRestaurants(groupID string) line.Message {
	config, err := h.configs.EnsureConfig(groupID)
	if err != nil {
		logger.Error("Failed to load group configuration", err, map[string]interface{}{"group_id": groupID})
		return line.NewTextMessage(degradedText)
	}

	bindings, err := h.bindings.ListBindingsForOffice(groupID, config.CurrentOffice)
	if err != nil {
		logger.Error("Failed to list office restaurants", err, map[string]interface{}{"group_id": groupID})
		return line.NewTextMessage(degradedText)
	}
	if len(bindings) == 0 {
		return line.NewTextMessage(fmt.Sprintf("「%s」辦公室還沒有餐廳，用 /新增餐廳 加一家吧！", config.CurrentOffice))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "「%s」的餐廳：\n", config.CurrentOffice)
	for _, b := range bindings {
		sb.WriteString("• " + bindingLine(b) + "\n")
	}
	return line.NewTextMessage(strings.TrimRight(sb.String(), "\n"))
}

func (h *Handler) listAllRestaurants(groupID string) line.Message {
	bindings, err := h.bindings.ListBindingsForGroup(groupID)
	if err != nil {
		logger.Error("Failed to list group restaurants", err, map[string]interface{}{"group_id": groupID})
		return line.NewTextMessage(degradedText)
	}
	if len(bindings) == 0 {
		return line.NewTextMessage("還沒有任何餐廳，用 /新增餐廳 加一家吧！")
	}

	var sb strings.Builder
	sb.WriteString("全部餐廳：\n")
	currentOffice := ""
	for _, b := range bindings {
		if b.Office != currentOffice {
			currentOffice = b.Office
			fmt.Fprintf(&sb, "【%s】\n", currentOffice)
		}
		sb.WriteString("• " + bindingLine(b) + "\n")
	}
	return line.NewTextMessage(strings.TrimRight(sb.String(), "\n"))
}

func bindingLine(b model.OfficeBinding) string {
	name := b.Restaurant.Name
	if name == "" {
		name = fmt.Sprintf("餐廳 #%d", b.RestaurantID)
	}
	if !b.IsActiveInOffice || !b.Restaurant.IsActive {
		return name + "（停用中）"
	}
	return name
}

func (h *Handler) addRestaurant(groupID string, args []string) line.Message {
	if len(args) == 0 {
		return line.NewTextMessage("請輸入餐廳名稱，例如：/新增餐廳 好吃滷肉飯 台北")
	}

	config, err := h.configs.EnsureConfig(groupID)
	if err != nil {
		logger.Error("Failed to load group configuration", err, map[string]interface{}{"group_id": groupID})
		return line.NewTextMessage(degradedText)
	}

	name := args[0]
	office := config.CurrentOffice
	if len(args) > 1 {
		office = args[1]
		if _, _, err := h.configs.AddOffice(groupID, office); err != nil {
			logger.Error("Failed to register office", err, map[string]interface{}{"group_id": groupID})
			return line.NewTextMessage(degradedText)
		}
	}

	restaurant, _, err := h.restaurants.FindOrCreateByName(groupID, name)
	if err != nil {
		logger.Error("Failed to create restaurant via command", err, map[string]interface{}{"group_id": groupID})
		return line.NewTextMessage(degradedText)
	}

	if _, err := h.bindings.Bind(groupID, office, restaurant.ID, ""); err != nil {
		if errors.Is(err, service.ErrBindingExists) {
			return line.NewTextMessage(fmt.Sprintf("「%s」已經在「%s」辦公室的名單裡了。", name, office))
		}
		logger.Error("Failed to bind restaurant via command", err, map[string]interface{}{"group_id": groupID})
		return line.NewTextMessage(degradedText)
	}

	return line.NewTextMessage(fmt.Sprintf("已把「%s」加入「%s」辦公室！", name, office))
}

func (h *Handler) removeRestaurant(groupID string, args []string) line.Message {
	if len(args) == 0 {
		return line.NewTextMessage("請輸入餐廳名稱，例如：/刪除餐廳 好吃滷肉飯 台北")
	}

	config, err := h.configs.EnsureConfig(groupID)
	if err != nil {
		logger.Error("Failed to load group configuration", err, map[string]interface{}{"group_id": groupID})
		return line.NewTextMessage(degradedText)
	}

	name := args[0]
	office := config.CurrentOffice
	if len(args) > 1 {
		office = args[1]
	}

	if err := h.bindings.UnbindByName(groupID, office, name); err != nil {
		switch {
		case errors.Is(err, service.ErrRestaurantNotFound), errors.Is(err, service.ErrBindingNotFound):
			return line.NewTextMessage(fmt.Sprintf("「%s」辦公室裡找不到「%s」。", office, name))
		default:
			logger.Error("Failed to unbind restaurant via command", err, map[string]interface{}{"group_id": groupID})
			return line.NewTextMessage(degradedText)
		}
	}
	return line.NewTextMessage(fmt.Sprintf("已把「%s」從「%s」辦公室移除。", name, office))
}

func (h *Handler) drawLunch(groupID string) line.Message {
	if _, err := h.configs.EnsureConfig(groupID); err != nil {
		logger.Error("Failed to load group configuration", err, map[string]interface{}{"group_id": groupID})
		return line.NewTextMessage(degradedText)
	}

	restaurant, office, err := h.draws.DrawForGroup(groupID)
	if err != nil {
		logger.Error("Draw failed", err, map[string]interface{}{"group_id": groupID})
		return line.NewTextMessage(degradedText)
	}
	return h.notify.BuildDrawMessage(restaurant, office)
}
