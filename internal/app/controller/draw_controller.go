package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/binghan60/EKERA-LunchBOT/internal/errors"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/service"
	"github.com/binghan60/EKERA-LunchBOT/internal/middleware"
)

type DrawController struct {
	drawService   service.DrawService
	notifyService service.NotifyService
}

func NewDrawController(drawService service.DrawService, notifyService service.NotifyService) *DrawController {
	return &DrawController{
		drawService:   drawService,
		notifyService: notifyService,
	}
}

type DrawNotifyRequest struct {
	GroupID string `json:"group_id" binding:"required"`
}

// Draw picks a restaurant from the group's current office. An empty draw is
// a 200 with drawn=false, not an error.
func (ctrl *DrawController) Draw(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID, ok := groupIDFromQuery(c)
	if !ok {
		return
	}

	restaurant, office, err := ctrl.drawService.DrawForGroup(groupID)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotConfigured) {
			apperrors.NotFound(c, apperrors.GroupNotConfigured, "群組尚未設定")
			return
		}
		log.Error("Draw failed", err, map[string]interface{}{"group_id": groupID})
		apperrors.InternalError(c, "")
		return
	}

	if restaurant == nil {
		c.JSON(http.StatusOK, gin.H{
			"drawn":   false,
			"office":  office,
			"code":    apperrors.DrawNothingEligible,
			"message": "目前沒有可以抽的餐廳",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"drawn":           true,
		"office":          office,
		"restaurant":      restaurant,
		"restaurant_name": restaurant.Name,
	})
}

// DrawAndNotify draws and pushes the result card to the group. A delivery
// failure is reported alongside the confirmed draw rather than masking it:
// the draw and its ledger row are already committed by then.
func (ctrl *DrawController) DrawAndNotify(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req DrawNotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "缺少 group_id")
		return
	}

	restaurant, office, err := ctrl.drawService.DrawForGroup(req.GroupID)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotConfigured) {
			apperrors.NotFound(c, apperrors.GroupNotConfigured, "群組尚未設定")
			return
		}
		log.Error("Draw failed", err, map[string]interface{}{"group_id": req.GroupID})
		apperrors.InternalError(c, "")
		return
	}

	response := gin.H{
		"drawn":  restaurant != nil,
		"office": office,
	}
	if restaurant != nil {
		response["restaurant_name"] = restaurant.Name
	} else {
		response["code"] = apperrors.DrawNothingEligible
	}

	if err := ctrl.notifyService.PushDrawResult(c.Request.Context(), req.GroupID, restaurant, office); err != nil {
		log.Error("Draw result push failed", err, map[string]interface{}{"group_id": req.GroupID})
		response["notified"] = false
		response["notify_error"] = apperrors.ChatDeliveryFailed
		c.JSON(http.StatusBadGateway, response)
		return
	}

	response["notified"] = true
	c.JSON(http.StatusOK, response)
}
