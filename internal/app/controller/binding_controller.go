package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/binghan60/EKERA-LunchBOT/internal/errors"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/service"
	"github.com/binghan60/EKERA-LunchBOT/internal/middleware"
)

type BindingController struct {
	bindingService service.BindingService
}

func NewBindingController(bindingService service.BindingService) *BindingController {
	return &BindingController{bindingService: bindingService}
}

type BindRequest struct {
	GroupID      string `json:"group_id" binding:"required"`
	Office       string `json:"office" binding:"required"`
	RestaurantID uint   `json:"restaurant_id" binding:"required"`
	Note         string `json:"note"`
}

type BindingUpdateRequest struct {
	Office           *string `json:"office"`
	Note             *string `json:"note"`
	IsActiveInOffice *bool   `json:"is_active_in_office"`
}

// ListBindings returns the group's bindings, narrowed to one office when the
// office query parameter is present.
func (ctrl *BindingController) ListBindings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID, ok := groupIDFromQuery(c)
	if !ok {
		return
	}

	var err error
	var bindings interface{}
	if office := c.Query("office"); office != "" {
		bindings, err = ctrl.bindingService.ListBindingsForOffice(groupID, office)
	} else {
		bindings, err = ctrl.bindingService.ListBindingsForGroup(groupID)
	}
	if err != nil {
		log.Error("Failed to list bindings", err, map[string]interface{}{"group_id": groupID})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"bindings": bindings})
}

// ListOffices returns the distinct office names that currently have at least
// one binding. Not the configured office options: the two lists can diverge.
func (ctrl *BindingController) ListOffices(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID, ok := groupIDFromQuery(c)
	if !ok {
		return
	}

	offices, err := ctrl.bindingService.ListDistinctOffices(groupID)
	if err != nil {
		log.Error("Failed to list bound offices", err, map[string]interface{}{"group_id": groupID})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"offices": offices})
}

func (ctrl *BindingController) CreateBinding(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req BindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "輸入格式錯誤")
		return
	}

	binding, err := ctrl.bindingService.Bind(req.GroupID, req.Office, req.RestaurantID, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRestaurantNotFound):
			apperrors.NotFound(c, apperrors.RestaurantNotFound, "餐廳不存在")
		case errors.Is(err, service.ErrBindingExists):
			apperrors.Conflict(c, apperrors.BindingExists, "餐廳已綁定到這個辦公室")
		default:
			log.Error("Failed to create binding", err, map[string]interface{}{"group_id": req.GroupID})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"binding": binding})
}

func (ctrl *BindingController) UpdateBinding(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := idFromParam(c)
	if !ok {
		return
	}

	var req BindingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "輸入格式錯誤")
		return
	}

	binding, err := ctrl.bindingService.UpdateBinding(id, service.BindingUpdateInput{
		Office:           req.Office,
		Note:             req.Note,
		IsActiveInOffice: req.IsActiveInOffice,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBindingNotFound):
			apperrors.NotFound(c, apperrors.BindingNotFound, "綁定不存在")
		case errors.Is(err, service.ErrInvalidOffice):
			apperrors.BadRequest(c, apperrors.OfficeInvalid, "辦公室不在群組的辦公室列表中")
		case errors.Is(err, service.ErrGroupNotConfigured):
			apperrors.NotFound(c, apperrors.GroupNotConfigured, "群組尚未設定")
		case errors.Is(err, service.ErrBindingExists):
			apperrors.Conflict(c, apperrors.BindingExists, "餐廳已綁定到這個辦公室")
		default:
			log.Error("Failed to update binding", err, map[string]interface{}{"binding_id": id})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"binding": binding})
}

func (ctrl *BindingController) ToggleBinding(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := idFromParam(c)
	if !ok {
		return
	}

	binding, err := ctrl.bindingService.ToggleBindingActive(id)
	if err != nil {
		if errors.Is(err, service.ErrBindingNotFound) {
			apperrors.NotFound(c, apperrors.BindingNotFound, "綁定不存在")
			return
		}
		log.Error("Failed to toggle binding", err, map[string]interface{}{"binding_id": id})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"binding": binding})
}

func (ctrl *BindingController) DeleteBinding(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := idFromParam(c)
	if !ok {
		return
	}

	if err := ctrl.bindingService.Unbind(id); err != nil {
		if errors.Is(err, service.ErrBindingNotFound) {
			apperrors.NotFound(c, apperrors.BindingNotFound, "綁定不存在")
			return
		}
		log.Error("Failed to delete binding", err, map[string]interface{}{"binding_id": id})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "綁定已刪除"})
}
