package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/binghan60/EKERA-LunchBOT/internal/errors"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/service"
	"github.com/binghan60/EKERA-LunchBOT/internal/middleware"
)

type GroupConfigController struct {
	configService service.GroupConfigService
}

func NewGroupConfigController(configService service.GroupConfigService) *GroupConfigController {
	return &GroupConfigController{configService: configService}
}

type GroupConfigCreateRequest struct {
	CurrentOffice     string   `json:"current_office" binding:"required"`
	OfficeOption      []string `json:"office_option" binding:"required"`
	LunchNotification bool     `json:"lunch_notification"`
}

type GroupConfigUpdateRequest struct {
	CurrentOffice     *string   `json:"current_office"`
	OfficeOption      *[]string `json:"office_option"`
	LunchNotification *bool     `json:"lunch_notification"`
}

type OfficeRequest struct {
	Name string `json:"name" binding:"required"`
}

type NotificationRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (ctrl *GroupConfigController) GetConfig(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID := c.Param("groupId")
	config, err := ctrl.configService.GetConfig(groupID)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotConfigured) {
			apperrors.NotFound(c, apperrors.GroupNotConfigured, "群組尚未設定")
			return
		}
		log.Error("Failed to get group configuration", err, map[string]interface{}{"group_id": groupID})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": config})
}

func (ctrl *GroupConfigController) CreateConfig(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID := c.Param("groupId")
	var req GroupConfigCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "輸入格式錯誤")
		return
	}

	config, err := ctrl.configService.CreateConfig(groupID, req.CurrentOffice, req.OfficeOption, req.LunchNotification)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConfigExists):
			apperrors.Conflict(c, apperrors.GroupConfigExists, "群組設定已存在")
		case errors.Is(err, service.ErrOfficeNotInOptions):
			apperrors.BadRequest(c, apperrors.OfficeInvalid, "目前辦公室必須在辦公室列表中")
		default:
			log.Error("Failed to create group configuration", err, map[string]interface{}{"group_id": groupID})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"config": config})
}

func (ctrl *GroupConfigController) UpdateConfig(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID := c.Param("groupId")
	var req GroupConfigUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "輸入格式錯誤")
		return
	}

	config, err := ctrl.configService.UpdateConfig(groupID, service.GroupConfigUpdateInput{
		CurrentOffice:     req.CurrentOffice,
		OfficeOption:      req.OfficeOption,
		LunchNotification: req.LunchNotification,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotConfigured):
			apperrors.NotFound(c, apperrors.GroupNotConfigured, "群組尚未設定")
		case errors.Is(err, service.ErrOfficeNotInOptions):
			apperrors.BadRequest(c, apperrors.OfficeInvalid, "目前辦公室必須在辦公室列表中")
		default:
			log.Error("Failed to update group configuration", err, map[string]interface{}{"group_id": groupID})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": config})
}

func (ctrl *GroupConfigController) AddOffice(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID := c.Param("groupId")
	var req OfficeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "輸入格式錯誤")
		return
	}

	config, added, err := ctrl.configService.AddOffice(groupID, req.Name)
	if err != nil {
		log.Error("Failed to add office", err, map[string]interface{}{"group_id": groupID})
		apperrors.InternalError(c, "")
		return
	}

	message := "辦公室已新增"
	if !added {
		message = "辦公室已存在，未變更"
	}
	c.JSON(http.StatusOK, gin.H{"config": config, "message": message})
}

func (ctrl *GroupConfigController) RemoveOffice(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID := c.Param("groupId")
	name := c.Param("name")

	config, err := ctrl.configService.RemoveOffice(groupID, name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotConfigured):
			apperrors.NotFound(c, apperrors.GroupNotConfigured, "群組尚未設定")
		case errors.Is(err, service.ErrOfficeInUse):
			apperrors.Conflict(c, apperrors.OfficeInUse, "無法移除使用中的辦公室，請先切換")
		case errors.Is(err, service.ErrInvalidOffice):
			apperrors.NotFound(c, apperrors.OfficeInvalid, "辦公室不存在")
		default:
			log.Error("Failed to remove office", err, map[string]interface{}{"group_id": groupID})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": config})
}

func (ctrl *GroupConfigController) SetCurrentOffice(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID := c.Param("groupId")
	var req OfficeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "輸入格式錯誤")
		return
	}

	config, err := ctrl.configService.SetCurrentOffice(groupID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotConfigured):
			apperrors.NotFound(c, apperrors.GroupNotConfigured, "群組尚未設定")
		case errors.Is(err, service.ErrInvalidOffice):
			apperrors.BadRequest(c, apperrors.OfficeInvalid, "辦公室不在群組的辦公室列表中")
		default:
			log.Error("Failed to switch office", err, map[string]interface{}{"group_id": groupID})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": config})
}

func (ctrl *GroupConfigController) SetNotification(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID := c.Param("groupId")
	var req NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "輸入格式錯誤")
		return
	}

	config, err := ctrl.configService.SetLunchNotification(groupID, *req.Enabled)
	if err != nil {
		log.Error("Failed to set lunch notification", err, map[string]interface{}{"group_id": groupID})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": config})
}
