package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/binghan60/EKERA-LunchBOT/internal/errors"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/service"
	"github.com/binghan60/EKERA-LunchBOT/internal/middleware"
)

type HistoryController struct {
	historyService service.HistoryService
}

func NewHistoryController(historyService service.HistoryService) *HistoryController {
	return &HistoryController{historyService: historyService}
}

func (ctrl *HistoryController) ListHistory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID, ok := groupIDFromQuery(c)
	if !ok {
		return
	}

	records, err := ctrl.historyService.QueryHistory(groupID, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidDate, "日期格式錯誤，請使用 YYYY-MM-DD")
			return
		}
		log.Error("Failed to query draw history", err, map[string]interface{}{"group_id": groupID})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"history": records,
		"count":   len(records),
	})
}

func (ctrl *HistoryController) Statistics(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID, ok := groupIDFromQuery(c)
	if !ok {
		return
	}

	stats, err := ctrl.historyService.QueryStatistics(groupID, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidDate, "日期格式錯誤，請使用 YYYY-MM-DD")
			return
		}
		log.Error("Failed to query draw statistics", err, map[string]interface{}{"group_id": groupID})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"statistics": stats})
}

// ExportStatistics streams the draw statistics as an XLSX download.
func (ctrl *HistoryController) ExportStatistics(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID, ok := groupIDFromQuery(c)
	if !ok {
		return
	}

	data, err := ctrl.historyService.ExportStatistics(groupID, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidDate, "日期格式錯誤，請使用 YYYY-MM-DD")
			return
		}
		log.Error("Failed to export draw statistics", err, map[string]interface{}{"group_id": groupID})
		apperrors.InternalError(c, "")
		return
	}

	filename := fmt.Sprintf("draw-statistics-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
