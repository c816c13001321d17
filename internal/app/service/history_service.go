package service

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/binghan60/EKERA-LunchBOT/internal/app/model"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/repository"
	"github.com/binghan60/EKERA-LunchBOT/pkg/logger"
	"github.com/xuri/excelize/v2"
)

var ErrInvalidDateRange = errors.New("invalid date range")

// dateLayout is the accepted wire format for range bounds.
const dateLayout = "2006-01-02"

type HistoryService interface {
	QueryHistory(groupID, startDate, endDate string) ([]model.DrawRecord, error)
	QueryStatistics(groupID, startDate, endDate string) ([]repository.DrawCount, error)
	ExportStatistics(groupID, startDate, endDate string) ([]byte, error)
}

type historyService struct {
	historyRepo repository.DrawHistoryRepository
}

func NewHistoryService(historyRepo repository.DrawHistoryRepository) HistoryService {
	return &historyService{historyRepo: historyRepo}
}

// parseRange turns "2006-01-02" bounds into a filter. Dates cover the whole
// day: the start bound begins at 00:00:00 and the end bound runs through
// 23:59:59.999. Either side may be empty for an unbounded range.
func parseRange(groupID, startDate, endDate string) (repository.HistoryFilter, error) {
	filter := repository.HistoryFilter{GroupID: groupID}

	if startDate != "" {
		t, err := time.ParseInLocation(dateLayout, startDate, time.Local)
		if err != nil {
			return filter, ErrInvalidDateRange
		}
		filter.Start = &t
	}
	if endDate != "" {
		t, err := time.ParseInLocation(dateLayout, endDate, time.Local)
		if err != nil {
			return filter, ErrInvalidDateRange
		}
		end := t.Add(24*time.Hour - time.Millisecond)
		filter.End = &end
	}
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		return filter, ErrInvalidDateRange
	}
	return filter, nil
}

func (s *historyService) QueryHistory(groupID, startDate, endDate string) ([]model.DrawRecord, error) {
	filter, err := parseRange(groupID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return s.historyRepo.FindByFilter(filter)
}

func (s *historyService) QueryStatistics(groupID, startDate, endDate string) ([]repository.DrawCount, error) {
	filter, err := parseRange(groupID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return s.historyRepo.CountByRestaurant(filter)
}

// ExportStatistics renders the per-restaurant draw counts as an XLSX
// workbook and returns its bytes.
func (s *historyService) ExportStatistics(groupID, startDate, endDate string) ([]byte, error) {
	counts, err := s.QueryStatistics(groupID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", "餐廳")
	f.SetCellValue(sheet, "B1", "抽中次數")
	for i, row := range counts {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), row.RestaurantName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), row.Count)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		logger.Error("Failed to render statistics workbook", err, map[string]interface{}{
			"group_id": groupID,
		})
		return nil, err
	}

	logger.Info("Statistics exported", map[string]interface{}{
		"group_id": groupID,
		"rows":     len(counts),
	})
	return buf.Bytes(), nil
}
