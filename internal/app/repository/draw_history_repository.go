package repository

import (
	"time"

	"github.com/binghan60/EKERA-LunchBOT/internal/app/model"
	"github.com/binghan60/EKERA-LunchBOT/pkg/logger"
	"gorm.io/gorm"
)

// HistoryFilter bounds a ledger query. Nil bounds are unbounded on that side.
type HistoryFilter struct {
	GroupID string
	Start   *time.Time
	End     *time.Time
}

// DrawCount is one row of the per-restaurant draw statistics.
type DrawCount struct {
	RestaurantName string `json:"restaurant_name"`
	Count          int64  `json:"count"`
}

type DrawHistoryRepository interface {
	Create(record *model.DrawRecord) error
	FindByFilter(filter HistoryFilter) ([]model.DrawRecord, error)
	CountByRestaurant(filter HistoryFilter) ([]DrawCount, error)
}

type drawHistoryRepository struct {
	db *gorm.DB
}

func NewDrawHistoryRepository(db *gorm.DB) DrawHistoryRepository {
	return &drawHistoryRepository{db: db}
}

func (r *drawHistoryRepository) Create(record *model.DrawRecord) error {
	logger.Debug("Appending draw record", map[string]interface{}{
		"group_id":      record.GroupID,
		"restaurant_id": record.RestaurantID,
	})

	if err := r.db.Create(record).Error; err != nil {
		logger.Error("Failed to append draw record", err, map[string]interface{}{
			"group_id":      record.GroupID,
			"restaurant_id": record.RestaurantID,
		})
		return err
	}
	return nil
}

func (r *drawHistoryRepository) rangeQuery(filter HistoryFilter) *gorm.DB {
	query := r.db.Model(&model.DrawRecord{}).Where("draw_records.group_id = ?", filter.GroupID)
	if filter.Start != nil {
		query = query.Where("draw_records.drawn_at >= ?", *filter.Start)
	}
	if filter.End != nil {
		query = query.Where("draw_records.drawn_at <= ?", *filter.End)
	}
	return query
}

func (r *drawHistoryRepository) FindByFilter(filter HistoryFilter) ([]model.DrawRecord, error) {
	logger.Debug("Querying draw history", map[string]interface{}{
		"group_id": filter.GroupID,
		"start":    filter.Start,
		"end":      filter.End,
	})

	var records []model.DrawRecord
	err := r.rangeQuery(filter).
		Preload("Restaurant").
		Order("drawn_at DESC").
		Find(&records).Error
	if err != nil {
		logger.Error("Failed to query draw history", err, map[string]interface{}{
			"group_id": filter.GroupID,
		})
		return nil, err
	}

	logger.Debug("Draw history queried", map[string]interface{}{
		"count": len(records),
	})
	return records, nil
}

// CountByRestaurant groups records in range by the denormalized restaurant
// name and counts them, most-drawn first. Restaurants with zero draws in
// range are absent. Grouping by name rather than id keeps draws of deleted
// restaurants in the statistics.
func (r *drawHistoryRepository) CountByRestaurant(filter HistoryFilter) ([]DrawCount, error) {
	logger.Debug("Counting draws by restaurant", map[string]interface{}{
		"group_id": filter.GroupID,
	})

	var counts []DrawCount
	err := r.rangeQuery(filter).
		Select("restaurant_name, COUNT(*) AS count").
		Group("restaurant_name").
		Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		logger.Error("Failed to count draws by restaurant", err, map[string]interface{}{
			"group_id": filter.GroupID,
		})
		return nil, err
	}
	return counts, nil
}
