package repository

import (
	"github.com/binghan60/EKERA-LunchBOT/internal/app/model"
	"github.com/binghan60/EKERA-LunchBOT/pkg/logger"
	"gorm.io/gorm"
)

type RestaurantFilter struct {
	GroupID string
	Keyword string
}

type RestaurantRepository interface {
	Create(restaurant *model.Restaurant) error
	Update(restaurant *model.Restaurant) error
	Delete(id uint) error
	FindByID(id uint, groupID string) (*model.Restaurant, error)
	FindByName(groupID, name string) (*model.Restaurant, error)
	FindAll(filter RestaurantFilter) ([]model.Restaurant, error)
	FindActiveByIDs(ids []uint) ([]model.Restaurant, error)
}

type restaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) Create(restaurant *model.Restaurant) error {
	logger.Debug("Creating restaurant in database", map[string]interface{}{
		"group_id": restaurant.GroupID,
		"name":     restaurant.Name,
	})

	if err := r.db.Create(restaurant).Error; err != nil {
		logger.Error("Failed to create restaurant in database", err, map[string]interface{}{
			"group_id": restaurant.GroupID,
			"name":     restaurant.Name,
		})
		return err
	}

	logger.Debug("Restaurant created in database", map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"name":          restaurant.Name,
	})
	return nil
}

func (r *restaurantRepository) Update(restaurant *model.Restaurant) error {
	logger.Debug("Updating restaurant in database", map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"name":          restaurant.Name,
	})

	if err := r.db.Save(restaurant).Error; err != nil {
		logger.Error("Failed to update restaurant in database", err, map[string]interface{}{
			"restaurant_id": restaurant.ID,
			"name":          restaurant.Name,
		})
		return err
	}
	return nil
}

func (r *restaurantRepository) Delete(id uint) error {
	logger.Debug("Deleting restaurant from database", map[string]interface{}{
		"restaurant_id": id,
	})

	if err := r.db.Delete(&model.Restaurant{}, id).Error; err != nil {
		logger.Error("Failed to delete restaurant from database", err, map[string]interface{}{
			"restaurant_id": id,
		})
		return err
	}
	return nil
}

// FindByID scopes the lookup to the owning group so one tenant can never read
// or mutate another tenant's record through a guessed id.
func (r *restaurantRepository) FindByID(id uint, groupID string) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	err := r.db.Where("id = ? AND group_id = ?", id, groupID).First(&restaurant).Error
	if err != nil {
		logger.Error("Failed to find restaurant by ID in database", err, map[string]interface{}{
			"restaurant_id": id,
			"group_id":      groupID,
		})
		return nil, err
	}
	return &restaurant, nil
}

func (r *restaurantRepository) FindByName(groupID, name string) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	err := r.db.Where("group_id = ? AND name = ?", groupID, name).First(&restaurant).Error
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *restaurantRepository) FindAll(filter RestaurantFilter) ([]model.Restaurant, error) {
	logger.Debug("Finding restaurants", map[string]interface{}{
		"group_id": filter.GroupID,
		"keyword":  filter.Keyword,
	})

	query := r.db.Model(&model.Restaurant{}).Where("group_id = ?", filter.GroupID)
	if filter.Keyword != "" {
		query = query.Where("name LIKE ?", "%"+filter.Keyword+"%")
	}

	var restaurants []model.Restaurant
	if err := query.Order("name ASC").Find(&restaurants).Error; err != nil {
		logger.Error("Failed to find restaurants", err, map[string]interface{}{
			"group_id": filter.GroupID,
		})
		return nil, err
	}

	logger.Debug("Restaurants found", map[string]interface{}{
		"count": len(restaurants),
	})
	return restaurants, nil
}

// FindActiveByIDs returns only catalog-active restaurants among ids. This is
// the second eligibility filter of a draw: a deactivated restaurant stays out
// even when a stale binding still marks it active in an office.
func (r *restaurantRepository) FindActiveByIDs(ids []uint) ([]model.Restaurant, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var restaurants []model.Restaurant
	if err := r.db.Where("id IN ? AND is_active = ?", ids, true).Order("id").Find(&restaurants).Error; err != nil {
		logger.Error("Failed to find active restaurants by IDs", err, map[string]interface{}{
			"ids_count": len(ids),
		})
		return nil, err
	}
	return restaurants, nil
}
