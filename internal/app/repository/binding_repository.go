package repository

import (
	"github.com/binghan60/EKERA-LunchBOT/internal/app/model"
	"github.com/binghan60/EKERA-LunchBOT/pkg/logger"
	"gorm.io/gorm"
)

type BindingRepository interface {
	Create(binding *model.OfficeBinding) error
	Update(binding *model.OfficeBinding) error
	Delete(id uint) error
	DeleteByRestaurant(groupID string, restaurantID uint) (int64, error)
	DeleteByOffice(groupID, office string) (int64, error)
	FindByID(id uint) (*model.OfficeBinding, error)
	FindByTuple(groupID, office string, restaurantID uint) (*model.OfficeBinding, error)
	FindByGroup(groupID string) ([]model.OfficeBinding, error)
	FindByOffice(groupID, office string, activeOnly bool) ([]model.OfficeBinding, error)
	ListDistinctOffices(groupID string) ([]string, error)
}

type bindingRepository struct {
	db *gorm.DB
}

func NewBindingRepository(db *gorm.DB) BindingRepository {
	return &bindingRepository{db: db}
}

func (r *bindingRepository) Create(binding *model.OfficeBinding) error {
	logger.Debug("Creating office binding in database", map[string]interface{}{
		"group_id":      binding.GroupID,
		"office":        binding.Office,
		"restaurant_id": binding.RestaurantID,
	})

	if err := r.db.Create(binding).Error; err != nil {
		logger.Error("Failed to create office binding in database", err, map[string]interface{}{
			"group_id":      binding.GroupID,
			"office":        binding.Office,
			"restaurant_id": binding.RestaurantID,
		})
		return err
	}
	return nil
}

func (r *bindingRepository) Update(binding *model.OfficeBinding) error {
	logger.Debug("Updating office binding in database", map[string]interface{}{
		"binding_id": binding.ID,
		"office":     binding.Office,
		"is_active":  binding.IsActiveInOffice,
	})

	if err := r.db.Save(binding).Error; err != nil {
		logger.Error("Failed to update office binding in database", err, map[string]interface{}{
			"binding_id": binding.ID,
		})
		return err
	}
	return nil
}

func (r *bindingRepository) Delete(id uint) error {
	result := r.db.Delete(&model.OfficeBinding{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete office binding from database", result.Error, map[string]interface{}{
			"binding_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByRestaurant removes every binding of a restaurant within a group.
// Called by the restaurant hard-delete cascade.
func (r *bindingRepository) DeleteByRestaurant(groupID string, restaurantID uint) (int64, error) {
	result := r.db.Where("group_id = ? AND restaurant_id = ?", groupID, restaurantID).
		Delete(&model.OfficeBinding{})
	if result.Error != nil {
		logger.Error("Failed to delete bindings by restaurant", result.Error, map[string]interface{}{
			"group_id":      groupID,
			"restaurant_id": restaurantID,
		})
		return 0, result.Error
	}

	logger.Debug("Bindings deleted by restaurant", map[string]interface{}{
		"group_id":      groupID,
		"restaurant_id": restaurantID,
		"deleted":       result.RowsAffected,
	})
	return result.RowsAffected, nil
}

// DeleteByOffice removes every binding under an office name within a group.
// Called when an office is removed from the group's option list.
func (r *bindingRepository) DeleteByOffice(groupID, office string) (int64, error) {
	result := r.db.Where("group_id = ? AND office = ?", groupID, office).
		Delete(&model.OfficeBinding{})
	if result.Error != nil {
		logger.Error("Failed to delete bindings by office", result.Error, map[string]interface{}{
			"group_id": groupID,
			"office":   office,
		})
		return 0, result.Error
	}

	logger.Debug("Bindings deleted by office", map[string]interface{}{
		"group_id": groupID,
		"office":   office,
		"deleted":  result.RowsAffected,
	})
	return result.RowsAffected, nil
}

func (r *bindingRepository) FindByID(id uint) (*model.OfficeBinding, error) {
	var binding model.OfficeBinding
	if err := r.db.Preload("Restaurant").First(&binding, id).Error; err != nil {
		return nil, err
	}
	return &binding, nil
}

func (r *bindingRepository) FindByTuple(groupID, office string, restaurantID uint) (*model.OfficeBinding, error) {
	var binding model.OfficeBinding
	err := r.db.Where("group_id = ? AND office = ? AND restaurant_id = ?", groupID, office, restaurantID).
		First(&binding).Error
	if err != nil {
		return nil, err
	}
	return &binding, nil
}

func (r *bindingRepository) FindByGroup(groupID string) ([]model.OfficeBinding, error) {
	logger.Debug("Finding bindings by group", map[string]interface{}{
		"group_id": groupID,
	})

	var bindings []model.OfficeBinding
	err := r.db.Preload("Restaurant").
		Where("group_id = ?", groupID).
		Order("office ASC, id ASC").
		Find(&bindings).Error
	if err != nil {
		logger.Error("Failed to find bindings by group", err, map[string]interface{}{
			"group_id": groupID,
		})
		return nil, err
	}
	return bindings, nil
}

func (r *bindingRepository) FindByOffice(groupID, office string, activeOnly bool) ([]model.OfficeBinding, error) {
	logger.Debug("Finding bindings by office", map[string]interface{}{
		"group_id":    groupID,
		"office":      office,
		"active_only": activeOnly,
	})

	query := r.db.Preload("Restaurant").
		Where("group_id = ? AND office = ?", groupID, office)
	if activeOnly {
		query = query.Where("is_active_in_office = ?", true)
	}

	var bindings []model.OfficeBinding
	if err := query.Order("id ASC").Find(&bindings).Error; err != nil {
		logger.Error("Failed to find bindings by office", err, map[string]interface{}{
			"group_id": groupID,
			"office":   office,
		})
		return nil, err
	}
	return bindings, nil
}

// ListDistinctOffices returns office names that currently have at least one
// binding. This is a projection over bindings, deliberately separate from
// GroupConfig.OfficeOption: the two lists can and do diverge.
func (r *bindingRepository) ListDistinctOffices(groupID string) ([]string, error) {
	var offices []string
	err := r.db.Model(&model.OfficeBinding{}).
		Where("group_id = ?", groupID).
		Distinct().
		Order("office ASC").
		Pluck("office", &offices).Error
	if err != nil {
		logger.Error("Failed to list distinct offices", err, map[string]interface{}{
			"group_id": groupID,
		})
		return nil, err
	}
	return offices, nil
}
