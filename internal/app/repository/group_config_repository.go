package repository

import (
	"github.com/binghan60/EKERA-LunchBOT/internal/app/model"
	"github.com/binghan60/EKERA-LunchBOT/pkg/logger"
	"gorm.io/gorm"
)

type GroupConfigRepository interface {
	Create(config *model.GroupConfig) error
	Update(config *model.GroupConfig) error
	FindByGroupID(groupID string) (*model.GroupConfig, error)
	FindNotifiable() ([]model.GroupConfig, error)
}

type groupConfigRepository struct {
	db *gorm.DB
}

func NewGroupConfigRepository(db *gorm.DB) GroupConfigRepository {
	return &groupConfigRepository{db: db}
}

func (r *groupConfigRepository) Create(config *model.GroupConfig) error {
	logger.Debug("Creating group config in database", map[string]interface{}{
		"group_id":       config.GroupID,
		"current_office": config.CurrentOffice,
	})

	if err := r.db.Create(config).Error; err != nil {
		logger.Error("Failed to create group config in database", err, map[string]interface{}{
			"group_id": config.GroupID,
		})
		return err
	}
	return nil
}

func (r *groupConfigRepository) Update(config *model.GroupConfig) error {
	logger.Debug("Updating group config in database", map[string]interface{}{
		"group_id":       config.GroupID,
		"current_office": config.CurrentOffice,
	})

	if err := r.db.Save(config).Error; err != nil {
		logger.Error("Failed to update group config in database", err, map[string]interface{}{
			"group_id": config.GroupID,
		})
		return err
	}
	return nil
}

func (r *groupConfigRepository) FindByGroupID(groupID string) (*model.GroupConfig, error) {
	var config model.GroupConfig
	if err := r.db.Where("group_id = ?", groupID).First(&config).Error; err != nil {
		return nil, err
	}
	return &config, nil
}

// FindNotifiable returns the configs of every group that opted into the
// scheduled lunch push.
func (r *groupConfigRepository) FindNotifiable() ([]model.GroupConfig, error) {
	var configs []model.GroupConfig
	err := r.db.Where("lunch_notification = ?", true).Find(&configs).Error
	if err != nil {
		logger.Error("Failed to find notifiable group configs", err)
		return nil, err
	}
	return configs, nil
}
