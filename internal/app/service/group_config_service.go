package service

import (
	"errors"
	"strings"

	"github.com/binghan60/EKERA-LunchBOT/internal/app/model"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/repository"
	"github.com/binghan60/EKERA-LunchBOT/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrGroupNotConfigured = errors.New("group not configured")
	ErrConfigExists       = errors.New("group already configured")
	ErrOfficeNotInOptions = errors.New("current office must be one of the office options")
	ErrInvalidOffice      = errors.New("office is not in the group's office options")
	ErrOfficeInUse        = errors.New("cannot remove the office currently in use")
)

// GroupConfigUpdateInput carries partial updates to a group's configuration.
type GroupConfigUpdateInput struct {
	CurrentOffice     *string
	OfficeOption      *[]string
	LunchNotification *bool
}

type GroupConfigService interface {
	GetConfig(groupID string) (*model.GroupConfig, error)
	CreateConfig(groupID, currentOffice string, officeOption []string, lunchNotification bool) (*model.GroupConfig, error)
	UpdateConfig(groupID string, input GroupConfigUpdateInput) (*model.GroupConfig, error)
	EnsureConfig(groupID string) (*model.GroupConfig, error)
	AddOffice(groupID, name string) (*model.GroupConfig, bool, error)
	RemoveOffice(groupID, name string) (*model.GroupConfig, error)
	SetCurrentOffice(groupID, name string) (*model.GroupConfig, error)
	SetLunchNotification(groupID string, enabled bool) (*model.GroupConfig, error)
	ListNotifiable() ([]model.GroupConfig, error)
}

type groupConfigService struct {
	configRepo  repository.GroupConfigRepository
	bindingRepo repository.BindingRepository
}

func NewGroupConfigService(configRepo repository.GroupConfigRepository, bindingRepo repository.BindingRepository) GroupConfigService {
	return &groupConfigService{
		configRepo:  configRepo,
		bindingRepo: bindingRepo,
	}
}

func (s *groupConfigService) GetConfig(groupID string) (*model.GroupConfig, error) {
	config, err := s.configRepo.FindByGroupID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotConfigured
		}
		return nil, err
	}
	return config, nil
}

func (s *groupConfigService) CreateConfig(groupID, currentOffice string, officeOption []string, lunchNotification bool) (*model.GroupConfig, error) {
	existing, err := s.configRepo.FindByGroupID(groupID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConfigExists
	}

	config := &model.GroupConfig{
		GroupID:           groupID,
		CurrentOffice:     currentOffice,
		OfficeOption:      model.StringArray(officeOption),
		LunchNotification: lunchNotification,
	}
	if len(config.OfficeOption) > 0 && !config.HasOffice(currentOffice) {
		return nil, ErrOfficeNotInOptions
	}

	if err := s.configRepo.Create(config); err != nil {
		return nil, err
	}

	logger.Info("Group configuration created", map[string]interface{}{
		"group_id":       groupID,
		"current_office": currentOffice,
	})
	return config, nil
}

// UpdateConfig replaces the provided fields. Shrinking the office options
// cascades binding deletion for every removed office. The config write and
// the cascade are sequential, not atomic: a crash in between leaves bindings
// under an office name no longer in the option set.
func (s *groupConfigService) UpdateConfig(groupID string, input GroupConfigUpdateInput) (*model.GroupConfig, error) {
	config, err := s.GetConfig(groupID)
	if err != nil {
		return nil, err
	}

	prevOptions := config.OfficeOption
	if input.OfficeOption != nil {
		config.OfficeOption = model.StringArray(*input.OfficeOption)
	}
	if input.CurrentOffice != nil {
		config.CurrentOffice = *input.CurrentOffice
	}
	if input.LunchNotification != nil {
		config.LunchNotification = *input.LunchNotification
	}

	if len(config.OfficeOption) > 0 && !config.HasOffice(config.CurrentOffice) {
		return nil, ErrOfficeNotInOptions
	}

	if err := s.configRepo.Update(config); err != nil {
		return nil, err
	}

	if input.OfficeOption != nil {
		s.cascadeRemovedOffices(config, prevOptions)
	}

	logger.Info("Group configuration updated", map[string]interface{}{
		"group_id":       groupID,
		"current_office": config.CurrentOffice,
	})
	return config, nil
}

// cascadeRemovedOffices deletes the bindings of every office present in the
// previous option set but absent from the current one.
func (s *groupConfigService) cascadeRemovedOffices(config *model.GroupConfig, prevOptions model.StringArray) {
	for _, office := range prevOptions {
		if config.HasOffice(office) {
			continue
		}
		removed, err := s.bindingRepo.DeleteByOffice(config.GroupID, office)
		if err != nil {
			logger.Error("Failed to cascade binding deletion for removed office", err, map[string]interface{}{
				"group_id": config.GroupID,
				"office":   office,
			})
			continue
		}
		logger.Info("Cascaded binding deletion for removed office", map[string]interface{}{
			"group_id": config.GroupID,
			"office":   office,
			"removed":  removed,
		})
	}
}

// EnsureConfig returns the group's configuration, creating the bootstrap
// record on first contact. Idempotent.
func (s *groupConfigService) EnsureConfig(groupID string) (*model.GroupConfig, error) {
	config, err := s.configRepo.FindByGroupID(groupID)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	config = &model.GroupConfig{
		GroupID:       groupID,
		CurrentOffice: model.DefaultOffice,
		OfficeOption:  model.StringArray{model.DefaultOffice},
	}
	if err := s.configRepo.Create(config); err != nil {
		return nil, err
	}

	logger.Info("Group configuration bootstrapped", map[string]interface{}{
		"group_id": groupID,
	})
	return config, nil
}

// AddOffice appends a name to the option set. Blank or already-present names
// are a no-op; the second return reports whether anything was added.
func (s *groupConfigService) AddOffice(groupID, name string) (*model.GroupConfig, bool, error) {
	config, err := s.EnsureConfig(groupID)
	if err != nil {
		return nil, false, err
	}

	name = strings.TrimSpace(name)
	if name == "" || config.HasOffice(name) {
		return config, false, nil
	}

	config.OfficeOption = append(config.OfficeOption, name)
	if err := s.configRepo.Update(config); err != nil {
		return nil, false, err
	}

	logger.Info("Office added", map[string]interface{}{
		"group_id": groupID,
		"office":   name,
	})
	return config, true, nil
}

// RemoveOffice drops a name from the option set and cascades binding
// deletion for it. The office currently in use cannot be removed.
func (s *groupConfigService) RemoveOffice(groupID, name string) (*model.GroupConfig, error) {
	config, err := s.GetConfig(groupID)
	if err != nil {
		return nil, err
	}

	if name == config.CurrentOffice {
		return nil, ErrOfficeInUse
	}
	if !config.HasOffice(name) {
		return nil, ErrInvalidOffice
	}

	kept := make(model.StringArray, 0, len(config.OfficeOption)-1)
	for _, o := range config.OfficeOption {
		if o != name {
			kept = append(kept, o)
		}
	}
	config.OfficeOption = kept

	if err := s.configRepo.Update(config); err != nil {
		return nil, err
	}

	removed, err := s.bindingRepo.DeleteByOffice(groupID, name)
	if err != nil {
		logger.Error("Failed to cascade binding deletion for removed office", err, map[string]interface{}{
			"group_id": groupID,
			"office":   name,
		})
	}

	logger.Info("Office removed", map[string]interface{}{
		"group_id": groupID,
		"office":   name,
		"removed":  removed,
	})
	return config, nil
}

// SetCurrentOffice switches the active office, validated against the option
// set.
func (s *groupConfigService) SetCurrentOffice(groupID, name string) (*model.GroupConfig, error) {
	config, err := s.GetConfig(groupID)
	if err != nil {
		return nil, err
	}

	if !config.HasOffice(name) {
		return nil, ErrInvalidOffice
	}

	config.CurrentOffice = name
	if err := s.configRepo.Update(config); err != nil {
		return nil, err
	}

	logger.Info("Current office switched", map[string]interface{}{
		"group_id": groupID,
		"office":   name,
	})
	return config, nil
}

func (s *groupConfigService) SetLunchNotification(groupID string, enabled bool) (*model.GroupConfig, error) {
	config, err := s.EnsureConfig(groupID)
	if err != nil {
		return nil, err
	}

	config.LunchNotification = enabled
	if err := s.configRepo.Update(config); err != nil {
		return nil, err
	}
	return config, nil
}

func (s *groupConfigService) ListNotifiable() ([]model.GroupConfig, error) {
	return s.configRepo.FindNotifiable()
}
