package service

import (
	"errors"

	"github.com/binghan60/EKERA-LunchBOT/internal/app/model"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/repository"
	"github.com/binghan60/EKERA-LunchBOT/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrBindingNotFound = errors.New("office binding not found")
	ErrBindingExists   = errors.New("restaurant already bound to this office")
)

// BindingUpdateInput carries partial updates to a binding. A new office name
// must be a member of the owning group's office options.
type BindingUpdateInput struct {
	Office           *string
	Note             *string
	IsActiveInOffice *bool
}

type BindingService interface {
	Bind(groupID, office string, restaurantID uint, note string) (*model.OfficeBinding, error)
	UpdateBinding(bindingID uint, input BindingUpdateInput) (*model.OfficeBinding, error)
	SetBindingOffice(bindingID uint, newOffice string) (*model.OfficeBinding, error)
	ToggleBindingActive(bindingID uint) (*model.OfficeBinding, error)
	Unbind(bindingID uint) error
	UnbindByName(groupID, office, restaurantName string) error
	ListBindingsForGroup(groupID string) ([]model.OfficeBinding, error)
	ListBindingsForOffice(groupID, office string) ([]model.OfficeBinding, error)
	ListDistinctOffices(groupID string) ([]string, error)
}

type bindingService struct {
	bindingRepo    repository.BindingRepository
	restaurantRepo repository.RestaurantRepository
	configRepo     repository.GroupConfigRepository
}

func NewBindingService(bindingRepo repository.BindingRepository, restaurantRepo repository.RestaurantRepository, configRepo repository.GroupConfigRepository) BindingService {
	return &bindingService{
		bindingRepo:    bindingRepo,
		restaurantRepo: restaurantRepo,
		configRepo:     configRepo,
	}
}

// Bind makes a restaurant drawable at an office. The office name is taken
// as-is: bindings may exist for offices outside the group's option set, the
// two lists are allowed to diverge.
func (s *bindingService) Bind(groupID, office string, restaurantID uint, note string) (*model.OfficeBinding, error) {
	if _, err := s.restaurantRepo.FindByID(restaurantID, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}

	existing, err := s.bindingRepo.FindByTuple(groupID, office, restaurantID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrBindingExists
	}

	binding := &model.OfficeBinding{
		GroupID:          groupID,
		Office:           office,
		RestaurantID:     restaurantID,
		IsActiveInOffice: true,
		Note:             note,
	}
	if err := s.bindingRepo.Create(binding); err != nil {
		return nil, err
	}

	logger.Info("Restaurant bound to office", map[string]interface{}{
		"group_id":      groupID,
		"office":        office,
		"restaurant_id": restaurantID,
	})
	return binding, nil
}

func (s *bindingService) UpdateBinding(bindingID uint, input BindingUpdateInput) (*model.OfficeBinding, error) {
	binding, err := s.bindingRepo.FindByID(bindingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBindingNotFound
		}
		return nil, err
	}

	if input.Office != nil && *input.Office != binding.Office {
		if err := s.validateOffice(binding.GroupID, *input.Office); err != nil {
			return nil, err
		}
		dup, err := s.bindingRepo.FindByTuple(binding.GroupID, *input.Office, binding.RestaurantID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if dup != nil {
			return nil, ErrBindingExists
		}
		binding.Office = *input.Office
	}
	if input.Note != nil {
		binding.Note = *input.Note
	}
	if input.IsActiveInOffice != nil {
		binding.IsActiveInOffice = *input.IsActiveInOffice
	}

	if err := s.bindingRepo.Update(binding); err != nil {
		return nil, err
	}
	return binding, nil
}

// validateOffice checks membership in the owning group's office options.
func (s *bindingService) validateOffice(groupID, office string) error {
	config, err := s.configRepo.FindByGroupID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotConfigured
		}
		return err
	}
	if !config.HasOffice(office) {
		return ErrInvalidOffice
	}
	return nil
}

func (s *bindingService) SetBindingOffice(bindingID uint, newOffice string) (*model.OfficeBinding, error) {
	return s.UpdateBinding(bindingID, BindingUpdateInput{Office: &newOffice})
}

// ToggleBindingActive flips the per-office active flag. Plain read-modify-
// write, last write wins.
func (s *bindingService) ToggleBindingActive(bindingID uint) (*model.OfficeBinding, error) {
	binding, err := s.bindingRepo.FindByID(bindingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBindingNotFound
		}
		return nil, err
	}

	binding.IsActiveInOffice = !binding.IsActiveInOffice
	if err := s.bindingRepo.Update(binding); err != nil {
		return nil, err
	}

	logger.Info("Binding toggled", map[string]interface{}{
		"binding_id": binding.ID,
		"active":     binding.IsActiveInOffice,
	})
	return binding, nil
}

func (s *bindingService) Unbind(bindingID uint) error {
	if err := s.bindingRepo.Delete(bindingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBindingNotFound
		}
		return err
	}

	logger.Info("Binding removed", map[string]interface{}{
		"binding_id": bindingID,
	})
	return nil
}

// UnbindByName is the chat-command entry point: remove a restaurant from an
// office by restaurant name.
func (s *bindingService) UnbindByName(groupID, office, restaurantName string) error {
	restaurant, err := s.restaurantRepo.FindByName(groupID, restaurantName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRestaurantNotFound
		}
		return err
	}

	binding, err := s.bindingRepo.FindByTuple(groupID, office, restaurant.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBindingNotFound
		}
		return err
	}

	return s.Unbind(binding.ID)
}

func (s *bindingService) ListBindingsForGroup(groupID string) ([]model.OfficeBinding, error) {
	return s.bindingRepo.FindByGroup(groupID)
}

func (s *bindingService) ListBindingsForOffice(groupID, office string) ([]model.OfficeBinding, error) {
	return s.bindingRepo.FindByOffice(groupID, office, false)
}

// ListDistinctOffices returns office names that currently have at least one
// binding. This is a different list from the configured office options and
// the two can diverge.
func (s *bindingService) ListDistinctOffices(groupID string) ([]string, error) {
	return s.bindingRepo.ListDistinctOffices(groupID)
}
