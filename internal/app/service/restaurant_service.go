package service

import (
	"context"
	"errors"
	"io"

	"github.com/binghan60/EKERA-LunchBOT/internal/app/model"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/repository"
	"github.com/binghan60/EKERA-LunchBOT/internal/storage"
	"github.com/binghan60/EKERA-LunchBOT/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrRestaurantExists   = errors.New("restaurant already exists in group")
	ErrTooManyImages      = errors.New("too many menu images")
)

// menuImageFolder is the object-store prefix for uploaded menu images.
const menuImageFolder = "menus"

// ImageUpload is one incoming menu image, decoupled from multipart handling.
type ImageUpload struct {
	Body        io.Reader
	Filename    string
	ContentType string
}

type RestaurantInput struct {
	Name    string
	Address string
	Phone   string
	Tags    []string
}

// RestaurantUpdateInput carries partial updates. Nil fields keep their prior
// value; Menu is a full overwrite when set.
type RestaurantUpdateInput struct {
	Name     *string
	Address  *string
	Phone    *string
	Tags     *[]string
	Menu     *[]string
	IsActive *bool
}

type RestaurantService interface {
	CreateRestaurant(ctx context.Context, groupID string, input RestaurantInput, images []ImageUpload) (*model.Restaurant, error)
	FindOrCreateByName(groupID, name string) (*model.Restaurant, bool, error)
	GetRestaurant(id uint, groupID string) (*model.Restaurant, error)
	GetRestaurantByName(groupID, name string) (*model.Restaurant, error)
	ListRestaurants(groupID, keyword string) ([]model.Restaurant, error)
	UpdateRestaurant(id uint, groupID string, input RestaurantUpdateInput) (*model.Restaurant, error)
	AddMenuImages(ctx context.Context, id uint, groupID string, images []ImageUpload) (*model.Restaurant, error)
	DeactivateRestaurant(id uint, groupID string) (*model.Restaurant, error)
	DeleteRestaurant(ctx context.Context, id uint, groupID string) (*model.Restaurant, error)
}

type restaurantService struct {
	restaurantRepo repository.RestaurantRepository
	bindingRepo    repository.BindingRepository
	imageStore     storage.ImageStore
}

func NewRestaurantService(restaurantRepo repository.RestaurantRepository, bindingRepo repository.BindingRepository, imageStore storage.ImageStore) RestaurantService {
	return &restaurantService{
		restaurantRepo: restaurantRepo,
		bindingRepo:    bindingRepo,
		imageStore:     imageStore,
	}
}

// CreateRestaurant registers a restaurant under a group and uploads its menu
// images. Images already uploaded when a later upload fails are kept as-is;
// the failure is logged and the remaining uploads are skipped.
func (s *restaurantService) CreateRestaurant(ctx context.Context, groupID string, input RestaurantInput, images []ImageUpload) (*model.Restaurant, error) {
	logger.Debug("Creating restaurant", map[string]interface{}{
		"group_id": groupID,
		"name":     input.Name,
		"images":   len(images),
	})

	if len(images) > model.MaxMenuImages {
		return nil, ErrTooManyImages
	}

	existing, err := s.restaurantRepo.FindByName(groupID, input.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRestaurantExists
	}

	restaurant := &model.Restaurant{
		GroupID:  groupID,
		Name:     input.Name,
		Address:  input.Address,
		Phone:    input.Phone,
		Tags:     model.StringArray(input.Tags),
		IsActive: true,
		Menu:     s.uploadImages(ctx, images),
	}

	if err := s.restaurantRepo.Create(restaurant); err != nil {
		return nil, err
	}

	logger.Info("Restaurant created", map[string]interface{}{
		"group_id":      groupID,
		"restaurant_id": restaurant.ID,
		"name":          restaurant.Name,
	})
	return restaurant, nil
}

// uploadImages pushes each image to the external store and collects the
// resulting URLs. A failed upload stops the batch without removing the URLs
// already obtained.
func (s *restaurantService) uploadImages(ctx context.Context, images []ImageUpload) model.StringArray {
	var urls model.StringArray
	for _, img := range images {
		url, err := s.imageStore.Upload(ctx, img.Body, img.Filename, img.ContentType, menuImageFolder)
		if err != nil {
			logger.Error("Menu image upload failed, keeping partial batch", err, map[string]interface{}{
				"filename": img.Filename,
				"uploaded": len(urls),
			})
			break
		}
		urls = append(urls, url)
	}
	return urls
}

// FindOrCreateByName is the chat-command entry point: the bot registers
// restaurants by bare name. The second return reports whether a new record
// was created.
func (s *restaurantService) FindOrCreateByName(groupID, name string) (*model.Restaurant, bool, error) {
	existing, err := s.restaurantRepo.FindByName(groupID, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	restaurant := &model.Restaurant{
		GroupID:  groupID,
		Name:     name,
		IsActive: true,
	}
	if err := s.restaurantRepo.Create(restaurant); err != nil {
		return nil, false, err
	}

	logger.Info("Restaurant created via chat command", map[string]interface{}{
		"group_id":      groupID,
		"restaurant_id": restaurant.ID,
		"name":          name,
	})
	return restaurant, true, nil
}

func (s *restaurantService) GetRestaurant(id uint, groupID string) (*model.Restaurant, error) {
	restaurant, err := s.restaurantRepo.FindByID(id, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return restaurant, nil
}

func (s *restaurantService) GetRestaurantByName(groupID, name string) (*model.Restaurant, error) {
	restaurant, err := s.restaurantRepo.FindByName(groupID, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return restaurant, nil
}

func (s *restaurantService) ListRestaurants(groupID, keyword string) ([]model.Restaurant, error) {
	return s.restaurantRepo.FindAll(repository.RestaurantFilter{
		GroupID: groupID,
		Keyword: keyword,
	})
}

// UpdateRestaurant replaces only the provided fields. The id+groupID pair
// enforces tenant isolation: a restaurant of another group reads as absent.
func (s *restaurantService) UpdateRestaurant(id uint, groupID string, input RestaurantUpdateInput) (*model.Restaurant, error) {
	restaurant, err := s.restaurantRepo.FindByID(id, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}

	if input.Name != nil && *input.Name != restaurant.Name {
		dup, err := s.restaurantRepo.FindByName(groupID, *input.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if dup != nil {
			return nil, ErrRestaurantExists
		}
		restaurant.Name = *input.Name
	}
	if input.Address != nil {
		restaurant.Address = *input.Address
	}
	if input.Phone != nil {
		restaurant.Phone = *input.Phone
	}
	if input.Tags != nil {
		restaurant.Tags = model.StringArray(*input.Tags)
	}
	if input.Menu != nil {
		if len(*input.Menu) > model.MaxMenuImages {
			return nil, ErrTooManyImages
		}
		restaurant.Menu = model.StringArray(*input.Menu)
	}
	if input.IsActive != nil {
		restaurant.IsActive = *input.IsActive
	}

	if err := s.restaurantRepo.Update(restaurant); err != nil {
		return nil, err
	}

	logger.Info("Restaurant updated", map[string]interface{}{
		"group_id":      groupID,
		"restaurant_id": restaurant.ID,
	})
	return restaurant, nil
}

// AddMenuImages appends uploads to the existing menu list, bounded by
// MaxMenuImages overall.
func (s *restaurantService) AddMenuImages(ctx context.Context, id uint, groupID string, images []ImageUpload) (*model.Restaurant, error) {
	restaurant, err := s.restaurantRepo.FindByID(id, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}

	if len(restaurant.Menu)+len(images) > model.MaxMenuImages {
		return nil, ErrTooManyImages
	}

	restaurant.Menu = append(restaurant.Menu, s.uploadImages(ctx, images)...)
	if err := s.restaurantRepo.Update(restaurant); err != nil {
		return nil, err
	}
	return restaurant, nil
}

// DeactivateRestaurant is the soft delete: the restaurant stops being
// drawable everywhere but bindings and history stay intact.
func (s *restaurantService) DeactivateRestaurant(id uint, groupID string) (*model.Restaurant, error) {
	restaurant, err := s.restaurantRepo.FindByID(id, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}

	restaurant.IsActive = false
	if err := s.restaurantRepo.Update(restaurant); err != nil {
		return nil, err
	}

	logger.Info("Restaurant deactivated", map[string]interface{}{
		"group_id":      groupID,
		"restaurant_id": restaurant.ID,
	})
	return restaurant, nil
}

// DeleteRestaurant is the hard delete. Order matters: external images first
// (best-effort), then every binding of the restaurant, then the record
// itself, so bindings never outlive the restaurant they reference.
func (s *restaurantService) DeleteRestaurant(ctx context.Context, id uint, groupID string) (*model.Restaurant, error) {
	restaurant, err := s.restaurantRepo.FindByID(id, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}

	for _, url := range restaurant.Menu {
		if err := s.imageStore.Delete(ctx, url); err != nil {
			logger.Error("Failed to delete menu image, continuing", err, map[string]interface{}{
				"restaurant_id": restaurant.ID,
				"url":           url,
			})
		}
	}

	removed, err := s.bindingRepo.DeleteByRestaurant(groupID, restaurant.ID)
	if err != nil {
		return nil, err
	}

	if err := s.restaurantRepo.Delete(restaurant.ID); err != nil {
		return nil, err
	}

	logger.Info("Restaurant deleted", map[string]interface{}{
		"group_id":         groupID,
		"restaurant_id":    restaurant.ID,
		"bindings_removed": removed,
	})
	return restaurant, nil
}
