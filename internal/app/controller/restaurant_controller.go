package controller

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/binghan60/EKERA-LunchBOT/internal/errors"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/service"
	"github.com/binghan60/EKERA-LunchBOT/internal/middleware"
	"github.com/binghan60/EKERA-LunchBOT/internal/storage"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

type RestaurantController struct {
	restaurantService service.RestaurantService
}

func NewRestaurantController(restaurantService service.RestaurantService) *RestaurantController {
	return &RestaurantController{restaurantService: restaurantService}
}

type RestaurantUpdateRequest struct {
	Name     *string   `json:"name"`
	Address  *string   `json:"address"`
	Phone    *string   `json:"phone"`
	Tags     *[]string `json:"tags"`
	Menu     *[]string `json:"menu"`
	IsActive *bool     `json:"is_active"`
}

// groupIDFromQuery reads the required group scope off the query string.
func groupIDFromQuery(c *gin.Context) (string, bool) {
	groupID := c.Query("group_id")
	if groupID == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "缺少 group_id")
		return "", false
	}
	return groupID, true
}

func idFromParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID 格式錯誤")
		return 0, false
	}
	return uint(id), true
}

func (ctrl *RestaurantController) ListRestaurants(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID, ok := groupIDFromQuery(c)
	if !ok {
		return
	}

	restaurants, err := ctrl.restaurantService.ListRestaurants(groupID, c.Query("keyword"))
	if err != nil {
		log.Error("Failed to list restaurants", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"restaurants": restaurants,
		"count":       len(restaurants),
	})
}

func (ctrl *RestaurantController) GetRestaurant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID, ok := groupIDFromQuery(c)
	if !ok {
		return
	}
	id, ok := idFromParam(c)
	if !ok {
		return
	}

	restaurant, err := ctrl.restaurantService.GetRestaurant(id, groupID)
	if err != nil {
		if errors.Is(err, service.ErrRestaurantNotFound) {
			apperrors.NotFound(c, apperrors.RestaurantNotFound, "餐廳不存在")
			return
		}
		log.Error("Failed to get restaurant", err, map[string]interface{}{"restaurant_id": id})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

// CreateRestaurant accepts multipart form data with up to five menu images.
func (ctrl *RestaurantController) CreateRestaurant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID := c.PostForm("group_id")
	name := c.PostForm("name")
	if groupID == "" || name == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "group_id 與 name 為必填")
		return
	}

	input := service.RestaurantInput{
		Name:    name,
		Address: c.PostForm("address"),
		Phone:   c.PostForm("phone"),
		Tags:    splitTags(c.PostForm("tags")),
	}

	images, closeFiles, ok := collectImages(c)
	if !ok {
		return
	}
	defer closeFiles()

	restaurant, err := ctrl.restaurantService.CreateRestaurant(c.Request.Context(), groupID, input, images)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRestaurantExists):
			apperrors.Conflict(c, apperrors.RestaurantExists, "群組內已有同名餐廳")
		case errors.Is(err, service.ErrTooManyImages):
			apperrors.BadRequest(c, apperrors.UploadTooManyImages, "圖片最多五張")
		default:
			log.Error("Failed to create restaurant", err, map[string]interface{}{"group_id": groupID})
			apperrors.InternalError(c, "")
		}
		return
	}

	log.Info("Restaurant created", map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"group_id":      groupID,
	})
	c.JSON(http.StatusCreated, gin.H{"restaurant": restaurant})
}

func (ctrl *RestaurantController) UpdateRestaurant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID, ok := groupIDFromQuery(c)
	if !ok {
		return
	}
	id, ok := idFromParam(c)
	if !ok {
		return
	}

	var req RestaurantUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "輸入格式錯誤")
		return
	}

	restaurant, err := ctrl.restaurantService.UpdateRestaurant(id, groupID, service.RestaurantUpdateInput{
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		Tags:     req.Tags,
		Menu:     req.Menu,
		IsActive: req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRestaurantNotFound):
			apperrors.NotFound(c, apperrors.RestaurantNotFound, "餐廳不存在")
		case errors.Is(err, service.ErrRestaurantExists):
			apperrors.Conflict(c, apperrors.RestaurantExists, "群組內已有同名餐廳")
		case errors.Is(err, service.ErrTooManyImages):
			apperrors.BadRequest(c, apperrors.UploadTooManyImages, "圖片最多五張")
		default:
			log.Error("Failed to update restaurant", err, map[string]interface{}{"restaurant_id": id})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

// AddMenuImages appends uploaded images to an existing restaurant.
func (ctrl *RestaurantController) AddMenuImages(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID := c.PostForm("group_id")
	if groupID == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "缺少 group_id")
		return
	}
	id, ok := idFromParam(c)
	if !ok {
		return
	}

	images, closeFiles, ok := collectImages(c)
	if !ok {
		return
	}
	defer closeFiles()

	restaurant, err := ctrl.restaurantService.AddMenuImages(c.Request.Context(), id, groupID, images)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRestaurantNotFound):
			apperrors.NotFound(c, apperrors.RestaurantNotFound, "餐廳不存在")
		case errors.Is(err, service.ErrTooManyImages):
			apperrors.BadRequest(c, apperrors.UploadTooManyImages, "圖片最多五張")
		default:
			log.Error("Failed to add menu images", err, map[string]interface{}{"restaurant_id": id})
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.UploadFailed, "圖片上傳失敗")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

func (ctrl *RestaurantController) DeactivateRestaurant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID, ok := groupIDFromQuery(c)
	if !ok {
		return
	}
	id, ok := idFromParam(c)
	if !ok {
		return
	}

	restaurant, err := ctrl.restaurantService.DeactivateRestaurant(id, groupID)
	if err != nil {
		if errors.Is(err, service.ErrRestaurantNotFound) {
			apperrors.NotFound(c, apperrors.RestaurantNotFound, "餐廳不存在")
			return
		}
		log.Error("Failed to deactivate restaurant", err, map[string]interface{}{"restaurant_id": id})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

func (ctrl *RestaurantController) DeleteRestaurant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	groupID, ok := groupIDFromQuery(c)
	if !ok {
		return
	}
	id, ok := idFromParam(c)
	if !ok {
		return
	}

	restaurant, err := ctrl.restaurantService.DeleteRestaurant(c.Request.Context(), id, groupID)
	if err != nil {
		if errors.Is(err, service.ErrRestaurantNotFound) {
			apperrors.NotFound(c, apperrors.RestaurantNotFound, "餐廳不存在")
			return
		}
		log.Error("Failed to delete restaurant", err, map[string]interface{}{"restaurant_id": id})
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Restaurant deleted", map[string]interface{}{
		"restaurant_id": id,
		"group_id":      groupID,
	})
	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// collectImages opens the uploaded image files and validates their content
// types. The returned closer releases every opened file.
func collectImages(c *gin.Context) ([]service.ImageUpload, func(), bool) {
	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body means no images, which is fine.
		return nil, func() {}, true
	}

	files := form.File["images"]
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	uploads := make([]service.ImageUpload, 0, len(files))
	for _, fh := range files {
		contentType := fh.Header.Get("Content-Type")
		if err := storage.ValidateContentType(contentType, allowedImageTypes); err != nil {
			closeAll()
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "只接受 JPEG、PNG 或 WebP 圖片")
			return nil, nil, false
		}

		f, err := fh.Open()
		if err != nil {
			closeAll()
			apperrors.InternalError(c, "讀取上傳檔案失敗")
			return nil, nil, false
		}
		opened = append(opened, f)
		uploads = append(uploads, service.ImageUpload{
			Body:        f,
			Filename:    fh.Filename,
			ContentType: contentType,
		})
	}
	return uploads, closeAll, true
}
