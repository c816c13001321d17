package service

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/binghan60/EKERA-LunchBOT/internal/app/model"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/repository"
	"github.com/binghan60/EKERA-LunchBOT/pkg/logger"
	"github.com/binghan60/EKERA-LunchBOT/pkg/mailer"
	"gorm.io/gorm"
)

// DrawService picks one restaurant for a group. A nil restaurant with a nil
// error means nothing was eligible, which is a normal outcome rather than a
// failure.
type DrawService interface {
	Draw(groupID, office string) (*model.Restaurant, error)
	DrawForGroup(groupID string) (*model.Restaurant, string, error)
}

type drawService struct {
	bindingRepo    repository.BindingRepository
	restaurantRepo repository.RestaurantRepository
	configRepo     repository.GroupConfigRepository
	historyRepo    repository.DrawHistoryRepository
	alerts         mailer.Mailer
	pick           func(n int) int
}

// NewDrawService wires the draw engine. The optional picker overrides the
// random selection, tests use it to make draws deterministic.
func NewDrawService(
	bindingRepo repository.BindingRepository,
	restaurantRepo repository.RestaurantRepository,
	configRepo repository.GroupConfigRepository,
	historyRepo repository.DrawHistoryRepository,
	alerts mailer.Mailer,
	picker ...func(n int) int,
) DrawService {
	pick := rand.IntN
	if len(picker) > 0 && picker[0] != nil {
		pick = picker[0]
	}
	return &drawService{
		bindingRepo:    bindingRepo,
		restaurantRepo: restaurantRepo,
		configRepo:     configRepo,
		historyRepo:    historyRepo,
		alerts:         alerts,
		pick:           pick,
	}
}

// Draw selects one restaurant uniformly at random among those that are both
// actively bound to the office and active at the catalog level. The office
// name is taken as given: it is not re-checked against the group's office
// options, so an office dropped from the options still draws as long as
// active bindings remain.
func (s *drawService) Draw(groupID, office string) (*model.Restaurant, error) {
	logger.Debug("Drawing restaurant", map[string]interface{}{
		"group_id": groupID,
		"office":   office,
	})

	bindings, err := s.bindingRepo.FindByOffice(groupID, office, true)
	if err != nil {
		return nil, err
	}
	if len(bindings) == 0 {
		return nil, nil
	}

	seen := make(map[uint]struct{}, len(bindings))
	ids := make([]uint, 0, len(bindings))
	for _, b := range bindings {
		if _, ok := seen[b.RestaurantID]; ok {
			continue
		}
		seen[b.RestaurantID] = struct{}{}
		ids = append(ids, b.RestaurantID)
	}

	candidates, err := s.restaurantRepo.FindActiveByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	selected := candidates[s.pick(len(candidates))]

	logger.Info("Restaurant drawn", map[string]interface{}{
		"group_id":      groupID,
		"office":        office,
		"restaurant_id": selected.ID,
		"name":          selected.Name,
		"candidates":    len(candidates),
	})

	s.recordDraw(groupID, office, &selected)
	return &selected, nil
}

// recordDraw appends the ledger row. Fire-and-forget: a failure here is
// logged and alerted but never surfaces to the caller, the drawn result has
// already been decided.
func (s *drawService) recordDraw(groupID, office string, restaurant *model.Restaurant) {
	id := restaurant.ID
	record := &model.DrawRecord{
		GroupID:        groupID,
		RestaurantID:   &id,
		RestaurantName: restaurant.Name,
		Office:         office,
	}
	if err := s.historyRepo.Create(record); err != nil {
		logger.Error("Failed to record draw, result already returned", err, map[string]interface{}{
			"group_id":      groupID,
			"restaurant_id": restaurant.ID,
		})
		s.alerts.NotifyOperators(
			"抽獎紀錄寫入失敗",
			fmt.Sprintf("group=%s restaurant=%s(%d): %v", groupID, restaurant.Name, restaurant.ID, err),
		)
	}
}

// DrawForGroup resolves the group's current office and draws from it. The
// resolved office name is returned for presentation.
func (s *drawService) DrawForGroup(groupID string) (*model.Restaurant, string, error) {
	config, err := s.configRepo.FindByGroupID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrGroupNotConfigured
		}
		return nil, "", err
	}

	restaurant, err := s.Draw(groupID, config.CurrentOffice)
	return restaurant, config.CurrentOffice, err
}
