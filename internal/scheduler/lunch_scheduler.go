package scheduler

import (
	"context"
	"time"

	"github.com/binghan60/EKERA-LunchBOT/internal/app/service"
	"github.com/binghan60/EKERA-LunchBOT/pkg/logger"
	"github.com/robfig/cron/v3"
)

// pushTimeout bounds each group's scheduled push.
const pushTimeout = 30 * time.Second

// LunchScheduler pushes a scheduled draw to every group that opted in. One
// group failing never stops the rest of the run.
type LunchScheduler struct {
	cron          *cron.Cron
	spec          string
	configService service.GroupConfigService
	drawService   service.DrawService
	notifyService service.NotifyService
}

func NewLunchScheduler(
	spec string,
	configService service.GroupConfigService,
	drawService service.DrawService,
	notifyService service.NotifyService,
) *LunchScheduler {
	return &LunchScheduler{
		cron:          cron.New(),
		spec:          spec,
		configService: configService,
		drawService:   drawService,
		notifyService: notifyService,
	}
}

func (s *LunchScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.Run)
	if err != nil {
		logger.Error("Failed to add cron job for lunch notification", err)
		return err
	}

	s.cron.Start()
	logger.Info("Lunch notification scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// Run draws for every notifiable group and pushes the result.
func (s *LunchScheduler) Run() {
	logger.Info("Starting scheduled lunch notification run", nil)

	configs, err := s.configService.ListNotifiable()
	if err != nil {
		logger.Error("Failed to list notifiable groups", err)
		return
	}

	notified := 0
	for _, cfg := range configs {
		restaurant, err := s.drawService.Draw(cfg.GroupID, cfg.CurrentOffice)
		if err != nil {
			logger.Error("Scheduled draw failed, skipping group", err, map[string]interface{}{
				"group_id": cfg.GroupID,
			})
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		err = s.notifyService.PushDrawResult(ctx, cfg.GroupID, restaurant, cfg.CurrentOffice)
		cancel()
		if err != nil {
			logger.Error("Scheduled push failed, skipping group", err, map[string]interface{}{
				"group_id": cfg.GroupID,
			})
			continue
		}
		notified++
	}

	logger.Info("Scheduled lunch notification run finished", map[string]interface{}{
		"groups":   len(configs),
		"notified": notified,
	})
}

func (s *LunchScheduler) Stop() {
	logger.Info("Stopping lunch notification scheduler...", nil)
	s.cron.Stop()
	logger.Info("Lunch notification scheduler stopped", nil)
}
