package scheduler

import (
	"context"

	"github.com/equityscope/newsradar/internal/aggregator"
	"github.com/equityscope/newsradar/internal/config"
	"github.com/equityscope/newsradar/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Service drives periodic scans of every watchlist group
type Service struct {
	config     *config.Config
	aggregator *aggregator.Service
	cron       *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, agg *aggregator.Service) *Service {
	return &Service{
		config:     cfg,
		aggregator: agg,
		cron:       cron.New(cron.WithSeconds()),
	}
}

// Start begins the scheduled scans
func (s *Service) Start() error {
	var cronExpression string

	switch s.config.ScanSchedule {
	case "hourly":
		cronExpression = "0 0 * * * *"
	case "daily":
		// Run daily at 13:00 UTC, before North American market open
		cronExpression = "0 0 13 * * *"
	default:
		cronExpression = "0 0 13 * * *"
	}

	_, err := s.cron.AddFunc(cronExpression, func() {
		logrus.Info("Starting scheduled scan of all watchlist groups")
		state := models.FilterState{
			Blacklist: s.config.DefaultBlacklist,
			Whitelist: s.config.DefaultWhitelist,
			SortKey:   models.SortNewestFirst,
		}
		if _, err := s.aggregator.Scan(context.Background(), "", state); err != nil {
			logrus.Errorf("Scheduled scan failed: %v", err)
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with %s scan schedule", s.config.ScanSchedule)
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
