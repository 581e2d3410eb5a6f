package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/mkravets/reposcout/internal/domain/models"
)

const preferencesPageSize = 100

type schedulablePreferences interface {
	GetEnabled(ctx context.Context, limit int, offset int) ([]models.Preference, error)
}

type runTrigger interface {
	TriggerRun(ctx context.Context, userID int64, preferenceID int, opts RunOptions) (*models.JobRun, error)
}

type SchedulerConfig struct {
	DefaultCron string
}

// Scheduler fires a recommendation run for every enabled preference on its
// cron expression. Preferences without an expression fall back to the
// configured default.
type Scheduler struct {
	preferences schedulablePreferences
	runner      runTrigger
	cron        *cron.Cron
	cfg         SchedulerConfig
}

func NewScheduler(preferences schedulablePreferences, runner runTrigger, cfg SchedulerConfig) (*Scheduler, error) {

	if cfg.DefaultCron == "" {
		return nil, errors.New("default cron expression is empty")
	}
	if _, err := cron.ParseStandard(cfg.DefaultCron); err != nil {
		return nil, errors.Wrap(err, "parse default cron expression")
	}

	return &Scheduler{
		preferences: preferences,
		runner:      runner,
		cron:        cron.New(),
		cfg:         cfg,
	}, nil
}

// Start registers all currently enabled preferences and starts the cron loop.
// Preferences created afterwards are picked up by the next Start after a
// restart; there is no live reload.
func (s *Scheduler) Start(ctx context.Context) error {

	registered := 0
	for offset := 0; ; offset += preferencesPageSize {

		page, err := s.preferences.GetEnabled(ctx, preferencesPageSize, offset)
		if err != nil {
			return errors.Wrap(err, "load enabled preferences")
		}

		for _, preference := range page {
			if err := s.register(preference); err != nil {
				log.Errorf("failed to schedule preference %v: %v", preference.ID, err)
				continue
			}
			registered++
		}

		if len(page) < preferencesPageSize {
			break
		}
	}

	s.cron.Start()
	log.Infof("scheduler started, %d preferences registered", registered)
	return nil
}

func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		log.Warn("scheduler stop timed out waiting for running jobs")
	}
}

func (s *Scheduler) register(preference models.Preference) error {

	expression := preference.RunCron
	if expression == "" {
		expression = s.cfg.DefaultCron
	}

	userID := preference.UserID
	preferenceID := preference.ID

	_, err := s.cron.AddFunc(expression, func() {
		_, err := s.runner.TriggerRun(context.Background(), userID, preferenceID, RunOptions{})
		switch {
		case errors.Is(err, ErrConcurrentRun):
			log.Warnf("skipping scheduled run for preference %v: previous run still active", preferenceID)
		case errors.Is(err, ErrPreferenceDisabled):
			log.Infof("skipping scheduled run for preference %v: disabled", preferenceID)
		case err != nil:
			log.Errorf("scheduled run for preference %v failed to start: %v", preferenceID, err)
		}
	})
	return err
}
