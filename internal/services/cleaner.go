package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/mkravets/reposcout/internal/logger"
)

type RecommendationCleanupRepository interface {
	RemoveOlderThan(ctx context.Context, expirationTime time.Time) (int64, error)
}

// RecommendationsCleaner prunes recommendations past the retention period
// every night. Pruned entries also leave the dedup history, so a repository
// can be recommended again after retention expires.
type RecommendationsCleaner struct {
	recommendations RecommendationCleanupRepository
	cron            *cron.Cron
	retentionInDays int
}

func NewRecommendationsCleaner(recommendations RecommendationCleanupRepository, retentionInDays int) (*RecommendationsCleaner, error) {

	if retentionInDays <= 0 {
		return nil, errors.New("retention in days must be greater than zero")
	}

	c := &RecommendationsCleaner{
		recommendations: recommendations,
		cron:            cron.New(),
		retentionInDays: retentionInDays,
	}

	_, err := c.cron.AddFunc("0 0 * * *", c.cleanOldRecommendations)
	if err != nil {
		return nil, err
	}

	c.cron.Start()
	log.Infof("recommendations cleaner started, retention in days: %d", c.retentionInDays)
	return c, nil
}

func (c *RecommendationsCleaner) Stop() {
	c.cron.Stop()
}

func (c *RecommendationsCleaner) cleanOldRecommendations() {
	expirationTime := time.Now().Add(-time.Duration(c.retentionInDays) * 24 * time.Hour)
	rowsAffected, err := c.recommendations.RemoveOlderThan(context.Background(), expirationTime)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to clean old recommendations: %v", err)
	} else {
		log.Infof("old recommendations cleaned, affected rows: %v", rowsAffected)
	}
}
