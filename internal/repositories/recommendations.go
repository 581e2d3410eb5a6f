package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkravets/reposcout/internal/domain/models"
)

type Recommendations struct {
	db *gorm.DB
}

func NewRecommendationsRepository(db *gorm.DB) *Recommendations {
	return &Recommendations{db: db}
}

// Save upserts the batch: a repository recommended to the same user again
// refreshes its score, reason and creation time instead of duplicating the
// row, so history stays one row per (user, repository).
func (repo *Recommendations) Save(ctx context.Context, recommendations []models.Recommendation) ([]int, error) {

	if len(recommendations) == 0 {
		return []int{}, nil
	}

	err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "full_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"preference_id", "job_run_id", "description", "language",
			"stars", "url", "score", "reason", "created_at",
		}),
	}).Create(&recommendations).Error
	if err != nil {
		return nil, err
	}

	ids := make([]int, len(recommendations))
	for i, recommendation := range recommendations {
		ids[i] = recommendation.ID
	}
	return ids, nil
}

// ListRecentFullNames returns the repositories recommended to the user within
// the window, as a set for dedup lookups.
func (repo *Recommendations) ListRecentFullNames(ctx context.Context, userID int64, window time.Duration) (map[string]struct{}, error) {

	var fullNames []string
	err := repo.db.WithContext(ctx).
		Model(&models.Recommendation{}).
		Where("user_id = ? AND created_at > ?", userID, time.Now().Add(-window)).
		Pluck("full_name", &fullNames).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(fullNames))
	for _, fullName := range fullNames {
		seen[fullName] = struct{}{}
	}
	return seen, nil
}

func (repo *Recommendations) GetByUser(ctx context.Context, userID int64, limit int) ([]models.Recommendation, error) {

	var recommendations []models.Recommendation
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&recommendations).Error
	if err != nil {
		return nil, err
	}
	return recommendations, nil
}

func (repo *Recommendations) RemoveOlderThan(ctx context.Context, expirationTime time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).Delete(&models.Recommendation{}, "created_at < ?", expirationTime)
	return res.RowsAffected, res.Error
}
