package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/mkravets/reposcout/internal/domain/models"
)

type Runs struct {
	db *gorm.DB
}

func NewRunsRepository(db *gorm.DB) *Runs {
	return &Runs{db: db}
}

func (repo *Runs) Create(ctx context.Context, run *models.JobRun) error {
	return repo.db.WithContext(ctx).Create(run).Error
}

// Update records the run's current state; called once per status transition
// so a run never disappears without a persisted outcome.
func (repo *Runs) Update(ctx context.Context, run *models.JobRun) error {
	return repo.db.WithContext(ctx).Save(run).Error
}

func (repo *Runs) GetByID(ctx context.Context, id int) (*models.JobRun, error) {

	var run models.JobRun
	if err := repo.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (repo *Runs) GetByUser(ctx context.Context, userID int64, limit int) ([]models.JobRun, error) {

	var runs []models.JobRun
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("triggered_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}
