package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/mkravets/reposcout/internal/domain/models"
)

type Preferences struct {
	db *gorm.DB
}

func NewPreferencesRepository(db *gorm.DB) *Preferences {
	return &Preferences{db: db}
}

func (repo *Preferences) Add(ctx context.Context, preference *models.Preference) error {
	if err := preference.Validate(); err != nil {
		return err
	}
	return repo.db.WithContext(ctx).Create(preference).Error
}

func (repo *Preferences) GetByID(ctx context.Context, id int) (*models.Preference, error) {

	var preference models.Preference
	if err := repo.db.WithContext(ctx).First(&preference, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &preference, nil
}

func (repo *Preferences) GetEnabled(ctx context.Context, limit int, offset int) ([]models.Preference, error) {

	var preferences []models.Preference
	if err := repo.db.WithContext(ctx).
		Where("enabled = ?", true).
		Limit(limit).
		Offset(offset).
		Find(&preferences).Error; err != nil {
		return nil, err
	}
	return preferences, nil
}
