package repositories

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mkravets/reposcout/internal/domain/models"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	err := c.DB.AutoMigrate(models.Preference{})
	if err != nil {
		return fmt.Errorf("failed to migrate Preference entity: %w", err)
	}

	err = c.DB.AutoMigrate(models.Recommendation{})
	if err != nil {
		return fmt.Errorf("failed to migrate Recommendation entity: %w", err)
	}

	err = c.DB.AutoMigrate(models.JobRun{})
	if err != nil {
		return fmt.Errorf("failed to migrate JobRun entity: %w", err)
	}

	if err = c.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_user_repo ON recommendations (user_id, full_name); " +
		"CREATE INDEX IF NOT EXISTS idx_recommendations_created_at ON recommendations (created_at);").
		Error; err != nil {
		return fmt.Errorf("failed to create recommendation indexes: %w", err)
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
