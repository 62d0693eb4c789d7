package repositories

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/maxaizer/job-finder/internal/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, wrapError("open", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, wrapError("open", err)
	}
	// single connection: sqlite serializes writers and every statement sees the same schema
	sqlDB.SetMaxOpenConns(1)

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	if err := c.DB.AutoMigrate(entities.FavoriteJob{}); err != nil {
		return wrapError("migrate", fmt.Errorf("failed to migrate FavoriteJob entity: %w", err))
	}

	if err := c.DB.AutoMigrate(entities.StoredData{}); err != nil {
		return wrapError("migrate", fmt.Errorf("failed to migrate StoredData entity: %w", err))
	}

	return nil
}

func (c *DbContext) Ping(ctx context.Context) error {
	db, err := c.DB.DB()
	if err != nil {
		return wrapError("ping", err)
	}
	return wrapError("ping", db.PingContext(ctx))
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
