package repositories

import (
	"context"

	"github.com/maxaizer/job-finder/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Data stores opaque blobs by key, e.g. bot state between restarts.
type Data struct {
	db *gorm.DB
}

func NewDataRepository(db *gorm.DB) *Data {
	return &Data{db: db}
}

// Save replaces the value stored under id.
func (repo *Data) Save(ctx context.Context, id string, data []byte) error {
	return wrapError("save data", repo.db.WithContext(ctx).Save(&entities.StoredData{
		ID:    id,
		Value: data,
	}).Error)
}

// Load returns nil without error when nothing is stored under id.
func (repo *Data) Load(ctx context.Context, id string) ([]byte, error) {
	value, err := load(repo.db.WithContext(ctx), id)
	return value, wrapError("load data", err)
}

// LoadAndRemove reads and deletes the value in one transaction, so it is consumed at most once.
func (repo *Data) LoadAndRemove(ctx context.Context, id string) ([]byte, error) {
	var value []byte

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if value, err = load(tx, id); err != nil || value == nil {
			return err
		}
		return tx.Delete(&entities.StoredData{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, wrapError("load and remove data", err)
	}
	return value, nil
}

func (repo *Data) Remove(ctx context.Context, id string) error {
	return wrapError("remove data", repo.db.WithContext(ctx).Delete(&entities.StoredData{}, "id = ?", id).Error)
}

func load(db *gorm.DB, id string) ([]byte, error) {
	data := &entities.StoredData{}
	err := db.First(data, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data.Value, nil
}
