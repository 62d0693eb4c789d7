package repositories

import (
	"context"

	"github.com/maxaizer/job-finder/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Favorites struct {
	db *gorm.DB
}

func NewFavoritesRepository(db *gorm.DB) *Favorites {
	return &Favorites{db: db}
}

func (repo *Favorites) Add(ctx context.Context, job entities.FavoriteJob) error {
	if err := job.Validate(); err != nil {
		return &PersistenceError{Op: "add", Kind: KindConstraint, Err: err}
	}

	err := repo.db.WithContext(ctx).Create(&job).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &PersistenceError{Op: "add", Kind: KindConstraint, Err: errors.Wrap(ErrDuplicateJob, job.JobID)}
	}
	if err != nil && classify(err) == KindConstraint {
		// driver without error translation
		return &PersistenceError{Op: "add", Kind: KindConstraint, Err: errors.Wrap(ErrDuplicateJob, err.Error())}
	}
	return wrapError("add", err)
}

// Get returns nil without error when the job is not in favorites.
func (repo *Favorites) Get(ctx context.Context, jobID string) (*entities.FavoriteJob, error) {
	var jobs []entities.FavoriteJob
	if err := repo.db.WithContext(ctx).Where("job_id = ?", jobID).Limit(1).Find(&jobs).Error; err != nil {
		return nil, wrapError("get", err)
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	return &jobs[0], nil
}

func (repo *Favorites) GetAll(ctx context.Context) ([]entities.FavoriteJob, error) {
	jobs := make([]entities.FavoriteJob, 0)
	if err := repo.db.WithContext(ctx).Find(&jobs).Error; err != nil {
		return nil, wrapError("get all", err)
	}
	return jobs, nil
}

func (repo *Favorites) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&entities.FavoriteJob{}).Count(&count).Error; err != nil {
		return 0, wrapError("count", err)
	}
	return count, nil
}

func (repo *Favorites) Delete(ctx context.Context, jobID string) error {
	return wrapError("delete", repo.db.WithContext(ctx).Delete(&entities.FavoriteJob{}, "job_id = ?", jobID).Error)
}

// Clear drops the favorites table and creates it again. All favorites are lost.
func (repo *Favorites) Clear(ctx context.Context) error {
	migrator := repo.db.WithContext(ctx).Migrator()
	if err := migrator.DropTable(&entities.FavoriteJob{}); err != nil {
		return wrapError("clear", err)
	}
	return wrapError("clear", migrator.CreateTable(&entities.FavoriteJob{}))
}
