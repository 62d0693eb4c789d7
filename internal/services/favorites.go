package services

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/job-finder/internal/clients/jsearch"
	"github.com/maxaizer/job-finder/internal/entities"
	"github.com/maxaizer/job-finder/internal/events"
)

type favoritesRepository interface {
	Add(ctx context.Context, job entities.FavoriteJob) error
	Get(ctx context.Context, jobID string) (*entities.FavoriteJob, error)
	GetAll(ctx context.Context) ([]entities.FavoriteJob, error)
	Delete(ctx context.Context, jobID string) error
}

type Favorites struct {
	repo favoritesRepository
	bus  EventBus.Bus
}

func NewFavorites(repo favoritesRepository, bus EventBus.Bus) *Favorites {
	return &Favorites{repo: repo, bus: bus}
}

func FavoriteFromJob(job jsearch.Job) entities.FavoriteJob {
	return entities.FavoriteJob{
		JobID:        job.JobID,
		JobTitle:     job.JobTitle,
		EmployerName: job.EmployerName,
		EmployerLogo: job.Logo(),
	}
}

func (f *Favorites) Add(ctx context.Context, job entities.FavoriteJob) error {
	if err := f.repo.Add(ctx, job); err != nil {
		return err
	}
	f.publish(events.FavoriteAddedTopic, events.FavoriteAdded{Job: job})
	return nil
}

func (f *Favorites) Remove(ctx context.Context, jobID string) error {
	if err := f.repo.Delete(ctx, jobID); err != nil {
		return err
	}
	f.publish(events.FavoriteRemovedTopic, events.FavoriteRemoved{JobID: jobID})
	return nil
}

func (f *Favorites) Get(ctx context.Context, jobID string) (*entities.FavoriteJob, error) {
	return f.repo.Get(ctx, jobID)
}

func (f *Favorites) List(ctx context.Context) ([]entities.FavoriteJob, error) {
	return f.repo.GetAll(ctx)
}

func (f *Favorites) IsFavorite(ctx context.Context, jobID string) (bool, error) {
	job, err := f.repo.Get(ctx, jobID)
	if err != nil {
		return false, err
	}
	return job != nil, nil
}

// Toggle removes the job from favorites if it is there and adds it otherwise.
// It reports whether the job is a favorite afterwards.
func (f *Favorites) Toggle(ctx context.Context, job entities.FavoriteJob) (bool, error) {
	isFavorite, err := f.IsFavorite(ctx, job.JobID)
	if err != nil {
		return false, err
	}

	if isFavorite {
		return false, f.Remove(ctx, job.JobID)
	}
	return true, f.Add(ctx, job)
}

func (f *Favorites) publish(topic string, event any) {
	if f.bus != nil {
		f.bus.Publish(topic, event)
	}
}
