package services

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/job-finder/internal/events"
	"github.com/maxaizer/job-finder/internal/logger"
	"github.com/maxaizer/job-finder/internal/metrics"
	log "github.com/sirupsen/logrus"
)

type favoritesCounter interface {
	Count(ctx context.Context) (int64, error)
}

// FavoritesTracker keeps the favorites gauge in line with the store.
type FavoritesTracker struct {
	counter favoritesCounter
}

func NewFavoritesTracker(ctx context.Context, bus EventBus.Bus, counter favoritesCounter) (*FavoritesTracker, error) {
	t := &FavoritesTracker{counter: counter}
	t.update(ctx)

	if err := bus.Subscribe(events.FavoriteAddedTopic, t.onFavoriteAdded); err != nil {
		return nil, err
	}
	if err := bus.Subscribe(events.FavoriteRemovedTopic, t.onFavoriteRemoved); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *FavoritesTracker) onFavoriteAdded(_ events.FavoriteAdded) {
	t.update(context.Background())
}

func (t *FavoritesTracker) onFavoriteRemoved(_ events.FavoriteRemoved) {
	t.update(context.Background())
}

func (t *FavoritesTracker) update(ctx context.Context) {
	count, err := t.counter.Count(ctx)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to count favorites: %v", err)
		return
	}
	metrics.FavoritesGauge.Set(float64(count))
}
