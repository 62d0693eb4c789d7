package events

import "github.com/maxaizer/job-finder/internal/entities"

var FavoriteAddedTopic = "FavoriteAddedEvent"
var FavoriteRemovedTopic = "FavoriteRemovedEvent"

type FavoriteAdded struct {
	Job entities.FavoriteJob
}

type FavoriteRemoved struct {
	JobID string
}
