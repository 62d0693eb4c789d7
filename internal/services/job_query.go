package services

import (
	"context"
	"encoding/json"

	"github.com/maxaizer/job-finder/internal/clients/jsearch"
	"github.com/maxaizer/job-finder/internal/logger"
	"github.com/maxaizer/job-finder/internal/metrics"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type jobsClient interface {
	GetJobs(ctx context.Context, parameters jsearch.SearchParameters) (*jsearch.SearchResponse, error)
	GetJobDetails(ctx context.Context, jobID string) (*jsearch.JobDetailsResponse, error)
}

// JobQuery serves job searches and job details through a cache keyed by the request parameters.
// Identical requests in flight share one API call.
type JobQuery struct {
	client jobsClient
	cache  QueryCache
	group  singleflight.Group
}

func NewJobQuery(client jobsClient, cache QueryCache) *JobQuery {
	return &JobQuery{client: client, cache: cache}
}

// GetJobs returns nil without calling the API when the query is empty.
func (q *JobQuery) GetJobs(ctx context.Context, params jsearch.SearchParameters) (*jsearch.SearchResponse, error) {
	if params.Query == "" {
		return nil, nil
	}

	var listing jsearch.SearchResponse
	err := q.load(ctx, params.CacheKey(), &listing, func(ctx context.Context) (any, error) {
		return q.client.GetJobs(ctx, params)
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// FetchJobDetails returns nil without calling the API when the id is empty.
func (q *JobQuery) FetchJobDetails(ctx context.Context, jobID string) (*jsearch.JobDetailsResponse, error) {
	if jobID == "" {
		return nil, nil
	}

	var details jsearch.JobDetailsResponse
	err := q.load(ctx, jsearch.DetailsCacheKey(jobID), &details, func(ctx context.Context) (any, error) {
		return q.client.GetJobDetails(ctx, jobID)
	})
	if err != nil {
		return nil, err
	}
	return &details, nil
}

// RefreshJobs drops the cached result for params and fetches it again.
func (q *JobQuery) RefreshJobs(ctx context.Context, params jsearch.SearchParameters) (*jsearch.SearchResponse, error) {
	if params.Query == "" {
		return nil, nil
	}
	q.invalidate(ctx, params.CacheKey())
	return q.GetJobs(ctx, params)
}

func (q *JobQuery) invalidate(ctx context.Context, key string) {
	if err := q.cache.Delete(ctx, key); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCache).Errorf("failed to invalidate %s: %v", key, err)
	}
}

func (q *JobQuery) load(ctx context.Context, key string, dst any, fetch func(ctx context.Context) (any, error)) error {

	data, found, err := q.cache.Get(ctx, key)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCache).Errorf("failed to read %s from cache: %v", key, err)
	}

	if found {
		if err = json.Unmarshal(data, dst); err == nil {
			metrics.CacheLookupsCounter.WithLabelValues("hit").Inc()
			return nil
		}
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCache).Errorf("failed to decode cached %s: %v", key, err)
	}
	metrics.CacheLookupsCounter.WithLabelValues("miss").Inc()

	result, err, shared := q.group.Do(key, func() (any, error) {
		value, err := fetch(ctx)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeJSearchAPI).Errorf("failed to fetch %s: %v", key, err)
			return nil, err
		}

		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}

		if err := q.cache.Set(ctx, key, encoded); err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeCache).Errorf("failed to add %s to cache: %v", key, err)
		}
		return encoded, nil
	})
	if err != nil {
		return err
	}
	if shared {
		log.Debugf("request %s was shared between callers", key)
	}

	return json.Unmarshal(result.([]byte), dst)
}
