package services

import (
	"context"
	"time"

	"github.com/maxaizer/job-finder/internal/clients/jsearch"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type popularQuery interface {
	GetJobs(ctx context.Context, params jsearch.SearchParameters) (*jsearch.SearchResponse, error)
	RefreshJobs(ctx context.Context, params jsearch.SearchParameters) (*jsearch.SearchResponse, error)
}

const refreshTimeout = time.Minute

// PopularJobs keeps the results of a fixed set of searches warm in the query cache.
type PopularJobs struct {
	query    popularQuery
	searches []jsearch.SearchParameters
	cron     *cron.Cron
}

func NewPopularJobs(query popularQuery, searches []jsearch.SearchParameters, schedule string) (*PopularJobs, error) {

	searches = lo.Filter(searches, func(s jsearch.SearchParameters, _ int) bool {
		return s.Query != ""
	})
	if len(searches) == 0 {
		return nil, errors.New("no popular searches configured")
	}

	p := &PopularJobs{
		query:    query,
		searches: searches,
		cron:     cron.New(),
	}

	_, err := p.cron.AddFunc(schedule, p.refresh)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid schedule %q", schedule)
	}

	p.cron.Start()
	log.Infof("popular jobs refresher started, schedule: %s, searches: %d", schedule, len(searches))
	return p, nil
}

func (p *PopularJobs) Stop() {
	<-p.cron.Stop().Done()
}

// Get merges the results of all popular searches, skipping duplicates and failed searches.
func (p *PopularJobs) Get(ctx context.Context) ([]jsearch.Job, error) {

	var jobs []jsearch.Job
	var lastErr error

	for _, search := range p.searches {
		listing, err := p.query.GetJobs(ctx, search)
		if err != nil {
			lastErr = err
			continue
		}
		if listing != nil {
			jobs = append(jobs, listing.Data...)
		}
	}

	if len(jobs) == 0 && lastErr != nil {
		return nil, lastErr
	}

	return lo.UniqBy(jobs, func(job jsearch.Job) string { return job.JobID }), nil
}

func (p *PopularJobs) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	refreshed := 0
	for _, search := range p.searches {
		if _, err := p.query.RefreshJobs(ctx, search); err != nil {
			log.Errorf("failed to refresh popular search %q: %v", search.Query, err)
			continue
		}
		refreshed++
	}
	log.Infof("popular searches refreshed at %v: %d of %d", time.Now(), refreshed, len(p.searches))
}
