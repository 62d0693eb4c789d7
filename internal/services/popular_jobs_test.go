package services

import (
	"context"
	"testing"

	"github.com/maxaizer/job-finder/internal/clients/jsearch"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func Test_PopularJobs_InvalidSchedule(t *testing.T) {
	_, err := NewPopularJobs(newTestJobQuery(&mockJobsClient{}),
		[]jsearch.SearchParameters{{Query: "golang"}}, "every sunday")
	assert.Error(t, err)
}

func Test_PopularJobs_NoSearches(t *testing.T) {
	_, err := NewPopularJobs(newTestJobQuery(&mockJobsClient{}),
		[]jsearch.SearchParameters{{Query: ""}}, "@every 1h")
	assert.Error(t, err)
}

func Test_PopularJobs_Get_MergesUniqueJobs(t *testing.T) {
	client := &mockJobsClient{}
	golang := jsearch.SearchParameters{Query: "golang"}
	rust := jsearch.SearchParameters{Query: "rust"}
	broken := jsearch.SearchParameters{Query: "broken"}
	client.On("GetJobs", mock.Anything, golang).Return(listingOf("A1", "B2"), nil).Once()
	client.On("GetJobs", mock.Anything, rust).Return(listingOf("B2", "C3"), nil).Once()
	client.On("GetJobs", mock.Anything, broken).Return(nil, errors.New("boom"))

	popular, err := NewPopularJobs(newTestJobQuery(client),
		[]jsearch.SearchParameters{golang, rust, broken}, "@every 1h")
	require.NoError(t, err)
	defer popular.Stop()

	jobs, err := popular.Get(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.JobID)
	}
	assert.Equal(t, []string{"A1", "B2", "C3"}, ids)
}

func Test_PopularJobs_Refresh_RefetchesEverySearch(t *testing.T) {
	client := &mockJobsClient{}
	golang := jsearch.SearchParameters{Query: "golang"}
	client.On("GetJobs", mock.Anything, golang).Return(listingOf("A1"), nil)

	query := newTestJobQuery(client)
	popular, err := NewPopularJobs(query, []jsearch.SearchParameters{golang}, "@every 1h")
	require.NoError(t, err)
	defer popular.Stop()

	_, err = popular.Get(context.Background())
	require.NoError(t, err)

	popular.refresh()
	client.AssertNumberOfCalls(t, "GetJobs", 2)
}
