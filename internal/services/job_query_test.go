package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/maxaizer/job-finder/internal/clients/jsearch"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockJobsClient struct {
	mock.Mock
}

func (m *mockJobsClient) GetJobs(ctx context.Context, parameters jsearch.SearchParameters) (*jsearch.SearchResponse, error) {
	args := m.Called(ctx, parameters)
	resp, _ := args.Get(0).(*jsearch.SearchResponse)
	return resp, args.Error(1)
}

func (m *mockJobsClient) GetJobDetails(ctx context.Context, jobID string) (*jsearch.JobDetailsResponse, error) {
	args := m.Called(ctx, jobID)
	resp, _ := args.Get(0).(*jsearch.JobDetailsResponse)
	return resp, args.Error(1)
}

func listingOf(ids ...string) *jsearch.SearchResponse {
	listing := &jsearch.SearchResponse{Status: "OK"}
	for _, id := range ids {
		listing.Data = append(listing.Data, jsearch.Job{JobID: id, JobTitle: "title " + id, EmployerName: "Acme"})
	}
	return listing
}

func newTestJobQuery(client jobsClient) *JobQuery {
	return NewJobQuery(client, NewMemoryCache(time.Minute, 2*time.Minute))
}

func Test_JobQuery_EmptyQuery_NoRequest(t *testing.T) {
	client := &mockJobsClient{}
	query := newTestJobQuery(client)

	listing, err := query.GetJobs(context.Background(), jsearch.SearchParameters{Query: "", EmploymentTypes: jsearch.FullTime})
	assert.NoError(t, err)
	assert.Nil(t, listing)

	details, err := query.FetchJobDetails(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, details)

	client.AssertNotCalled(t, "GetJobs", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "GetJobDetails", mock.Anything, mock.Anything)
}

func Test_JobQuery_IdenticalParams_ServedFromCache(t *testing.T) {
	client := &mockJobsClient{}
	params := jsearch.SearchParameters{Query: "nurse, USA", EmploymentTypes: jsearch.PartTime}
	client.On("GetJobs", mock.Anything, params).Return(listingOf("A1", "B2"), nil).Once()

	query := newTestJobQuery(client)

	first, err := query.GetJobs(context.Background(), params)
	require.NoError(t, err)
	second, err := query.GetJobs(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, listingOf("A1", "B2"), second)
	client.AssertNumberOfCalls(t, "GetJobs", 1)
}

func Test_JobQuery_DifferentPages_AreCachedSeparately(t *testing.T) {
	client := &mockJobsClient{}
	params := jsearch.SearchParameters{Query: "golang"}
	next, err := params.NextPage()
	require.NoError(t, err)

	client.On("GetJobs", mock.Anything, params).Return(listingOf("A1"), nil).Once()
	client.On("GetJobs", mock.Anything, next).Return(listingOf("B2"), nil).Once()

	query := newTestJobQuery(client)

	first, err := query.GetJobs(context.Background(), params)
	require.NoError(t, err)
	second, err := query.GetJobs(context.Background(), next)
	require.NoError(t, err)

	assert.Equal(t, "A1", first.Data[0].JobID)
	assert.Equal(t, "B2", second.Data[0].JobID)
	client.AssertExpectations(t)
}

func Test_JobQuery_FailedFetch_IsNotCached(t *testing.T) {
	client := &mockJobsClient{}
	params := jsearch.SearchParameters{Query: "golang"}
	fetchErr := &jsearch.FetchError{Kind: jsearch.KindStatus, StatusCode: 500, Err: errors.New("boom")}
	client.On("GetJobs", mock.Anything, params).Return(nil, fetchErr).Once()
	client.On("GetJobs", mock.Anything, params).Return(listingOf("A1"), nil).Once()

	query := newTestJobQuery(client)

	_, err := query.GetJobs(context.Background(), params)
	assert.True(t, errors.Is(err, jsearch.ErrFetch))

	listing, err := query.GetJobs(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, listing.Data, 1)
}

func Test_JobQuery_FetchJobDetails_Cached(t *testing.T) {
	client := &mockJobsClient{}
	details := &jsearch.JobDetailsResponse{Status: "OK", Data: []jsearch.JobDetails{{Job: jsearch.Job{JobID: "A1"}}}}
	client.On("GetJobDetails", mock.Anything, "A1").Return(details, nil).Once()

	query := newTestJobQuery(client)

	for i := 0; i < 3; i++ {
		got, err := query.FetchJobDetails(context.Background(), "A1")
		require.NoError(t, err)
		job, ok := got.Job()
		require.True(t, ok)
		assert.Equal(t, "A1", job.JobID)
	}
	client.AssertNumberOfCalls(t, "GetJobDetails", 1)
}

func Test_JobQuery_RefreshJobs_BypassesCache(t *testing.T) {
	client := &mockJobsClient{}
	params := jsearch.SearchParameters{Query: "golang"}
	client.On("GetJobs", mock.Anything, params).Return(listingOf("A1"), nil).Once()
	client.On("GetJobs", mock.Anything, params).Return(listingOf("A1", "B2"), nil).Once()

	query := newTestJobQuery(client)

	_, err := query.GetJobs(context.Background(), params)
	require.NoError(t, err)

	refreshed, err := query.RefreshJobs(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, refreshed.Data, 2)

	cached, err := query.GetJobs(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, cached.Data, 2)
	client.AssertNumberOfCalls(t, "GetJobs", 2)
}

func Test_JobQuery_ConcurrentIdenticalRequests_ShareOneCall(t *testing.T) {
	client := &mockJobsClient{}
	params := jsearch.SearchParameters{Query: "golang"}
	client.On("GetJobs", mock.Anything, params).
		After(100*time.Millisecond).
		Return(listingOf("A1"), nil)

	query := newTestJobQuery(client)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listing, err := query.GetJobs(context.Background(), params)
			assert.NoError(t, err)
			assert.Len(t, listing.Data, 1)
		}()
	}
	wg.Wait()

	client.AssertNumberOfCalls(t, "GetJobs", 1)
}
