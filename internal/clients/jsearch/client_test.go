package jsearch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

func fileResponse(t *testing.T, status int, path string) *http.Response {
	file, err := os.ReadFile(path)
	require.NoError(t, err)

	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBuffer(file)),
	}
}

func textResponse(status int, text string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(text)),
	}
}

func hasCredentials(req *http.Request) bool {
	return req.Header.Get("X-RapidAPI-Key") == "secret" &&
		req.Header.Get("X-RapidAPI-Host") == "jsearch.p.rapidapi.com"
}

func newTestClient(httpClient HTTPClient) *Client {
	client := NewClient("", Credentials{Key: "secret"}, time.Second)
	client.SetHTTPClient(httpClient)
	return client
}

func Test_JSearchClient_GetJobs_ShouldBeSuccessful(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodGet && hasCredentials(req) &&
			req.URL.String() == "https://jsearch.p.rapidapi.com/search?employment_types=PARTTIME&query=nurse%2C+USA"
	})).Return(fileResponse(t, http.StatusOK, "testdata/search.json"), nil).Once()

	client := newTestClient(mockClient)

	listing, err := client.GetJobs(context.Background(), SearchParameters{
		Query:           "nurse, USA",
		EmploymentTypes: PartTime,
	})
	require.NoError(t, err)
	mockClient.AssertExpectations(t)

	assert.Equal("OK", listing.Status)
	require.Len(t, listing.Data, 2)

	first := listing.Data[0]
	assert.Equal("qW1s2dF3gH4jK5lZ==", first.JobID)
	assert.Equal("Registered Nurse - Part Time", first.JobTitle)
	assert.Equal("https://example.com/general-hospital.png", first.Logo())
	assert.Equal([]string{"Active RN license", "BLS certification"}, first.JobHighlights.Qualifications)
	require.NotNil(t, first.JobMinSalary)
	assert.Equal(38.5, *first.JobMinSalary)
	require.NotNil(t, first.JobRequiredExperience.RequiredExperienceInMonths)
	assert.Equal(24, *first.JobRequiredExperience.RequiredExperienceInMonths)

	second := listing.Data[1]
	assert.Equal("", second.Logo())
	assert.Nil(second.JobMinSalary)
	assert.Nil(second.JobRequiredExperience.RequiredExperienceInMonths)
	assert.Equal("https://careers.google.com/jobs/results", second.ApplyURL())
}

func Test_JSearchClient_GetJobDetails_ShouldBeSuccessful(t *testing.T) {

	assert := assert.New(t)
	jobID := "qW1s2dF3gH4jK5lZ=="

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return hasCredentials(req) &&
			req.URL.String() == "https://jsearch.p.rapidapi.com/job-details?job_id=qW1s2dF3gH4jK5lZ%3D%3D"
	})).Return(fileResponse(t, http.StatusOK, "testdata/job_details.json"), nil).Once()

	client := newTestClient(mockClient)

	details, err := client.GetJobDetails(context.Background(), jobID)
	require.NoError(t, err)

	job, ok := details.Job()
	require.True(t, ok)
	assert.Equal(jobID, job.JobID)
	assert.Equal("General Hospital", job.EmployerName)
	assert.Equal([]string{"Patient care", "Medication administration"}, job.JobRequiredSkills)
	require.Len(t, job.EmployerReviews, 1)
	assert.Equal(812, job.EmployerReviews[0].ReviewCount)
	require.Len(t, job.ApplyOptions, 1)
	assert.Equal("LinkedIn", job.ApplyOptions[0].Publisher)
}

func Test_JSearchClient_NonSuccessStatus_ReturnsStatusError(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(textResponse(http.StatusForbidden, `{"message":"not subscribed"}`), nil)

	client := newTestClient(mockClient)

	_, err := client.GetJobs(context.Background(), SearchParameters{Query: "golang"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetch))

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, KindStatus, fetchErr.Kind)
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
	assert.False(t, IsTemporary(err))
}

func Test_JSearchClient_MalformedPayload_ReturnsDecodeError(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(textResponse(http.StatusOK, `{"data": [`), nil)

	client := newTestClient(mockClient)

	_, err := client.GetJobDetails(context.Background(), "id")

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, KindDecode, fetchErr.Kind)
}

func Test_JSearchClient_TransportFailure_IsTemporary(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(nil, errors.New("connection refused"))

	client := newTestClient(mockClient)

	_, err := client.GetJobs(context.Background(), SearchParameters{Query: "golang"})

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, KindTransport, fetchErr.Kind)
	assert.True(t, IsTemporary(err))
}

func Test_JSearchClient_DeadlineExceeded_IsTimeout(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(nil, context.DeadlineExceeded)

	client := newTestClient(mockClient)

	_, err := client.GetJobs(context.Background(), SearchParameters{Query: "golang"})

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, KindTimeout, fetchErr.Kind)
}

func Test_JSearchClient_TemporaryFailure_IsRetried(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(textResponse(http.StatusServiceUnavailable, "busy"), nil).Once()
	mockClient.On("Do", mock.Anything).Return(fileResponse(t, http.StatusOK, "testdata/search.json"), nil).Once()

	client := newTestClient(mockClient)
	client.SetRetries(3, time.Millisecond)

	listing, err := client.GetJobs(context.Background(), SearchParameters{Query: "golang"})
	require.NoError(t, err)
	assert.Len(t, listing.Data, 2)
	mockClient.AssertNumberOfCalls(t, "Do", 2)
}

func Test_JSearchClient_PermanentFailure_IsNotRetried(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(textResponse(http.StatusBadRequest, "bad"), nil)

	client := newTestClient(mockClient)
	client.SetRetries(3, time.Millisecond)

	_, err := client.GetJobs(context.Background(), SearchParameters{Query: "golang"})
	assert.Error(t, err)
	mockClient.AssertNumberOfCalls(t, "Do", 1)
}

func Test_JSearchClient_InvalidParameters_NoRequest(t *testing.T) {

	mockClient := &mockHTTPClient{}
	client := newTestClient(mockClient)

	_, err := client.GetJobs(context.Background(), SearchParameters{Query: "golang", EmploymentTypes: "WEEKENDS"})

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, KindRequest, fetchErr.Kind)
	mockClient.AssertNotCalled(t, "Do", mock.Anything)
}
