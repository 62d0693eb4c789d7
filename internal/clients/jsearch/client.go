package jsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/maxaizer/job-finder/internal/metrics"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://jsearch.p.rapidapi.com"
	DefaultHost    = "jsearch.p.rapidapi.com"

	keyHeader  = "X-RapidAPI-Key"
	hostHeader = "X-RapidAPI-Host"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Credentials struct {
	Key  string
	Host string
}

type Client struct {
	httpClient  HTTPClient
	baseURL     string
	credentials Credentials
	rateLimiter *rate.Limiter
	maxAttempts int
	retryDelay  time.Duration
}

func NewClient(baseURL string, credentials Credentials, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if credentials.Host == "" {
		credentials.Host = DefaultHost
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		credentials: credentials,
		maxAttempts: 1,
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

// SetRetries makes temporary failures repeat up to maxAttempts times in total.
func (c *Client) SetRetries(maxAttempts int, delay time.Duration) {
	c.maxAttempts = max(maxAttempts, 1)
	c.retryDelay = delay
}

func (c *Client) GetJobs(ctx context.Context, parameters SearchParameters) (*SearchResponse, error) {

	if err := parameters.Validate(); err != nil {
		return nil, &FetchError{Kind: KindRequest, Err: errors.Wrap(err, "invalid parameters")}
	}

	body, err := c.get(ctx, "search", parameters.ToUrlParams())
	if err != nil {
		return nil, err
	}

	var response SearchResponse
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&response); err != nil {
		return nil, &FetchError{Kind: KindDecode, Err: fmt.Errorf("error decoding JSON response: %w", err)}
	}

	return &response, nil
}

func (c *Client) GetJobDetails(ctx context.Context, jobID string) (*JobDetailsResponse, error) {

	if jobID == "" {
		return nil, &FetchError{Kind: KindRequest, Err: errors.New("empty job id")}
	}

	body, err := c.get(ctx, "job-details", url.Values{"job_id": []string{jobID}})
	if err != nil {
		return nil, err
	}

	var response JobDetailsResponse
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&response); err != nil {
		return nil, &FetchError{Kind: KindDecode, Err: fmt.Errorf("error decoding JSON response: %w", err)}
	}

	return &response, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {

	apiURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	var body []byte
	var err error

	_, _, _ = lo.AttemptWhileWithDelay(c.maxAttempts, c.retryDelay, func(i int, _ time.Duration) (error, bool) {
		if i > 0 {
			log.Warnf("jsearch %s request failed: %v, retrying...", endpoint, err)
		}
		body, err = c.sendRequest(ctx, endpoint, apiURL)
		return err, IsTemporary(err) && ctx.Err() == nil
	})

	return body, err
}

func (c *Client) sendRequest(ctx context.Context, endpoint string, apiURL string) ([]byte, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, transportError(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindRequest, Err: fmt.Errorf("error creating request: %w", err)}
	}
	req.Header.Set(keyHeader, c.credentials.Key)
	req.Header.Set(hostHeader, c.credentials.Host)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestsCounter.WithLabelValues(endpoint, "error").Inc()
		return nil, transportError(fmt.Errorf("error sending request: %w", err))
	}
	defer resp.Body.Close()

	metrics.APIRequestsCounter.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	return c.handleResponse(resp)
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(fmt.Errorf("error reading response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("request failed, body: %v", string(body)),
		}
	}

	return body, nil
}
