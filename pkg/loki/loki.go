package loki

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var ErrStopped = errors.New("loki pusher is stopped")

type Logger interface {
	Error(msg string, args ...any)
}

type Config struct {

	// TenantKey and TenantValue form an optional tenant header for multi-tenant Loki setups.
	TenantKey   string
	TenantValue string

	// Url of the push endpoint, e.g. https://example-prod.grafana.net/loki/api/v1/push
	Url string `validate:"required,url"`

	BatchMaxSize int           `validate:"gte=1"`
	BatchMaxWait time.Duration `validate:"gte=1"`

	// Labels are attached to every stream.
	Labels map[string]string

	// Basic auth, both must be set to be used.
	Username string
	Password string

	Timeout time.Duration
}

func (cfg *Config) setDefaults() {
	if cfg.BatchMaxSize == 0 {
		cfg.BatchMaxSize = 500
	}
	if cfg.BatchMaxWait == 0 {
		cfg.BatchMaxWait = 5 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Labels == nil {
		cfg.Labels = map[string]string{}
	}
}

// LogEntry is one log line. Level and ErrorType become stream labels, the rest is encoded as JSON.
type LogEntry struct {
	Level     string            `json:"level"`
	Message   string            `json:"msg"`
	Caller    string            `json:"caller,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	ErrorType string            `json:"-"`
}

type Pusher struct {
	config *Config
	ctx    context.Context
	cancel context.CancelFunc
	client *http.Client
	logger Logger

	entries  chan LogEntry
	quit     chan struct{}
	stopOnce sync.Once
	done     sync.WaitGroup

	batch []batchedEntry
}

type batchedEntry struct {
	labels map[string]string
	value  []string
}

type pushRequest struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

func New(ctx context.Context, cfg Config, logger Logger) (*Pusher, error) {

	cfg.setDefaults()
	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid loki config")
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pusher{
		config:  &cfg,
		ctx:     ctx,
		cancel:  cancel,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		entries: make(chan LogEntry, cfg.BatchMaxSize),
		quit:    make(chan struct{}),
		batch:   make([]batchedEntry, 0, cfg.BatchMaxSize),
	}

	p.done.Add(1)
	go p.run()
	return p, nil
}

// Push queues the entry for the next batch. It blocks while the queue is full.
func (p *Pusher) Push(e LogEntry) error {
	select {
	case <-p.quit:
		return ErrStopped
	default:
	}

	select {
	case p.entries <- e:
		return nil
	case <-p.quit:
		return ErrStopped
	case <-p.ctx.Done():
		return ErrStopped
	}
}

// Stop flushes the queued entries and waits for the last batch to be sent.
func (p *Pusher) Stop() {
	p.stopOnce.Do(func() {
		close(p.quit)
		p.done.Wait()
		p.cancel()
	})
}

func (p *Pusher) run() {
	defer p.done.Done()

	ticker := time.NewTicker(p.config.BatchMaxWait)
	defer ticker.Stop()

	for {
		select {
		case entry := <-p.entries:
			p.add(entry)
		case <-ticker.C:
			p.flush()
		case <-p.quit:
			p.drain()
			p.flush()
			return
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pusher) drain() {
	for {
		select {
		case entry := <-p.entries:
			p.add(entry)
		default:
			return
		}
	}
}

func (p *Pusher) add(entry LogEntry) {
	line, err := json.Marshal(entry)
	if err != nil {
		p.logger.Error("failed to encode log entry", "error", err)
		return
	}

	labels := map[string]string{"level": entry.Level}
	if entry.ErrorType != "" {
		labels["error_type"] = entry.ErrorType
	}

	p.batch = append(p.batch, batchedEntry{
		labels: labels,
		value:  []string{strconv.FormatInt(time.Now().UnixNano(), 10), string(line)},
	})
	if len(p.batch) >= p.config.BatchMaxSize {
		p.flush()
	}
}

func (p *Pusher) flush() {
	if len(p.batch) == 0 {
		return
	}
	if err := p.send(p.streams()); err != nil {
		p.logger.Error("failed to send logs", "error", err)
	}
	p.batch = p.batch[:0]
}

// streams groups the batch by label set, keeping the order of entries inside a stream.
func (p *Pusher) streams() []stream {
	var result []stream
	index := map[string]int{}

	for _, entry := range p.batch {
		labels := make(map[string]string, len(p.config.Labels)+len(entry.labels))
		for k, v := range p.config.Labels {
			labels[k] = v
		}
		for k, v := range entry.labels {
			labels[k] = v
		}

		key := entry.labels["level"] + "|" + entry.labels["error_type"]
		i, ok := index[key]
		if !ok {
			i = len(result)
			index[key] = i
			result = append(result, stream{Stream: labels})
		}
		result[i].Values = append(result[i].Values, entry.value)
	}
	return result
}

func (p *Pusher) send(streams []stream) error {
	buf := &bytes.Buffer{}
	gz := gzip.NewWriter(buf)

	if err := json.NewEncoder(gz).Encode(pushRequest{Streams: streams}); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}

	// the parent context may already be cancelled while the final batch is flushed
	ctx, cancel := context.WithTimeout(context.WithoutCancel(p.ctx), p.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Url, buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")

	if p.config.TenantKey != "" {
		req.Header.Set(p.config.TenantKey, p.config.TenantValue)
	}
	if p.config.Username != "" && p.config.Password != "" {
		req.SetBasicAuth(p.config.Username, p.config.Password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected response code from Loki: %s, body: %s", resp.Status, string(body))
	}

	return nil
}
