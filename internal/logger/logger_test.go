package logger

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/maxaizer/job-finder/internal/metrics"
	"github.com/maxaizer/job-finder/pkg/loki"
	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_PrometheusHook_CountsEntries(t *testing.T) {
	logger := log.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(&prometheusHook{})

	dbErrors := func() float64 { return testutil.ToFloat64(metrics.ErrorsCounter.WithLabelValues(ErrorTypeDb)) }
	unknownErrors := func() float64 { return testutil.ToFloat64(metrics.ErrorsCounter.WithLabelValues(unknownErrorType)) }
	warnings := func() float64 { return testutil.ToFloat64(metrics.LogEntriesCounter.WithLabelValues("warning")) }

	beforeDb, beforeUnknown, beforeWarnings := dbErrors(), unknownErrors(), warnings()

	logger.WithField(ErrorTypeField, ErrorTypeDb).Error("db is down")
	logger.WithField(ErrorTypeField, ErrorTypeDb).Warn("db is slow")
	logger.Error("no type")
	logger.Info("not counted")

	assert.Equal(t, beforeDb+1, dbErrors())
	assert.Equal(t, beforeUnknown+1, unknownErrors())
	assert.Equal(t, beforeWarnings+1, warnings())
}

func Test_LokiHook_LevelsUpToMinimum(t *testing.T) {
	hook := &lokiHook{minLevel: log.WarnLevel}
	assert.Equal(t, []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel, log.WarnLevel}, hook.Levels())
}

func Test_LokiHook_PushesEntries(t *testing.T) {
	var mu sync.Mutex
	var bodies []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gz, err := gzip.NewReader(r.Body)
		if err == nil {
			data, _ := io.ReadAll(gz)
			mu.Lock()
			bodies = append(bodies, string(data))
			mu.Unlock()
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	pusher, err := loki.New(context.Background(), loki.Config{Url: server.URL}, &logrusAdapter{})
	require.NoError(t, err)

	logger := log.New()
	logger.SetOutput(&bytes.Buffer{})
	logger.AddHook(&lokiHook{pusher: pusher, minLevel: log.InfoLevel})

	logger.WithFields(log.Fields{ErrorTypeField: ErrorTypeCache, "key": "jobs?query=nurse"}).Error("cache is down")
	logger.WithField(sourceField, "loki").Warn("skipped")
	logger.Debug("below minimum level")
	pusher.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 1)
	assert.Contains(t, bodies[0], `"error_type":"cache"`)
	assert.Contains(t, bodies[0], `cache is down`)
	assert.Contains(t, bodies[0], `jobs?query=nurse`)
	assert.NotContains(t, bodies[0], "skipped")
	assert.NotContains(t, bodies[0], "below minimum level")
}
