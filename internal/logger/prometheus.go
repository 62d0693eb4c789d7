package logger

import (
	"github.com/maxaizer/job-finder/internal/metrics"
	log "github.com/sirupsen/logrus"
)

const unknownErrorType = "unknown"

// prometheusHook counts warnings by level and, for errors, by error type as well.
type prometheusHook struct{}

func (h *prometheusHook) Fire(entry *log.Entry) error {
	metrics.LogEntriesCounter.WithLabelValues(entry.Level.String()).Inc()

	if entry.Level > log.ErrorLevel {
		return nil
	}

	errorType, ok := entry.Data[ErrorTypeField].(string)
	if !ok || errorType == "" {
		errorType = unknownErrorType
	}
	metrics.ErrorsCounter.WithLabelValues(errorType).Inc()
	return nil
}

func (h *prometheusHook) Levels() []log.Level {
	return []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel, log.WarnLevel}
}

func addPrometheusHook() {
	log.AddHook(&prometheusHook{})
	log.Debug("Prometheus log hook added")
}
