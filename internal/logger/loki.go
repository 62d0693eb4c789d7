package logger

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/maxaizer/job-finder/pkg/loki"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

const sourceField = "source"

// logrusAdapter reports pusher failures through logrus, marked so lokiHook skips them.
type logrusAdapter struct{}

func (l *logrusAdapter) Error(msg string, args ...any) {
	log.WithFields(log.Fields{"args": args, sourceField: "loki"}).Warn(msg)
}

type lokiHook struct {
	pusher   *loki.Pusher
	minLevel log.Level
}

func (h *lokiHook) Fire(entry *log.Entry) error {
	if entry.Data[sourceField] == "loki" {
		return nil
	}

	record := loki.LogEntry{
		Level:   entry.Level.String(),
		Message: entry.Message,
	}
	if entry.Caller != nil {
		record.Caller = filepath.Base(entry.Caller.Function) + ":" + strconv.Itoa(entry.Caller.Line)
	}

	for key, value := range entry.Data {
		if key == ErrorTypeField {
			record.ErrorType, _ = value.(string)
			continue
		}
		if record.Fields == nil {
			record.Fields = make(map[string]string, len(entry.Data))
		}
		record.Fields[key] = fmt.Sprint(value)
	}

	return h.pusher.Push(record)
}

func (h *lokiHook) Levels() []log.Level {
	return lo.Filter(log.AllLevels, func(level log.Level, _ int) bool {
		return level <= h.minLevel
	})
}

func addLokiHook(ctx context.Context, cfg loki.Config, minLevel log.Level) error {
	pusher, err := loki.New(ctx, cfg, &logrusAdapter{})
	if err != nil {
		return err
	}
	lokiPusher = pusher
	log.AddHook(&lokiHook{pusher: pusher, minLevel: minLevel})
	log.Infof("Loki logging enabled, pushing to %s", cfg.Url)
	return nil
}
