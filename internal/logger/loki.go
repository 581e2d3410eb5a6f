package logger

import (
	"context"
	"path/filepath"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/mkravets/reposcout/internal/config"
	"github.com/mkravets/reposcout/pkg/loki"
)

type logrusAdapter struct {
}

func (l *logrusAdapter) Error(msg string, args ...any) {
	log.WithFields(log.Fields{"args": args, "source": "loki"}).Error(msg)
}

type lokiHook struct {
	pusher   *loki.Pusher
	minLevel log.Level
}

func (h *lokiHook) Fire(entry *log.Entry) error {

	if entry.Data["source"] == "loki" {
		return nil
	}

	caller := ""
	if entry.Caller != nil {
		caller = filepath.Base(entry.Caller.Function) + ":" + strconv.Itoa(entry.Caller.Line)
	}

	return h.pusher.Push(loki.LogEntry{
		Level:   entry.Level.String(),
		Message: entry.Message,
		Caller:  caller,
	})
}

func (h *lokiHook) Levels() []log.Level {
	var levels []log.Level
	for _, level := range log.AllLevels {
		if level <= h.minLevel {
			levels = append(levels, level)
		}
	}
	return levels
}

var activePusher *loki.Pusher

func addLokiHook(cfg config.LoggerConfig) error {

	pusher, err := loki.New(context.Background(), loki.Config{
		Url:      cfg.LokiURL,
		Username: cfg.LokiUser,
		Password: cfg.LokiPassword,
		Labels:   map[string]string{"app": cfg.AppName},
	}, &logrusAdapter{})
	if err != nil {
		return err
	}

	activePusher = pusher
	log.AddHook(&lokiHook{pusher: pusher, minLevel: log.InfoLevel})
	return nil
}

func stopLokiHook() {
	if activePusher != nil {
		activePusher.Stop()
	}
}
