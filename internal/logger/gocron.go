package logger

import (
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// gocronLogger routes gocron's internal logging to zap.
type gocronLogger struct {
	sugar *zap.SugaredLogger
}

// NewGocronLogger returns a gocron.Logger backed by log. gocron passes
// alternating key/value pairs, which the sugared logger accepts as is.
//
//nolint:ireturn // gocron.WithLogger takes the interface
func NewGocronLogger(log *zap.Logger) gocron.Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &gocronLogger{sugar: log.Named("gocron").Sugar()}
}

func (l *gocronLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }

func (l *gocronLogger) Info(msg string, args ...any) { l.sugar.Infow(msg, args...) }

func (l *gocronLogger) Warn(msg string, args ...any) { l.sugar.Warnw(msg, args...) }

func (l *gocronLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }
