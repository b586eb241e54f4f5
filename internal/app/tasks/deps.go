// Package tasks implements the periodic maintenance jobs of the exchange log.
package tasks

import (
	"time"

	"go.uber.org/zap"

	"github.com/edgard/intillasense/internal/config"
	"github.com/edgard/intillasense/internal/database"
)

// TaskDeps holds what the scheduled tasks need.
type TaskDeps struct {
	Logger *zap.Logger
	Store  database.Store
	Config config.DatabaseConfig
	Now    func() time.Time
}

func (d TaskDeps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func (d TaskDeps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}
