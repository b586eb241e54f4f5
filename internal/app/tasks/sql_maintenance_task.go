package tasks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/edgard/intillasense/internal/config"
)

// newSQLMaintenanceTask vacuums and optimizes the exchange database.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.logger().With(zap.String("task", config.TaskSQLMaintenance))

	return func(ctx context.Context) error {
		log.Info("Starting SQL maintenance")
		start := time.Now()

		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			log.Error("SQL maintenance failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.Info("SQL maintenance completed", zap.Duration("duration", time.Since(start)))
		return nil
	}
}
