package tasks

import (
	"context"

	"go.uber.org/zap"

	"github.com/edgard/intillasense/internal/config"
)

// ScheduledTaskFunc is the signature of every scheduled task. The context
// is canceled when the scheduler shuts down.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns the scheduled tasks keyed by the name used in the
// scheduler configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := make(map[string]ScheduledTaskFunc)

	tasks[config.TaskExchangeRetention] = newExchangeRetentionTask(deps)
	tasks[config.TaskSQLMaintenance] = newSQLMaintenanceTask(deps)

	deps.logger().Info("Initialized scheduled tasks", zap.Int("count", len(tasks)))
	return tasks
}
