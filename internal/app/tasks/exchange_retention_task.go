package tasks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/edgard/intillasense/internal/config"
)

// newExchangeRetentionTask deletes exchanges older than the configured
// retention. A retention of zero keeps everything.
func newExchangeRetentionTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.logger().With(zap.String("task", config.TaskExchangeRetention))

	return func(ctx context.Context) error {
		days := deps.Config.RetentionDays
		if days <= 0 {
			log.Debug("Retention disabled, nothing to delete")
			return nil
		}

		cutoff := deps.now().Add(-time.Duration(days) * 24 * time.Hour)
		n, err := deps.Store.DeleteExchangesBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("delete exchanges before %s: %w", cutoff.Format(time.RFC3339), err)
		}

		log.Info("Pruned exchange log", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
		return nil
	}
}
