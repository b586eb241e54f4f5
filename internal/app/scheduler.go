package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/edgard/intillasense/internal/app/tasks"
	"github.com/edgard/intillasense/internal/config"
	"github.com/edgard/intillasense/internal/logger"
)

// Scheduler runs the registered maintenance tasks on fixed intervals.
type Scheduler struct {
	scheduler gocron.Scheduler
	log       *zap.Logger
	cfg       config.SchedulerConfig
	taskMap   map[string]tasks.ScheduledTaskFunc
	mu        sync.Mutex
	running   bool
}

// NewScheduler creates a scheduler for the tasks in taskMap. Only tasks
// enabled in cfg are scheduled.
func NewScheduler(log *zap.Logger, cfg config.SchedulerConfig, taskMap map[string]tasks.ScheduledTaskFunc) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s, err := gocron.NewScheduler(gocron.WithLogger(logger.NewGocronLogger(log)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{
		scheduler: s,
		log:       log.Named("scheduler"),
		cfg:       cfg,
		taskMap:   taskMap,
	}, nil
}

// Start schedules every enabled task and starts ticking. It returns the
// names of the scheduled tasks.
func (s *Scheduler) Start() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, errors.New("scheduler is already running")
	}

	var scheduled []string
	for name, taskCfg := range s.cfg.Tasks {
		if !taskCfg.Enabled {
			s.log.Info("Skipping disabled task", zap.String("task_name", name))
			continue
		}
		taskFunc, ok := s.taskMap[name]
		if !ok {
			s.log.Warn("Task configured but not registered, skipping", zap.String("task_name", name))
			continue
		}
		if taskCfg.Interval <= 0 {
			s.log.Warn("Task enabled without an interval, skipping", zap.String("task_name", name))
			continue
		}

		_, err := s.scheduler.NewJob(
			gocron.DurationJob(taskCfg.Interval),
			gocron.NewTask(s.wrap(taskFunc), name),
			gocron.WithName(name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			s.log.Error("Failed to schedule task", zap.String("task_name", name), zap.Duration("interval", taskCfg.Interval), zap.Error(err))
			continue
		}

		s.log.Info("Scheduled task", zap.String("task_name", name), zap.Duration("interval", taskCfg.Interval))
		scheduled = append(scheduled, name)
	}

	s.scheduler.Start()
	s.running = true
	sort.Strings(scheduled)
	s.log.Info("Scheduler started", zap.Int("tasks_scheduled", len(scheduled)))
	return scheduled, nil
}

// wrap adds timing and error logging around a task. gocron injects the
// job context as the first argument.
func (s *Scheduler) wrap(taskFunc tasks.ScheduledTaskFunc) func(ctx context.Context, name string) {
	return func(ctx context.Context, name string) {
		start := time.Now()
		s.log.Debug("Running scheduled task", zap.String("task_name", name))
		if err := taskFunc(ctx); err != nil {
			s.log.Error("Scheduled task failed", zap.String("task_name", name), zap.Error(err))
			return
		}
		s.log.Info("Finished scheduled task", zap.String("task_name", name), zap.Duration("duration", time.Since(start)))
	}
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return s.scheduler.Shutdown()
	}
	s.running = false

	if err := s.scheduler.Shutdown(); err != nil {
		s.log.Error("Error during scheduler shutdown", zap.Error(err))
		return err
	}
	s.log.Info("Scheduler stopped")
	return nil
}
