package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup recomputes the cached dashboard summary.
	TaskDashboardWarmup = "dashboard:warmup"
)

// NewDashboardWarmupTask constructs the warmup task. It carries no payload.
func NewDashboardWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskDashboardWarmup, nil)
}

// NewDashboardWarmupHandler wraps a refresh function as an Asynq handler.
func NewDashboardWarmupHandler(refresh func(context.Context) error, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := refresh(ctx); err != nil {
			if logger != nil {
				logger.Error("dashboard warmup", slog.Any("error", err))
			}
			return err
		}
		if logger != nil {
			logger.Info("dashboard summary refreshed")
		}
		return nil
	}
}
