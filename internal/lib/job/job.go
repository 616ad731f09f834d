// Package job runs background work on Asynq, a Redis-backed task queue.
// Services enqueue through JobService.Enqueue; the worker side is started
// by the serve command once handlers are registered.
package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/pickboard/internal/config"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

type JobService struct {
	Client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *zerolog.Logger
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
			QueueLow:      1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Error().
				Err(err).
				Str("type", task.Type()).
				Int("retried", retried).
				Int("max_retry", maxRetry).
				Msg("background task failed")
		}),
	})

	return &JobService{
		Client: asynq.NewClient(redisOpt),
		server: server,
		mux:    asynq.NewServeMux(),
		logger: logger,
	}
}

// Handle registers the handler for a task type. Call before Start.
func (j *JobService) Handle(taskType string, handler asynq.HandlerFunc) {
	j.mux.HandleFunc(taskType, handler)
}

// Enqueue pushes a task. A task rejected as a duplicate of one still
// pending counts as enqueued.
func (j *JobService) Enqueue(ctx context.Context, task *asynq.Task) error {
	info, err := j.Client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrDuplicateTask) || errors.Is(err, asynq.ErrTaskIDConflict) {
		j.logger.Debug().Str("type", task.Type()).Msg("task already queued")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}

	j.logger.Info().
		Str("type", task.Type()).
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Msg("task enqueued")
	return nil
}

// Start launches the worker pool in the background.
func (j *JobService) Start() error {
	j.logger.Info().Msg("starting background job server")
	if err := j.server.Start(j.mux); err != nil {
		return fmt.Errorf("failed to start job server: %w", err)
	}
	return nil
}

// Stop waits for running tasks and closes the enqueue client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}
