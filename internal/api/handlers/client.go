package handlers

import (
	"context"

	"github.com/hibiken/asynq"
)

// IAsynqClient is the slice of *asynq.Client the handlers use, extracted for
// mocking.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
