package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"writespace-backend/internal/shared"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// Enqueuer hands background work to the worker process.
type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error
}

// TaskClient wraps asynq.Client with JSON payload encoding and defaults.
type TaskClient struct {
	client *asynq.Client
}

func NewTaskClient(redisAddr, password string, db int) *TaskClient {
	return &TaskClient{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr, Password: password, DB: db}),
	}
}

// Enqueue defaults to the default queue, 3 retries and a 30s timeout; opts
// override them.
func (c *TaskClient) Enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}

	base := []asynq.Option{
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(30 * time.Second),
	}
	task := asynq.NewTask(taskType, body)

	info, err := c.client.EnqueueContext(ctx, task, append(base, opts...)...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}

	log.Debug().
		Str("task_id", info.ID).
		Str("type", taskType).
		Str("queue", info.Queue).
		Msg("Task enqueued")
	return nil
}

func (c *TaskClient) Close() error {
	return c.client.Close()
}
