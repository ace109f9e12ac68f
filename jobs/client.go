package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/ftgifting/backoffice/internal/documents"
	"github.com/ftgifting/backoffice/internal/mail"
)

// Client enqueues background tasks. It satisfies both the mail enqueuer and
// the document replay enqueuer.
type Client struct {
	inner *asynq.Client
}

// NewClient wraps an asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{inner: asynq.NewClient(redisOpts)}
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.inner.Close()
}

// EnqueueSend queues an email for delivery by the worker.
func (c *Client) EnqueueSend(ctx context.Context, msg mail.Message) error {
	task, err := NewSendEmailTask(msg)
	if err != nil {
		return fmt.Errorf("jobs: build send task: %w", err)
	}
	if _, err := c.inner.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("jobs: enqueue send task: %w", err)
	}
	return nil
}

// EnqueueReplay queues a deferred document write for replay.
func (c *Client) EnqueueReplay(ctx context.Context, op documents.ReplayOp) error {
	task, err := NewDocumentReplayTask(op)
	if err != nil {
		return fmt.Errorf("jobs: build replay task: %w", err)
	}
	if _, err := c.inner.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("jobs: enqueue replay task: %w", err)
	}
	return nil
}
