package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/ftgifting/backoffice/internal/documents"
	"github.com/ftgifting/backoffice/internal/mail"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail delivers a document email through the relay.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeDocumentReplay re-applies a write captured while the primary
	// store was unavailable.
	TaskTypeDocumentReplay = "documents:replay"
	// TaskTypeIdempotencyCleanup prunes old idempotency keys.
	TaskTypeIdempotencyCleanup = "maintenance:idempotency-cleanup"
)

// NewSendEmailTask constructs the mail delivery task.
func NewSendEmailTask(msg mail.Message) (*asynq.Task, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.MaxRetry(5), asynq.Queue(QueueDefault)), nil
}

// NewDocumentReplayTask constructs a write-behind replay task.
func NewDocumentReplayTask(op documents.ReplayOp) (*asynq.Task, error) {
	data, err := json.Marshal(op)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDocumentReplay, data, asynq.MaxRetry(10), asynq.Queue(QueueDefault)), nil
}

// NewIdempotencyCleanupTask constructs the periodic cleanup task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeIdempotencyCleanup, nil, asynq.Queue(QueueDefault))
}
