package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ftgifting/backoffice/internal/documents"
	"github.com/ftgifting/backoffice/internal/mail"
	"github.com/ftgifting/backoffice/internal/shared"
)

// NewSendEmailHandler delivers queued messages through the relay client.
func NewSendEmailHandler(client *mail.Client, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var msg mail.Message
		if err := json.Unmarshal(t.Payload(), &msg); err != nil {
			return fmt.Errorf("unmarshal mail payload: %v: %w", err, asynq.SkipRetry)
		}
		result, err := client.Send(ctx, msg)
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", msg.To, err)
		}
		logger.Info("mail delivered",
			slog.String("to", msg.To),
			slog.String("message_id", result.MessageID))
		return nil
	}
}

// NewDocumentReplayHandler re-applies deferred writes against the primary
// repository. Failures are retried by the queue with backoff.
func NewDocumentReplayHandler(repo documents.Repository, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var op documents.ReplayOp
		if err := json.Unmarshal(t.Payload(), &op); err != nil {
			return fmt.Errorf("unmarshal replay payload: %v: %w", err, asynq.SkipRetry)
		}

		var err error
		switch op.Op {
		case "save":
			if op.Doc == nil {
				return fmt.Errorf("replay save without document: %w", asynq.SkipRetry)
			}
			err = repo.Save(ctx, *op.Doc)
			if errors.Is(err, documents.ErrNotFound) {
				err = repo.Create(ctx, *op.Doc)
			}
		case "update":
			if op.Patch == nil {
				return fmt.Errorf("replay update without patch: %w", asynq.SkipRetry)
			}
			err = repo.Update(ctx, op.Kind, op.ID, *op.Patch)
			if errors.Is(err, documents.ErrNotFound) {
				// Record was deleted while the write waited, nothing to replay.
				err = nil
			}
		case "delete":
			err = repo.Delete(ctx, op.Kind, op.ID)
			if errors.Is(err, documents.ErrNotFound) {
				err = nil
			}
		default:
			return fmt.Errorf("unknown replay op %q: %w", op.Op, asynq.SkipRetry)
		}
		if err != nil {
			return fmt.Errorf("replay %s %s/%s: %w", op.Op, op.Kind, op.ID, err)
		}
		logger.Info("replayed deferred write",
			slog.String("op", op.Op),
			slog.String("kind", string(op.Kind)),
			slog.String("id", op.ID.String()))
		return nil
	}
}

// NewIdempotencyCleanupHandler prunes keys older than the retention window.
func NewIdempotencyCleanupHandler(store *shared.IdempotencyStore, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := store.Cleanup(ctx, 30*24*time.Hour); err != nil {
			return fmt.Errorf("idempotency cleanup: %w", err)
		}
		logger.Info("idempotency keys pruned")
		return nil
	}
}
