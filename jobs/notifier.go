package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Enqueuer submits tasks. *asynq.Client satisfies it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Notifier enqueues notification tasks on behalf of request handlers.
// Enqueue failures are logged and never returned; a nil Notifier does nothing.
type Notifier struct {
	enqueuer Enqueuer
	logger   *slog.Logger
}

// NewNotifier constructs a Notifier.
func NewNotifier(enqueuer Enqueuer, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{enqueuer: enqueuer, logger: logger}
}

// ListingApproved enqueues TaskListingApproved.
func (n *Notifier) ListingApproved(ctx context.Context, payload ListingApprovedPayload) {
	if n == nil {
		return
	}
	task, err := NewListingApprovedTask(payload)
	n.enqueue(ctx, task, err, slog.String("listing_id", payload.ListingID))
}

// ApplicationSubmitted enqueues TaskApplicationSubmitted.
func (n *Notifier) ApplicationSubmitted(ctx context.Context, payload ApplicationSubmittedPayload) {
	if n == nil {
		return
	}
	task, err := NewApplicationSubmittedTask(payload)
	n.enqueue(ctx, task, err, slog.String("application_id", payload.ApplicationID))
}

// ChatMessage enqueues TaskChatMessage.
func (n *Notifier) ChatMessage(ctx context.Context, payload ChatMessagePayload) {
	if n == nil {
		return
	}
	task, err := NewChatMessageTask(payload)
	n.enqueue(ctx, task, err, slog.String("session_id", payload.SessionID))
}

func (n *Notifier) enqueue(ctx context.Context, task *asynq.Task, err error, attr slog.Attr) {
	if err == nil && n.enqueuer != nil {
		_, err = n.enqueuer.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	}
	if err != nil {
		kind := ""
		if task != nil {
			kind = task.Type()
		}
		n.logger.Warn("enqueue notification", slog.String("task", kind), attr, slog.Any("error", err))
	}
}
