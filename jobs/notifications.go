package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	jobmetrics "github.com/bizdir/bizdir/internal/jobs"
	"github.com/bizdir/bizdir/internal/platform/docstore"
)

// NotificationCollection names the collection the worker writes to.
const NotificationCollection = "notifications"

// Notification is a delivered notice persisted by the worker.
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	RefID     string    `json:"refId"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationJob turns notification tasks into stored notifications.
type NotificationJob struct {
	notifications *docstore.Collection[Notification]
	logger        *slog.Logger
	metrics       *jobmetrics.Metrics
	clock         func() time.Time
}

// NewNotificationJob wires dependencies for the notification handlers.
func NewNotificationJob(store docstore.Store, logger *slog.Logger, metrics *jobmetrics.Metrics) *NotificationJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationJob{
		notifications: docstore.NewCollection[Notification](store, NotificationCollection),
		logger:        logger,
		metrics:       metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handlers returns the task handlers to register on the worker.
func (j *NotificationJob) Handlers() []TaskHandler {
	return []TaskHandler{
		{Type: TaskListingApproved, Handler: j.HandleListingApproved},
		{Type: TaskApplicationSubmitted, Handler: j.HandleApplicationSubmitted},
		{Type: TaskChatMessage, Handler: j.HandleChatMessage},
	}
}

// HandleListingApproved processes TaskListingApproved tasks.
func (j *NotificationJob) HandleListingApproved(ctx context.Context, t *asynq.Task) error {
	var payload ListingApprovedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	recipient := payload.OwnerID
	if recipient == "" {
		recipient = "directory-staff"
	}
	return j.store(ctx, t.Type(), Notification{
		Kind:      t.Type(),
		Recipient: recipient,
		Subject:   fmt.Sprintf("Listing %q approved", payload.Name),
		RefID:     payload.ListingID,
	})
}

// HandleApplicationSubmitted processes TaskApplicationSubmitted tasks.
func (j *NotificationJob) HandleApplicationSubmitted(ctx context.Context, t *asynq.Task) error {
	var payload ApplicationSubmittedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return j.store(ctx, t.Type(), Notification{
		Kind:      t.Type(),
		Recipient: "job:" + payload.JobID,
		Subject:   "New application received",
		RefID:     payload.ApplicationID,
		Body:      payload.Email,
	})
}

// HandleChatMessage processes TaskChatMessage tasks.
func (j *NotificationJob) HandleChatMessage(ctx context.Context, t *asynq.Task) error {
	var payload ChatMessagePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return j.store(ctx, t.Type(), Notification{
		Kind:      t.Type(),
		Recipient: "chat:" + payload.SessionID,
		Subject:   "New message from " + payload.Sender,
		RefID:     payload.MessageID,
		Body:      payload.Preview,
	})
}

// store persists n keyed by the task id so retried deliveries stay single.
func (j *NotificationJob) store(ctx context.Context, job string, n Notification) (err error) {
	tracker := j.metrics.Track(job)
	defer func() {
		err = tracker.End(err)
	}()

	id, ok := asynq.GetTaskID(ctx)
	if !ok || id == "" {
		id = uuid.NewString()
	}
	n.ID = id
	n.CreatedAt = j.clock()
	if err := j.notifications.Insert(ctx, id, n); err != nil {
		if errors.Is(err, docstore.ErrConflict) {
			return nil
		}
		return fmt.Errorf("jobs: store notification: %w", err)
	}
	j.logger.Info("notification stored",
		slog.String("task", job),
		slog.String("recipient", n.Recipient),
		slog.String("ref_id", n.RefID))
	return nil
}
