package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskListingApproved notifies a directory listing owner of approval.
	TaskListingApproved = "notify:listing_approved"
	// TaskApplicationSubmitted notifies staff of a new job application.
	TaskApplicationSubmitted = "notify:application_submitted"
	// TaskChatMessage notifies the other side of a chat session.
	TaskChatMessage = "notify:chat_message"
)

// ListingApprovedPayload describes an approved directory listing.
type ListingApprovedPayload struct {
	ListingID  string `json:"listingId"`
	Name       string `json:"name"`
	OwnerID    string `json:"ownerId,omitempty"`
	ApprovedBy string `json:"approvedBy"`
}

// ApplicationSubmittedPayload describes a new job application.
type ApplicationSubmittedPayload struct {
	ApplicationID string `json:"applicationId"`
	JobID         string `json:"jobId"`
	ApplicantID   string `json:"applicantId"`
	Email         string `json:"email"`
}

// ChatMessagePayload describes a message posted to a chat session.
type ChatMessagePayload struct {
	SessionID string `json:"sessionId"`
	MessageID string `json:"messageId"`
	Sender    string `json:"sender"`
	Preview   string `json:"preview"`
}

// NewListingApprovedTask constructs an Asynq task.
func NewListingApprovedTask(payload ListingApprovedPayload) (*asynq.Task, error) {
	return newTask(TaskListingApproved, payload)
}

// NewApplicationSubmittedTask constructs an Asynq task.
func NewApplicationSubmittedTask(payload ApplicationSubmittedPayload) (*asynq.Task, error) {
	return newTask(TaskApplicationSubmitted, payload)
}

// NewChatMessageTask constructs an Asynq task.
func NewChatMessageTask(payload ChatMessagePayload) (*asynq.Task, error) {
	return newTask(TaskChatMessage, payload)
}

func newTask(kind string, payload any) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("jobs: encode %s: %w", kind, err)
	}
	return asynq.NewTask(kind, data, asynq.MaxRetry(5)), nil
}
