package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bizdir/bizdir/internal/platform/docstore"
	"github.com/bizdir/bizdir/internal/shared"
	"github.com/bizdir/bizdir/jobs"
)

// Notifier is told about new messages.
type Notifier interface {
	ChatMessage(ctx context.Context, payload jobs.ChatMessagePayload)
}

// VisitorSender names messages posted without a principal.
const VisitorSender = "visitor"

const previewLength = 80

// Service manages chat sessions.
type Service struct {
	sessions *docstore.Collection[Session]
	notifier Notifier
	now      func() time.Time
}

// NewService builds Service instance. notifier may be nil.
func NewService(store docstore.Store, notifier Notifier) *Service {
	return &Service{
		sessions: docstore.NewCollection[Session](store, "chat_sessions"),
		notifier: notifier,
		now:      time.Now,
	}
}

// Create opens a session, with an optional first message.
func (s *Service) Create(ctx context.Context, sender string, in CreateSessionInput) (Session, error) {
	now := s.now().UTC()
	sess := Session{
		ID:           uuid.NewString(),
		VisitorName:  strings.TrimSpace(in.VisitorName),
		VisitorEmail: in.VisitorEmail,
		ListingID:    in.ListingID,
		Status:       StatusOpen,
		Messages:     []Message{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Message != "" {
		sess.Messages = append(sess.Messages, newMessage(sender, in.Message, now))
	}
	if err := s.sessions.Insert(ctx, sess.ID, sess); err != nil {
		return Session{}, fmt.Errorf("chat: create: %w", err)
	}
	if len(sess.Messages) > 0 {
		s.notify(ctx, sess.ID, sess.Messages[0])
	}
	return sess, nil
}

// List returns sessions newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Session, error) {
	q := docstore.Query{Limit: filter.Limit, Offset: filter.Offset}
	if filter.Status != "" {
		if filter.Status != StatusOpen && filter.Status != StatusClosed {
			return nil, shared.ValidationFields("invalid query", map[string]string{"status": "must be one of open, closed"})
		}
		q.Filter = map[string]any{"status": filter.Status}
	}
	sessions, err := s.sessions.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("chat: list: %w", err)
	}
	return sessions, nil
}

// Get returns one session with its messages.
func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return Session{}, shared.StoreError(err, "chat session", id)
	}
	return sess, nil
}

// PostMessage appends a message to an open session.
func (s *Service) PostMessage(ctx context.Context, sender, id string, in PostMessageInput) (Message, error) {
	now := s.now().UTC()
	msg := newMessage(sender, in.Body, now)
	_, err := s.sessions.Update(ctx, id, func(sess *Session) error {
		if sess.Status == StatusClosed {
			return shared.Conflict("chat session is closed")
		}
		sess.Messages = append(sess.Messages, msg)
		sess.UpdatedAt = now
		return nil
	})
	if err != nil {
		return Message{}, shared.StoreError(err, "chat session", id)
	}
	s.notify(ctx, id, msg)
	return msg, nil
}

// Close marks a session closed. Closing twice is a conflict.
func (s *Service) Close(ctx context.Context, id string) (Session, error) {
	sess, err := s.sessions.Update(ctx, id, func(sess *Session) error {
		if sess.Status == StatusClosed {
			return shared.Conflict("chat session is already closed")
		}
		sess.Status = StatusClosed
		sess.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return Session{}, shared.StoreError(err, "chat session", id)
	}
	return sess, nil
}

func (s *Service) notify(ctx context.Context, sessionID string, msg Message) {
	if s.notifier == nil {
		return
	}
	preview := msg.Body
	if r := []rune(preview); len(r) > previewLength {
		preview = string(r[:previewLength])
	}
	s.notifier.ChatMessage(ctx, jobs.ChatMessagePayload{
		SessionID: sessionID,
		MessageID: msg.ID,
		Sender:    msg.Sender,
		Preview:   preview,
	})
}

func newMessage(sender, body string, at time.Time) Message {
	if sender == "" {
		sender = VisitorSender
	}
	return Message{ID: uuid.NewString(), Sender: sender, Body: strings.TrimSpace(body), SentAt: at}
}
