package shared

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bizdir/bizdir/internal/platform/docstore"
)

// AuditCollection names the collection holding audit records.
const AuditCollection = "audit_logs"

// AuditLog represents a record stored in audit_logs.
type AuditLog struct {
	ID       string         `json:"id"`
	ActorID  string         `json:"actorId"`
	Action   string         `json:"action"`
	Entity   string         `json:"entity"`
	EntityID string         `json:"entityId"`
	Meta     map[string]any `json:"meta,omitempty"`
	At       time.Time      `json:"at"`
}

// AuditLogger writes records into audit_logs.
type AuditLogger struct {
	logs   *docstore.Collection[AuditLog]
	logger *slog.Logger
	now    func() time.Time
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(store docstore.Store, logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logs:   docstore.NewCollection[AuditLog](store, AuditCollection),
		logger: logger,
		now:    time.Now,
	}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" || log.Entity == "" || log.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.At.IsZero() {
		log.At = l.now().UTC()
	}
	return l.logs.Insert(ctx, log.ID, log)
}

// Note records the entry and logs any failure instead of returning it.
// A nil logger is a no-op.
func (l *AuditLogger) Note(ctx context.Context, log AuditLog) {
	if l == nil {
		return
	}
	if err := l.Record(ctx, log); err != nil {
		l.logger.Warn("audit record failed",
			slog.String("action", log.Action),
			slog.String("entity", log.Entity),
			slog.String("entity_id", log.EntityID),
			slog.Any("error", err))
	}
}

// Entries returns audit records for an entity, newest first.
func (l *AuditLogger) Entries(ctx context.Context, entity, entityID string) ([]AuditLog, error) {
	return l.logs.List(ctx, docstore.Query{Filter: map[string]any{"entity": entity, "entityId": entityID}})
}
