package applications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bizdir/bizdir/internal/platform/docstore"
	"github.com/bizdir/bizdir/internal/shared"
	"github.com/bizdir/bizdir/jobs"
)

// Notifier is told about new applications.
type Notifier interface {
	ApplicationSubmitted(ctx context.Context, payload jobs.ApplicationSubmittedPayload)
}

type applicantIndex struct {
	ApplicationID string `json:"applicationId"`
}

// Service manages job applications.
type Service struct {
	applications *docstore.Collection[Application]
	applicants   *docstore.Collection[applicantIndex]
	notifier     Notifier
	now          func() time.Time
}

// NewService builds Service instance. notifier may be nil.
func NewService(store docstore.Store, notifier Notifier) *Service {
	return &Service{
		applications: docstore.NewCollection[Application](store, "job_applications"),
		applicants:   docstore.NewCollection[applicantIndex](store, "job_applicants"),
		notifier:     notifier,
		now:          time.Now,
	}
}

// Apply records an application by applicantID. Each applicant may apply to a
// job once.
func (s *Service) Apply(ctx context.Context, applicantID, jobID string, in ApplyInput) (Application, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return Application{}, shared.ValidationFields("invalid request", map[string]string{"jobId": "is required"})
	}
	app := Application{
		ID:          uuid.NewString(),
		JobID:       jobID,
		ApplicantID: applicantID,
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:       in.Phone,
		CoverLetter: in.CoverLetter,
		ResumeURL:   in.ResumeURL,
		Status:      StatusSubmitted,
		CreatedAt:   s.now().UTC(),
	}
	key := jobID + ":" + applicantID
	if err := s.applicants.Insert(ctx, key, applicantIndex{ApplicationID: app.ID}); err != nil {
		if errors.Is(err, docstore.ErrConflict) {
			return Application{}, shared.Conflict("already applied to this job")
		}
		return Application{}, fmt.Errorf("applications: reserve: %w", err)
	}
	if err := s.applications.Insert(ctx, app.ID, app); err != nil {
		_ = s.applicants.Delete(ctx, key)
		return Application{}, fmt.Errorf("applications: create: %w", err)
	}
	if s.notifier != nil {
		s.notifier.ApplicationSubmitted(ctx, jobs.ApplicationSubmittedPayload{
			ApplicationID: app.ID,
			JobID:         jobID,
			ApplicantID:   applicantID,
			Email:         app.Email,
		})
	}
	return app, nil
}

// ListForJob returns the applications of a job, newest first.
func (s *Service) ListForJob(ctx context.Context, jobID string, limit, offset int) ([]Application, error) {
	apps, err := s.applications.List(ctx, docstore.Query{
		Filter: map[string]any{"jobId": jobID},
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("applications: list: %w", err)
	}
	return apps, nil
}
