package applications

import "time"

// Application states.
const (
	StatusSubmitted   = "submitted"
	StatusShortlisted = "shortlisted"
	StatusRejected    = "rejected"
)

// Application is a candidate's submission for a job.
type Application struct {
	ID          string    `json:"id"`
	JobID       string    `json:"jobId"`
	ApplicantID string    `json:"applicantId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	CoverLetter string    `json:"coverLetter,omitempty"`
	ResumeURL   string    `json:"resumeUrl,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ApplyInput is the payload for applying to a job.
type ApplyInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone,omitempty" validate:"max=40"`
	CoverLetter string `json:"coverLetter,omitempty" validate:"max=8000"`
	ResumeURL   string `json:"resumeUrl,omitempty" validate:"omitempty,url"`
}
