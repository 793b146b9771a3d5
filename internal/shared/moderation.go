package shared

import "strings"

// ModerationStatus is the review state of a submitted listing.
type ModerationStatus string

const (
	StatusPending  ModerationStatus = "pending"
	StatusApproved ModerationStatus = "approved"
	StatusRejected ModerationStatus = "rejected"
)

// ParseModerationStatus validates s. The empty string is rejected.
func ParseModerationStatus(s string) (ModerationStatus, error) {
	switch st := ModerationStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", ValidationFields("invalid status", map[string]string{
		"status": "must be one of pending, approved, rejected",
	})
}

// ModerationFilter returns the list filter for an optional status query value.
// Without one only approved entries are visible. Only staff may ask for
// entries that are not approved.
func ModerationFilter(raw string, staff bool) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{"status": string(StatusApproved)}, nil
	}
	st, err := ParseModerationStatus(raw)
	if err != nil {
		return nil, err
	}
	if st != StatusApproved && !staff {
		return nil, Forbidden("only staff may list unapproved entries")
	}
	return map[string]any{"status": string(st)}, nil
}
