package chat

import "time"

// Session states.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Message is one entry of a chat session.
type Message struct {
	ID     string    `json:"id"`
	Sender string    `json:"sender"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sentAt"`
}

// Session is a conversation between a visitor and a listing's staff.
type Session struct {
	ID           string    `json:"id"`
	VisitorName  string    `json:"visitorName"`
	VisitorEmail string    `json:"visitorEmail,omitempty"`
	ListingID    string    `json:"listingId,omitempty"`
	Status       string    `json:"status"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateSessionInput opens a session.
type CreateSessionInput struct {
	VisitorName  string `json:"visitorName" validate:"required,max=120"`
	VisitorEmail string `json:"visitorEmail,omitempty" validate:"omitempty,email"`
	ListingID    string `json:"listingId,omitempty" validate:"max=64"`
	Message      string `json:"message,omitempty" validate:"max=4000"`
}

// PostMessageInput appends a message.
type PostMessageInput struct {
	Body string `json:"body" validate:"required,max=4000"`
}

// ListFilter narrows session listings.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}
