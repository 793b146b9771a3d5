package blog

import "time"

// Post is a published blog article.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreatePostInput is the payload for publishing a post.
type CreatePostInput struct {
	Title   string   `json:"title" validate:"required,max=200"`
	Slug    string   `json:"slug,omitempty" validate:"omitempty,max=120"`
	Excerpt string   `json:"excerpt,omitempty" validate:"max=500"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags,omitempty" validate:"max=10,dive,required,max=40"`
}
