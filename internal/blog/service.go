package blog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/bizdir/bizdir/internal/platform/docstore"
	"github.com/bizdir/bizdir/internal/shared"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from s. Accents are folded to their base letter.
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(folded), "-"), "-")
}

type slugIndex struct {
	PostID string `json:"postId"`
}

// Service publishes and reads blog posts.
type Service struct {
	posts *docstore.Collection[Post]
	slugs *docstore.Collection[slugIndex]
	now   func() time.Time
}

// NewService builds Service instance.
func NewService(store docstore.Store) *Service {
	return &Service{
		posts: docstore.NewCollection[Post](store, "blog_posts"),
		slugs: docstore.NewCollection[slugIndex](store, "blog_slugs"),
		now:   time.Now,
	}
}

// Create publishes a post authored by authorID.
func (s *Service) Create(ctx context.Context, authorID string, in CreatePostInput) (Post, error) {
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(in.Title)
	}
	if slug == "" {
		return Post{}, shared.ValidationFields("invalid request", map[string]string{"slug": "must contain letters or digits"})
	}
	post := Post{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(in.Title),
		Slug:      slug,
		Excerpt:   in.Excerpt,
		Content:   in.Content,
		Tags:      in.Tags,
		AuthorID:  authorID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.slugs.Insert(ctx, slug, slugIndex{PostID: post.ID}); err != nil {
		if errors.Is(err, docstore.ErrConflict) {
			return Post{}, shared.Conflict(fmt.Sprintf("slug %q already in use", slug))
		}
		return Post{}, fmt.Errorf("blog: reserve slug: %w", err)
	}
	if err := s.posts.Insert(ctx, post.ID, post); err != nil {
		_ = s.slugs.Delete(ctx, slug)
		return Post{}, fmt.Errorf("blog: create: %w", err)
	}
	return post, nil
}

// List returns posts newest first, optionally narrowed to a tag.
func (s *Service) List(ctx context.Context, tag string, limit, offset int) ([]Post, error) {
	if tag == "" {
		posts, err := s.posts.List(ctx, docstore.Query{Limit: limit, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("blog: list: %w", err)
		}
		return posts, nil
	}
	all, err := s.posts.List(ctx, docstore.Query{})
	if err != nil {
		return nil, fmt.Errorf("blog: list: %w", err)
	}
	matched := make([]Post, 0, len(all))
	for _, p := range all {
		for _, t := range p.Tags {
			if strings.EqualFold(t, tag) {
				matched = append(matched, p)
				break
			}
		}
	}
	return window(matched, limit, offset), nil
}

// Get returns the post with id, or the post whose slug is id.
func (s *Service) Get(ctx context.Context, id string) (Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err == nil {
		return post, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return Post{}, fmt.Errorf("blog: get: %w", err)
	}
	idx, slugErr := s.slugs.Get(ctx, id)
	if slugErr != nil {
		return Post{}, shared.StoreError(slugErr, "post", id)
	}
	post, err = s.posts.Get(ctx, idx.PostID)
	if err != nil {
		return Post{}, shared.StoreError(err, "post", id)
	}
	return post, nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
