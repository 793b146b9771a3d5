package blog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdir/bizdir/internal/platform/docstore"
	"github.com/bizdir/bizdir/internal/shared"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world-2024", Slugify("  Hello, World! 2024 "))
	assert.Equal(t, "", Slugify("!!!"))
	assert.Equal(t, "cafe-creme-brulee", Slugify("Café Crème Brûlée"))
}

func TestCreateDerivesUniqueSlug(t *testing.T) {
	svc := NewService(docstore.NewMemory())
	ctx := context.Background()

	post, err := svc.Create(ctx, "admin-1", CreatePostInput{Title: "Opening Day", Content: "We are live."})
	require.NoError(t, err)
	assert.Equal(t, "opening-day", post.Slug)
	assert.Equal(t, "admin-1", post.AuthorID)

	_, err = svc.Create(ctx, "admin-1", CreatePostInput{Title: "Opening day!", Content: "Again"})
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))

	_, err = svc.Create(ctx, "admin-1", CreatePostInput{Title: "***", Content: "x"})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	bySlug, err := svc.Get(ctx, "opening-day")
	require.NoError(t, err)
	assert.Equal(t, post.ID, bySlug.ID)

	_, err = svc.Get(ctx, "missing")
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
}

func TestListPagesAndFiltersByTag(t *testing.T) {
	svc := NewService(docstore.NewMemory())
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		tags := []string{"news"}
		if i%2 == 1 {
			tags = []string{"guides"}
		}
		_, err := svc.Create(ctx, "a", CreatePostInput{Title: fmt.Sprintf("Post %d", i), Content: "c", Tags: tags})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, "", 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "post-3", page[0].Slug)

	guides, err := svc.List(ctx, "Guides", 10, 0)
	require.NoError(t, err)
	assert.Len(t, guides, 2)

	empty, err := svc.List(ctx, "news", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
