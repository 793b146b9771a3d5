package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdir/bizdir/internal/platform/docstore"
	"github.com/bizdir/bizdir/internal/shared"
	"github.com/bizdir/bizdir/jobs"
)

type recordingNotifier struct {
	payloads []jobs.ChatMessagePayload
}

func (r *recordingNotifier) ChatMessage(_ context.Context, p jobs.ChatMessagePayload) {
	r.payloads = append(r.payloads, p)
}

func TestSessionLifecycle(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(docstore.NewMemory(), notifier)
	ctx := context.Background()

	sess, err := svc.Create(ctx, "", CreateSessionInput{VisitorName: "Kim", Message: "Are you open on Sunday?"})
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, sess.Status)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, VisitorSender, sess.Messages[0].Sender)

	msg, err := svc.PostMessage(ctx, "adv-1", sess.ID, PostMessageInput{Body: strings.Repeat("y", 200)})
	require.NoError(t, err)
	assert.Equal(t, "adv-1", msg.Sender)

	got, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 2)

	require.Len(t, notifier.payloads, 2)
	assert.Len(t, notifier.payloads[1].Preview, previewLength)

	_, err = svc.Close(ctx, sess.ID)
	require.NoError(t, err)
	_, err = svc.PostMessage(ctx, "", sess.ID, PostMessageInput{Body: "hello?"})
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))
	_, err = svc.Close(ctx, sess.ID)
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))
}

func TestPostToUnknownSessionIsNotFound(t *testing.T) {
	svc := NewService(docstore.NewMemory(), nil)
	_, err := svc.PostMessage(context.Background(), "", "nope", PostMessageInput{Body: "hi"})
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
}

func TestListFiltersByStatus(t *testing.T) {
	svc := NewService(docstore.NewMemory(), nil)
	ctx := context.Background()
	a, err := svc.Create(ctx, "", CreateSessionInput{VisitorName: "A"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "", CreateSessionInput{VisitorName: "B"})
	require.NoError(t, err)
	_, err = svc.Close(ctx, a.ID)
	require.NoError(t, err)

	open, err := svc.List(ctx, ListFilter{Status: StatusOpen})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "B", open[0].VisitorName)

	_, err = svc.List(ctx, ListFilter{Status: "archived"})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestConcurrentPostsKeepEveryMessage(t *testing.T) {
	svc := NewService(docstore.NewMemory(), nil)
	ctx := context.Background()
	sess, err := svc.Create(ctx, "", CreateSessionInput{VisitorName: "Ana", Message: "hello"})
	require.NoError(t, err)

	const posters = 25
	var wg sync.WaitGroup
	for i := 0; i < posters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.PostMessage(ctx, "adv-1", sess.ID, PostMessageInput{Body: fmt.Sprintf("reply %d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, posters+1)
}

func TestCloseRacingPostsLeavesSessionClosed(t *testing.T) {
	svc := NewService(docstore.NewMemory(), nil)
	ctx := context.Background()
	sess, err := svc.Create(ctx, "", CreateSessionInput{VisitorName: "Ana", Message: "hello"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.PostMessage(ctx, "", sess.ID, PostMessageInput{Body: "still there?"})
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Close(ctx, sess.ID)
		assert.NoError(t, err)
	}()
	wg.Wait()

	got, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, got.Status)
}
