package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessions(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "bizdir_session", time.Hour, false), mr
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAnonymousSessionIsNotStored(t *testing.T) {
	sm, mr := newTestSessions(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.True(t, sess.IsNew())

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	assert.Nil(t, sessionCookie(t, rec, sm.CookieName()))
	assert.Empty(t, mr.Keys())
}

func TestBoundSessionRoundTrip(t *testing.T) {
	sm, mr := newTestSessions(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.Bind("u-1", "Advertiser")
	sess.Set("k", "v")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	cookie := sessionCookie(t, rec, sm.CookieName())
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, mr.Exists("session:"+cookie.Value))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "u-1", loaded.User())
	assert.Equal(t, "Advertiser", loaded.Role())
	assert.Equal(t, "v", loaded.Get("k"))
	assert.False(t, loaded.IsNew())
}

func TestBindRotatesStoredSession(t *testing.T) {
	sm, mr := newTestSessions(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.Set(CSRFSessionKey, "token")
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), sess))
	oldID := sess.ID

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: oldID})
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	loaded.Bind("u-2", "User")
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), loaded))

	assert.NotEqual(t, oldID, loaded.ID)
	assert.False(t, mr.Exists("session:"+oldID))
	assert.True(t, mr.Exists("session:"+loaded.ID))
}

func TestDestroyRemovesSession(t *testing.T) {
	sm, mr := newTestSessions(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.Bind("u-3", "Admin")
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), sess))

	sm.Destroy(sess)
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	assert.False(t, mr.Exists("session:"+sess.ID))
	cookie := sessionCookie(t, rec, sm.CookieName())
	require.NotNil(t, cookie)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestUnknownCookieStartsFreshSession(t *testing.T) {
	sm, _ := newTestSessions(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: "stale"})

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, sess.IsNew())
	assert.NotEqual(t, "stale", sess.ID)
	assert.Empty(t, sess.User())
}

func TestCSRFTokenLifecycle(t *testing.T) {
	m := NewCSRFManager("secret")
	sess := &Session{ID: "s1"}

	token, err := m.EnsureToken(sess)
	require.NoError(t, err)
	again, err := m.EnsureToken(sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	assert.NoError(t, m.VerifyToken(sess, token))
	assert.ErrorIs(t, m.VerifyToken(sess, "other"), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, m.VerifyToken(sess, ""), ErrCSRFTokenMissing)
	assert.ErrorIs(t, m.VerifyToken(&Session{ID: "s2"}, token), ErrCSRFTokenMissing)
}

func TestCSRFProtectsCookieMutationsOnly(t *testing.T) {
	m := NewCSRFManager("secret")
	bound := &Session{ID: "s1", userID: "u-1"}

	post := httptest.NewRequest(http.MethodPost, "/blog", nil)
	assert.True(t, m.Protects(post, bound))
	assert.False(t, m.Protects(post, &Session{ID: "anon"}))
	assert.False(t, m.Protects(httptest.NewRequest(http.MethodGet, "/blog", nil), bound))

	bearer := httptest.NewRequest(http.MethodPost, "/blog", nil)
	bearer.Header.Set("Authorization", "Bearer abc")
	assert.False(t, m.Protects(bearer, bound))
}
