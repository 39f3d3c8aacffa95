package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-web/internal/repo"
	"github.com/BuzzLyutic/planner-web/internal/testutil"
)

func setupStore(t *testing.T) (*Store, *repo.MemorySessionRepo) {
	t.Helper()
	fake := testutil.NewFakeBackend()
	fake.AddUser("u1", "ann@example.com", "secret")

	sessions := repo.NewMemorySessionRepo()
	store := NewStore(fake, sessions, NewSigner("test-secret"), Options{TTL: time.Hour}, zap.NewNop())
	return store, sessions
}

// requestWithCookies replays the cookies a response set.
func requestWithCookies(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestStore_Login(t *testing.T) {
	store, sessions := setupStore(t)

	t.Run("valid credentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		sess, err := store.Login(context.Background(), w, "ann@example.com", "secret")
		require.NoError(t, err)

		assert.NotEmpty(t, sess.ID)
		assert.NotEmpty(t, sess.Token)
		assert.Equal(t, "u1", sess.User.ID)

		stored, err := sessions.Get(context.Background(), sess.ID)
		require.NoError(t, err)
		assert.Equal(t, sess.Token, stored.Token)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, CookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, err := store.Login(context.Background(), w, "ann@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Empty(t, w.Result().Cookies())
	})
}

func TestStore_CurrentUser(t *testing.T) {
	store, _ := setupStore(t)

	t.Run("no cookie", func(t *testing.T) {
		_, ok := store.CurrentUser(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.False(t, ok)
	})

	t.Run("tampered cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-jwt"})
		_, ok := store.CurrentUser(r)
		assert.False(t, ok)
	})

	t.Run("cookie signed with another secret", func(t *testing.T) {
		value, err := NewSigner("other").Sign("whatever", time.Now().Add(time.Hour))
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: value})
		_, ok := store.CurrentUser(r)
		assert.False(t, ok)
	})

	t.Run("after login", func(t *testing.T) {
		w := httptest.NewRecorder()
		created, err := store.Login(context.Background(), w, "ann@example.com", "secret")
		require.NoError(t, err)

		sess, ok := store.CurrentUser(requestWithCookies(w))
		require.True(t, ok)
		assert.Equal(t, created.ID, sess.ID)
		assert.Equal(t, "ann@example.com", sess.User.Email)
	})

	t.Run("expired session is dropped", func(t *testing.T) {
		w := httptest.NewRecorder()
		created, err := store.Login(context.Background(), w, "ann@example.com", "secret")
		require.NoError(t, err)

		store.now = func() time.Time { return created.ExpiresAt.Add(time.Second) }
		defer func() { store.now = time.Now }()

		_, ok := store.CurrentUser(requestWithCookies(w))
		assert.False(t, ok)

		_, err = store.repo.Get(context.Background(), created.ID)
		assert.ErrorIs(t, err, repo.ErrorNotFound)
	})
}

func TestStore_Logout(t *testing.T) {
	t.Run("clears session", func(t *testing.T) {
		store, _ := setupStore(t)

		var forgotten []string
		store.OnLogout(func(id string) { forgotten = append(forgotten, id) })

		w := httptest.NewRecorder()
		created, err := store.Login(context.Background(), w, "ann@example.com", "secret")
		require.NoError(t, err)
		r := requestWithCookies(w)

		lw := httptest.NewRecorder()
		store.Logout(lw, r)

		_, ok := store.CurrentUser(r)
		assert.False(t, ok, "old cookie must no longer resolve")
		assert.Equal(t, []string{created.ID}, forgotten)

		cleared := lw.Result().Cookies()
		require.Len(t, cleared, 1)
		assert.Equal(t, "", cleared[0].Value)
		assert.Less(t, cleared[0].MaxAge, 0)
	})

	t.Run("without session", func(t *testing.T) {
		store, _ := setupStore(t)
		w := httptest.NewRecorder()

		assert.NotPanics(t, func() {
			store.Logout(w, httptest.NewRequest(http.MethodPost, "/logout", nil))
			store.Logout(w, httptest.NewRequest(http.MethodPost, "/logout", nil))
		})
	})
}

func TestSigner(t *testing.T) {
	s := NewSigner("k")

	value, err := s.Sign("sid-1", time.Now().Add(time.Minute))
	require.NoError(t, err)

	id, err := s.Parse(value)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", id)

	expired, err := s.Sign("sid-2", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = s.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
