package handler

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-web/internal/listing"
	"github.com/BuzzLyutic/planner-web/internal/repo"
	"github.com/BuzzLyutic/planner-web/internal/service"
	"github.com/BuzzLyutic/planner-web/internal/session"
	"github.com/BuzzLyutic/planner-web/internal/testutil"
)

type testApp struct {
	server *httptest.Server
	client *http.Client
	fake   *testutil.FakeBackend
	store  *session.Store
	lists  *listing.Registry
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	fake := testutil.NewFakeBackend()
	fake.AddUser("u1", "ann@example.com", "secret")

	logger := zap.NewNop()
	store := session.NewStore(fake, repo.NewMemorySessionRepo(), session.NewSigner("test-secret"), session.Options{TTL: time.Hour}, logger)
	lists := listing.NewRegistry()

	srv := httptest.NewServer(NewRouter(Deps{
		Store:   store,
		Records: service.NewRecordService(fake, 200, logger),
		Lists:   lists,
		Logger:  logger,
	}))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		server: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		fake:  fake,
		store: store,
		lists: lists,
	}
}

func (a *testApp) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.server.URL+path, nil)
	require.NoError(t, err)
	return a.do(t, req)
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(t, req)
}

func (a *testApp) login(t *testing.T) {
	t.Helper()
	resp, _ := a.postForm(t, "/login", url.Values{"identity": {"ann@example.com"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func countCalls(calls []string, op string) int {
	n := 0
	for _, c := range calls {
		if c == op {
			n++
		}
	}
	return n
}
