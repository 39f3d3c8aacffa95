package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-web/internal/metrics"
	"github.com/BuzzLyutic/planner-web/internal/session"
	"github.com/BuzzLyutic/planner-web/pkg/respond"
)

const entryPath = "/login"

// RequireSession is the route guard for pages. Without a valid session the request
// is redirected to the entry page and the protected handler never runs.
func RequireSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := store.CurrentUser(r)
			if !ok {
				metrics.GuardRedirects.Inc()
				respond.SeeOther(w, r, loginURL(r))
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
		})
	}
}

// RequireSessionAPI is the JSON flavour of RequireSession: 401 instead of a redirect.
func RequireSessionAPI(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := store.CurrentUser(r)
			if !ok {
				metrics.GuardRedirects.Inc()
				respond.Error(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
		})
	}
}

func loginURL(r *http.Request) string {
	if r.Method != http.MethodGet || r.URL.Path == "/" {
		return entryPath
	}
	return entryPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
}

// RequestLogger logs one line per request with zap.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}
