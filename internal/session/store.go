// Package session resolves browser cookies to backend sessions.
//
// The cookie only carries a signed session id. The backend bearer token and
// user identity stay server side in a repo.SessionRepository.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-web/internal/backend"
	"github.com/BuzzLyutic/planner-web/internal/model"
	"github.com/BuzzLyutic/planner-web/internal/repo"
)

const CookieName = "pw_session"

var ErrInvalidCredentials = errors.New("invalid credentials")

type Store struct {
	api    backend.API
	repo   repo.SessionRepository
	signer *Signer
	ttl    time.Duration
	secure bool
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	onLogout []func(sessionID string)
}

type Options struct {
	TTL          time.Duration
	CookieSecure bool
}

func NewStore(api backend.API, sessions repo.SessionRepository, signer *Signer, opts Options, logger *zap.Logger) *Store {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Store{
		api:    api,
		repo:   sessions,
		signer: signer,
		ttl:    opts.TTL,
		secure: opts.CookieSecure,
		logger: logger,
		now:    time.Now,
	}
}

// OnLogout registers fn to run after a session is destroyed, by logout or lazily on expiry.
func (s *Store) OnLogout(fn func(sessionID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

func (s *Store) Login(ctx context.Context, w http.ResponseWriter, identity, password string) (model.Session, error) {
	token, user, err := s.api.AuthWithPassword(ctx, identity, password)
	if err != nil {
		if errors.Is(err, backend.ErrValidation) || errors.Is(err, backend.ErrUnauthorized) {
			return model.Session{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return model.Session{}, fmt.Errorf("login: %w", err)
	}

	now := s.now().UTC()
	sess := model.Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return model.Session{}, fmt.Errorf("save session: %w", err)
	}

	value, err := s.signer.Sign(sess.ID, sess.ExpiresAt)
	if err != nil {
		return model.Session{}, fmt.Errorf("sign session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Info("session created", zap.String("user_id", user.ID))
	return sess, nil
}

// CurrentUser returns the session behind the request cookie, if any.
// Expired sessions are deleted when they are found here.
func (s *Store) CurrentUser(r *http.Request) (model.Session, bool) {
	id, ok := s.sessionID(r)
	if !ok {
		return model.Session{}, false
	}

	sess, err := s.repo.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, repo.ErrorNotFound) {
			s.logger.Error("session lookup failed", zap.Error(err))
		}
		return model.Session{}, false
	}

	if sess.Expired(s.now()) {
		if err := s.repo.Delete(r.Context(), id); err != nil {
			s.logger.Warn("failed to delete expired session", zap.Error(err))
		}
		s.forget(id)
		return model.Session{}, false
	}
	return sess, true
}

// Logout clears the stored session and the cookie. Safe to call without a session.
func (s *Store) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := s.sessionID(r); ok {
		if err := s.repo.Delete(r.Context(), id); err != nil {
			s.logger.Warn("failed to delete session", zap.Error(err))
		}
		s.forget(id)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Store) forget(id string) {
	s.mu.Lock()
	hooks := append([]func(string){}, s.onLogout...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(id)
	}
}

func (s *Store) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	id, err := s.signer.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id, true
}

type ctxKey struct{}

func WithSession(ctx context.Context, sess model.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

func FromContext(ctx context.Context) (model.Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(model.Session)
	return sess, ok
}
