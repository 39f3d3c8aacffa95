package handler

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-web/internal/session"
	"github.com/BuzzLyutic/planner-web/pkg/respond"
)

type AuthHandler struct {
	store  *session.Store
	logger *zap.Logger
}

func NewAuthHandler(store *session.Store, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		store:  store,
		logger: logger,
	}
}

type loginPage struct {
	Identity string
	Next     string
	Error    string
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if _, ok := h.store.CurrentUser(r); ok {
		respond.SeeOther(w, r, next)
		return
	}
	h.render(w, r, http.StatusOK, loginPage{Next: next})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, loginPage{Error: "Invalid form."})
		return
	}

	page := loginPage{
		Identity: strings.TrimSpace(r.PostForm.Get("identity")),
		Next:     safeNext(r.PostForm.Get("next")),
	}
	password := r.PostForm.Get("password")
	if page.Identity == "" || password == "" {
		page.Error = "Email and password are required."
		h.render(w, r, http.StatusBadRequest, page)
		return
	}

	if _, err := h.store.Login(r.Context(), w, page.Identity, password); err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			page.Error = "Wrong email or password."
			h.render(w, r, http.StatusUnauthorized, page)
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		page.Error = "Sign in is unavailable right now. Please try again."
		h.render(w, r, http.StatusBadGateway, page)
		return
	}

	respond.SeeOther(w, r, page.Next)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.store.Logout(w, r)
	respond.SeeOther(w, r, entryPath)
}

func (h *AuthHandler) render(w http.ResponseWriter, r *http.Request, code int, page loginPage) {
	if err := respond.HTML(w, r, code, templates, "login", page); err != nil {
		h.logger.Error("render login", zap.Error(err))
	}
}

// safeNext only allows local absolute paths as redirect targets.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
