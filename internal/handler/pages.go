package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-web/internal/backend"
	"github.com/BuzzLyutic/planner-web/internal/listing"
	"github.com/BuzzLyutic/planner-web/internal/modal"
	"github.com/BuzzLyutic/planner-web/internal/model"
	"github.com/BuzzLyutic/planner-web/internal/nav"
	"github.com/BuzzLyutic/planner-web/internal/service"
	"github.com/BuzzLyutic/planner-web/internal/session"
	"github.com/BuzzLyutic/planner-web/pkg/respond"
)

// PageHandler serves the hub and the four list pages with their create/edit modal.
type PageHandler struct {
	store   *session.Store
	service *service.RecordService
	lists   *listing.Registry
	logger  *zap.Logger
}

func NewPageHandler(store *session.Store, srv *service.RecordService, lists *listing.Registry, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		store:   store,
		service: srv,
		lists:   lists,
		logger:  logger,
	}
}

type hubPage struct {
	User  model.User
	Cards []nav.Card
}

type listPage struct {
	Kind       model.Kind
	Label      string
	Singular   string
	User       model.User
	Records    []model.Record
	Loading    bool
	FetchError string
	Modal      *modal.Controller
	ModalError string
}

func (h *PageHandler) Hub(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	h.render(w, r, http.StatusOK, "hub", hubPage{User: sess.User, Cards: nav.Cards()})
}

// List activates a list page: one fetch, then render. ?modal=new or ?modal=edit&id=
// opens the overlay on top of the freshly loaded list.
func (h *PageHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sess, _ := session.FromContext(r.Context())
	ctrl := h.lists.For(sess.ID, kind)

	if !h.refresh(w, r, sess, ctrl) {
		return
	}

	m := modal.New()
	switch r.URL.Query().Get("modal") {
	case "new":
		m.Open(nil)
	case "edit":
		if rec, found := ctrl.Find(r.URL.Query().Get("id")); found {
			m.Open(&rec)
		}
	}

	h.renderList(w, r, http.StatusOK, sess, ctrl, m)
}

func (h *PageHandler) Create(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sess, _ := session.FromContext(r.Context())
	ctrl := h.lists.For(sess.ID, kind)
	if !h.ensureLoaded(w, r, sess, ctrl) {
		return
	}

	m := modal.New()
	m.Open(nil)
	h.submit(w, r, sess, ctrl, m, func(ctx context.Context, f model.Fields) (model.Record, error) {
		return h.service.Create(ctx, sess, kind, f)
	})
}

func (h *PageHandler) Update(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sess, _ := session.FromContext(r.Context())
	ctrl := h.lists.For(sess.ID, kind)
	if !h.ensureLoaded(w, r, sess, ctrl) {
		return
	}
	id := chi.URLParam(r, "id")

	existing, found := ctrl.Find(id)
	if !found {
		existing = model.Record{ID: id}
	}

	m := modal.New()
	m.Open(&existing)
	h.submit(w, r, sess, ctrl, m, func(ctx context.Context, f model.Fields) (model.Record, error) {
		return h.service.Update(ctx, sess, kind, id, f)
	})
}

// refresh loads the list for the page. It returns false when the response has
// already been written because the backend rejected the session token.
func (h *PageHandler) refresh(w http.ResponseWriter, r *http.Request, sess model.Session, ctrl *listing.Controller) bool {
	kind := ctrl.Kind()
	ctrl.Refresh(r.Context(), func(ctx context.Context) ([]model.Record, error) {
		return h.service.List(ctx, sess, kind)
	})
	if err := ctrl.Err(); err != nil {
		if h.expired(w, r, err) {
			return false
		}
		h.logger.Warn("list fetch failed", zap.String("kind", string(kind)), zap.Error(err))
	}
	return true
}

// ensureLoaded fetches the list before a save is merged into it, e.g. when the
// session outlived a restart and this process never showed the page.
func (h *PageHandler) ensureLoaded(w http.ResponseWriter, r *http.Request, sess model.Session, ctrl *listing.Controller) bool {
	if ctrl.Loaded() {
		return true
	}
	return h.refresh(w, r, sess, ctrl)
}

type saveFunc func(ctx context.Context, f model.Fields) (model.Record, error)

// submit drives the modal through Submitting. Success merges the saved record into
// the list and renders it with the modal closed; failure re-renders the open modal
// with the entered values.
func (h *PageHandler) submit(w http.ResponseWriter, r *http.Request, sess model.Session, ctrl *listing.Controller, m *modal.Controller, save saveFunc) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	values := formValues(r)
	if err := m.Submit(values); err != nil {
		h.logger.Error("modal submit", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	rec, err := save(r.Context(), fieldsFromValues(ctrl.Kind(), values))
	if err != nil {
		if h.expired(w, r, err) {
			return
		}
		m.Fail(err)
		h.logger.Warn("submit failed",
			zap.String("kind", string(ctrl.Kind())),
			zap.String("record_id", m.EditingID()),
			zap.Error(err),
		)
		h.renderList(w, r, submitStatus(err), sess, ctrl, m)
		return
	}

	ctrl.Upsert(rec)
	m.Succeed()
	h.renderList(w, r, http.StatusOK, sess, ctrl, m)
}

// expired handles a token the backend no longer accepts: the session is dropped
// and the user is sent back to the entry page.
func (h *PageHandler) expired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, backend.ErrUnauthorized) {
		return false
	}
	h.logger.Info("backend rejected session token, logging out")
	h.store.Logout(w, r)
	respond.SeeOther(w, r, entryPath)
	return true
}

func (h *PageHandler) renderList(w http.ResponseWriter, r *http.Request, code int, sess model.Session, ctrl *listing.Controller, m *modal.Controller) {
	page := listPage{
		Kind:     ctrl.Kind(),
		Label:    nav.Label(ctrl.Kind()),
		Singular: ctrl.Kind().Singular(),
		User:     sess.User,
		Records:  ctrl.Records(),
		Loading:  ctrl.Loading(),
		Modal:    m,
	}
	if err := ctrl.Err(); err != nil {
		page.FetchError = "Please try again."
	}
	if err := m.Err(); err != nil {
		page.ModalError = submitMessage(err)
	}
	h.render(w, r, code, "list", page)
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, code int, name string, data interface{}) {
	if err := respond.HTML(w, r, code, templates, name, data); err != nil {
		h.logger.Error("render", zap.String("template", name), zap.Error(err))
	}
}

func kindParam(r *http.Request) (model.Kind, bool) {
	return model.ParseKind(chi.URLParam(r, "kind"))
}

func formValues(r *http.Request) modal.Values {
	v := modal.Values{}
	for _, k := range []string{"title", "description", "status", "matter", "completed"} {
		v[k] = strings.TrimSpace(r.PostForm.Get(k))
	}
	return v
}

// fieldsFromValues maps the form to a backend payload. The form always posts every
// field, so updates send them all and empty inputs clear the stored value.
// Matters have no matter relation of their own.
func fieldsFromValues(kind model.Kind, v modal.Values) model.Fields {
	title := v.Get("title")
	description := v.Get("description")
	status := v.Get("status")
	matter := v.Get("matter")
	completed := v.Get("completed") == "on"

	f := model.Fields{
		Title:       &title,
		Description: &description,
		Status:      &status,
		Completed:   &completed,
	}
	if kind != model.KindMatters {
		f.Matter = &matter
	}
	return f
}

func submitStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, backend.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func submitMessage(err error) string {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, service.ErrValidation):
		return "Title is required."
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, backend.ErrNotFound):
		return "This record no longer exists."
	}
	return "Could not save. Please try again."
}
