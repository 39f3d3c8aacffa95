package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-web/internal/backend"
	"github.com/BuzzLyutic/planner-web/internal/model"
	"github.com/BuzzLyutic/planner-web/internal/service"
	"github.com/BuzzLyutic/planner-web/internal/session"
	"github.com/BuzzLyutic/planner-web/pkg/respond"
)

// RecordHandler is the JSON surface over the same record service the pages use.
type RecordHandler struct {
	service *service.RecordService
	logger  *zap.Logger
}

func NewRecordHandler(srv *service.RecordService, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		respond.Error(w, r, http.StatusNotFound, "unknown collection")
		return
	}
	sess, _ := session.FromContext(r.Context())

	records, err := h.service.List(r.Context(), sess, kind)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, records)
}

func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		respond.Error(w, r, http.StatusNotFound, "unknown collection")
		return
	}

	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req model.Fields
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	sess, _ := session.FromContext(r.Context())
	rec, err := h.service.Create(r.Context(), sess, kind, req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/%s/%s", kind, rec.ID))
	respond.JSON(w, r, http.StatusCreated, rec)
}

func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		respond.Error(w, r, http.StatusNotFound, "unknown collection")
		return
	}
	id := chi.URLParam(r, "id")

	var req model.Fields
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	sess, _ := session.FromContext(r.Context())
	rec, err := h.service.Update(r.Context(), sess, kind, id, req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, rec)
}

func (h *RecordHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, backend.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, backend.ErrUnauthorized):
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, service.ErrValidation), errors.Is(err, backend.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, "validation error")
	default:
		h.logger.Error("backend error", zap.Error(err))
		respond.Error(w, r, http.StatusBadGateway, "backend unavailable")
	}
}
