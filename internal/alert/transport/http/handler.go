package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"defiguard/internal/alert"
	"defiguard/internal/alert/service"
	"defiguard/internal/registry"
	"defiguard/pkg/middleware"
)

type Handler struct {
	AlertService *service.Service
	Logger       *zap.Logger
}

func NewAlertHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{AlertService: svc, Logger: logger}
}

type errorResponse struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error"`
}

type createResponse struct {
	Ok      bool   `json:"ok"`
	AlertID string `json:"alertId"`
}

// CreatePersonalizedMarket handles POST /api/alerts/create/personalized-market.
func (h *Handler) CreatePersonalizedMarket(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, false)
}

// CreatePersonalizedComparison handles POST /api/alerts/create/personalized-comparison.
// The comparison flag is forced on and compareProtocols becomes mandatory.
func (h *Handler) CreatePersonalizedComparison(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, true)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, comparison bool) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	var params alert.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if comparison {
		params.IsComparison = true
	}

	a, err := h.AlertService.Create(r.Context(), userID, &params)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{Ok: true, AlertID: a.ID})
}

// List handles GET /api/alerts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	alerts, err := h.AlertService.List(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if alerts == nil {
		alerts = []*alert.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

// Get handles GET /api/alerts/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)
	id := chi.URLParam(r, "id")

	a, err := h.AlertService.Get(r.Context(), userID, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Update handles PUT /api/alerts/{id} with replace-wholesale semantics.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)
	id := chi.URLParam(r, "id")

	var params alert.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	a, err := h.AlertService.Update(r.Context(), userID, id, &params)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Delete handles DELETE /api/alerts/{id} and returns the alert's last-known
// state.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)
	id := chi.URLParam(r, "id")

	a, err := h.AlertService.Delete(r.Context(), userID, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("alert request failed", zap.Error(err))
	}
	writeError(w, status, err.Error())
}

func statusFromError(err error) int {
	var (
		missing   *alert.MissingFieldError
		invalid   *alert.InvalidFieldError
		empty     *alert.EmptyCollectionError
		condition *alert.InvalidConditionError
		channel   *alert.InvalidChannelError
		chain     *registry.UnknownChainError
		market    *registry.UnknownMarketError
	)
	switch {
	case errors.Is(err, alert.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, alert.ErrNotOwner):
		return http.StatusForbidden
	case errors.As(err, &missing),
		errors.As(err, &invalid),
		errors.As(err, &empty),
		errors.As(err, &condition),
		errors.As(err, &channel),
		errors.As(err, &chain),
		errors.As(err, &market):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Ok: false, Error: msg})
}
