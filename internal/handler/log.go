package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/nutriscan/nutriscan-go/internal/service"
)

// LogService is the food log logic the log handlers depend on.
type LogService interface {
	Get(ctx context.Context, id int64) (model.FoodLogResponse, error)
	ListByUser(ctx context.Context, userID int64) ([]model.FoodLogResponse, error)
	Delete(ctx context.Context, id int64) error
}

// LogHandler handles HTTP requests for food logs.
type LogHandler struct {
	service LogService
	logger  *slog.Logger
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(svc LogService, logger *slog.Logger) *LogHandler {
	return &LogHandler{service: svc, logger: logger}
}

// HandleGet handles GET /logs/{id} requests.
func (h *LogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	log, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

// HandleListByUser serves both GET /logs/user/{userId} and
// GET /logs?userId=.
func (h *LogHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "userId")
	if raw == "" {
		raw = r.URL.Query().Get("userId")
	}
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("userId is required"))
		return
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid userId"))
		return
	}

	logs, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// HandleDelete handles DELETE /logs/{id} requests.
func (h *LogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LogHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrLogNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		return
	}
	h.logger.Error("log request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
}
