package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/nutriscan/nutriscan-go/internal/middleware"
	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/nutriscan/nutriscan-go/internal/service"
)

// multipartMemory is how much of a multipart form is buffered in memory
// before spilling to temp files.
const multipartMemory = 8 << 20

// AnalysisService runs food image analyses.
type AnalysisService interface {
	Analyze(ctx context.Context, up service.Upload) (model.UploadResponse, error)
}

// ChatService streams chat replies.
type ChatService interface {
	Chat(ctx context.Context, chatID, prompt string, emit func(string) error) error
}

// AIHandler handles the /ai endpoints.
type AIHandler struct {
	analysis  AnalysisService
	chat      ChatService
	maxUpload int64
	logger    *slog.Logger
}

// NewAIHandler creates a new AIHandler. maxUpload bounds the request body.
func NewAIHandler(analysis AnalysisService, chat ChatService, maxUpload int64, logger *slog.Logger) *AIHandler {
	return &AIHandler{analysis: analysis, chat: chat, maxUpload: maxUpload, logger: logger}
}

// HandleUpload handles POST /ai/agent/upload. Responses always use the
// {status, message} shape, errors included.
func (h *AIHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeUploadFailure(w, http.StatusRequestEntityTooLarge, "File too large: "+err.Error())
			return
		}
		writeUploadFailure(w, http.StatusBadRequest, "Multipart error: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeUploadFailure(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	userID, ok := h.uploadUser(w, r)
	if !ok {
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeUploadFailure(w, http.StatusBadRequest, "Multipart error: "+err.Error())
		return
	}

	resp, err := h.analysis.Analyze(r.Context(), service.Upload{
		UserID:      userID,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		Notes:       r.FormValue("notes"),
	})
	if err != nil {
		writeJSON(w, uploadStatus(err), resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// uploadUser resolves the owner of an upload: the userId field, else the
// authenticated user, else the default user. An authenticated caller may
// only upload for themselves.
func (h *AIHandler) uploadUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	authID, authed := middleware.UserIDFromContext(r.Context())

	raw := strings.TrimSpace(r.FormValue("userId"))
	if raw == "" {
		if authed {
			return authID, true
		}
		return service.DefaultUploadUserID, true
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeUploadFailure(w, http.StatusBadRequest, "invalid userId")
		return 0, false
	}
	if authed && id != authID {
		writeUploadFailure(w, http.StatusForbidden, "cannot upload for another user")
		return 0, false
	}
	return id, true
}

func uploadStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAINotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeUploadFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.UploadResponse{Status: model.StatusFailed, Message: msg})
}

// HandleChat handles /ai/chat?prompt=&chatId=. The reply is streamed as
// it is generated.
func (h *AIHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	prompt, chatID := q.Get("prompt"), q.Get("chatId")

	flusher, _ := w.(http.Flusher)
	started := false
	emit := func(chunk string) error {
		if !started {
			w.Header().Set("Content-Type", "text/html;charset=UTF-8")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	err := h.chat.Chat(r.Context(), chatID, prompt, emit)
	switch {
	case err == nil:
		if !started {
			w.Header().Set("Content-Type", "text/html;charset=UTF-8")
			w.WriteHeader(http.StatusOK)
		}
	case started:
		h.logger.Warn("chat stream aborted", "chat_id", chatID, "error", err)
	case errors.Is(err, service.ErrPromptRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrAINotReady):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse(err.Error()))
	default:
		h.logger.Error("chat failed", "chat_id", chatID, "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse("chat failed"))
	}
}
