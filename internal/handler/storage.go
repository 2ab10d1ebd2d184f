package handler

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/nutriscan/nutriscan-go/internal/storage"
)

// StorageHandler handles direct uploads to object storage.
type StorageHandler struct {
	store     storage.ImageStore
	maxUpload int64
	logger    *slog.Logger
}

// NewStorageHandler creates a new StorageHandler. A nil store makes every
// upload answer 503.
func NewStorageHandler(store storage.ImageStore, maxUpload int64, logger *slog.Logger) *StorageHandler {
	return &StorageHandler{store: store, maxUpload: maxUpload, logger: logger}
}

// HandleUpload handles POST /s3/upload. The body is the object URL as text.
func (h *StorageHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("file is required"))
		return
	}
	defer file.Close()

	url, err := h.save(r, file, header)
	if err != nil {
		h.logger.Error("object upload failed", "filename", header.Filename, "error", err)
		w.Header().Set("Content-Type", "text/plain;charset=UTF-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to upload file: " + err.Error()))
		return
	}

	w.Header().Set("Content-Type", "text/plain;charset=UTF-8")
	w.Write([]byte(url))
}

// HandleUploadMany handles POST /s3/uploads with repeated "files" parts.
func (h *StorageHandler) HandleUploadMany(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	urls := make([]string, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			h.internalError(w, err)
			return
		}
		url, err := h.save(r, file, header)
		file.Close()
		if err != nil {
			h.internalError(w, err)
			return
		}
		urls = append(urls, url)
	}

	writeJSON(w, http.StatusOK, urls)
}

// ready checks the store and parses the multipart form.
func (h *StorageHandler) ready(w http.ResponseWriter, r *http.Request) bool {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse("object storage is not configured"))
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse(err.Error()))
		return false
	}
	return true
}

func (h *StorageHandler) save(r *http.Request, file multipart.File, header *multipart.FileHeader) (string, error) {
	return h.store.Save(r.Context(), header.Filename, header.Header.Get("Content-Type"), file, header.Size)
}

func (h *StorageHandler) internalError(w http.ResponseWriter, err error) {
	h.logger.Error("object upload failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
}
