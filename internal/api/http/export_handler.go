package http

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"

	"rental-recon/internal/logger"
	"rental-recon/internal/storage"
)

// ExportHandler lists and downloads stored report exports
type ExportHandler struct {
	exports storage.ExportStore
}

func NewExportHandler(exports storage.ExportStore) *ExportHandler {
	return &ExportHandler{exports: exports}
}

func (h *ExportHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	files, err := h.exports.List(r.Context())
	if err != nil {
		logger.Error("Failed to list exports", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list exports")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

// HandleDownload streams one export file
func (h *ExportHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["name"]

	exists, size, err := h.exports.FileExists(r.Context(), key)
	switch {
	case errors.Is(err, storage.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, "invalid export name")
		return
	case err != nil:
		logger.Error("Failed to stat export", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to open export")
		return
	case !exists:
		writeError(w, http.StatusNotFound, "export not found")
		return
	}

	file, err := h.exports.ReadFile(key)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		writeError(w, http.StatusNotFound, "export not found")
		return
	case err != nil:
		logger.Error("Failed to open export", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to open export")
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".csv":
		contentType = "text/csv; charset=utf-8"
	case ".json":
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+key+`"`)

	if _, err := io.Copy(w, file); err != nil {
		logger.Error("Failed to stream export", "key", key, "error", err)
	}
}

// RegisterExportRoutes registers the export endpoints
func RegisterExportRoutes(router *mux.Router, exports storage.ExportStore) {
	h := NewExportHandler(exports)
	router.HandleFunc("/api/v1/exports", h.HandleList).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/exports/{name}", h.HandleDownload).Methods(http.MethodGet)
}
