package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"rental-recon/internal/logger"
	"rental-recon/internal/service"
	"rental-recon/internal/storage"
)

// NewRouter wires every read-only endpoint. exports may be nil.
func NewRouter(reports service.ReportService, exports storage.ExportStore) *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	RegisterReportRoutes(router, reports)
	if exports != nil {
		RegisterExportRoutes(router, exports)
	}
	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("HTTP request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(started))
	})
}
