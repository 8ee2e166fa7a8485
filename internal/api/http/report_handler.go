package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"rental-recon/internal/domain"
	"rental-recon/internal/logger"
	"rental-recon/internal/service"
	"rental-recon/internal/utils"
)

// ReportHandler serves the reconciliation reports as JSON. It only reads.
type ReportHandler struct {
	reports service.ReportService
	now     func() time.Time
}

func NewReportHandler(reports service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports, now: time.Now}
}

func filterFrom(r *http.Request) domain.ReportFilter {
	q := r.URL.Query()
	return domain.ReportFilter{Name: q.Get("name"), CustomerID: q.Get("customer")}
}

// cutoffFrom reads ?date=dd.MM.yyyy or ?month=MM.yyyy; today otherwise.
func (h *ReportHandler) cutoffFrom(r *http.Request) (time.Time, error) {
	q := r.URL.Query()
	if d := q.Get("date"); d != "" {
		return utils.ParseDate(d)
	}
	if m := q.Get("month"); m != "" {
		return utils.ParseMonth(m)
	}
	return utils.DateOnly(h.now()), nil
}

func (h *ReportHandler) HandleOutstanding(w http.ResponseWriter, r *http.Request) {
	cutoff, err := h.cutoffFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, err := h.reports.Outstanding(r.Context(), cutoff, filterFrom(r))
	if err != nil {
		logger.Error("Outstanding report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cutoff": cutoff.Format(domain.DateLayout),
		"rows":   rows,
	})
}

func (h *ReportHandler) HandlePayments(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.PaymentHistory(r.Context(), filterFrom(r))
	if err != nil {
		logger.Error("Payment report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (h *ReportHandler) HandleMultiRentals(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.MultiRentalCustomers(r.Context(), filterFrom(r))
	if err != nil {
		logger.Error("Multi-rental report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (h *ReportHandler) HandleRentals(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.RentalBalances(r.Context(), filterFrom(r))
	if err != nil {
		logger.Error("Rental report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// RegisterReportRoutes registers the report endpoints
func RegisterReportRoutes(router *mux.Router, reports service.ReportService) {
	h := NewReportHandler(reports)
	api := router.PathPrefix("/api/v1/reports").Subrouter()
	api.HandleFunc("/outstanding", h.HandleOutstanding).Methods(http.MethodGet)
	api.HandleFunc("/payments", h.HandlePayments).Methods(http.MethodGet)
	api.HandleFunc("/multi-rentals", h.HandleMultiRentals).Methods(http.MethodGet)
	api.HandleFunc("/rentals", h.HandleRentals).Methods(http.MethodGet)
}
