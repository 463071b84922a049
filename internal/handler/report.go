package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/punchclock/internal/service"
)

// ReportHandler serves the read-only aggregates. Every figure is computed
// from the punch rows on request.
type ReportHandler struct {
	reports *service.ReportService
	logger  *slog.Logger
}

func NewReportHandler(reports *service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

// HandleStatus lists who is clocked in right now.
//
// HTTP: GET /api/boards/{boardID}/reports/status
func (h *ReportHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	status, err := h.reports.AllUsersStatus(r.Context(), actorID, urlParam(r, "boardID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// HTTP: GET /api/boards/{boardID}/reports/monthly?month=YYYY-MM
func (h *ReportHandler) HandleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	stats, err := h.reports.MonthlyStats(r.Context(), actorID, urlParam(r, "boardID"), r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HTTP: GET /api/boards/{boardID}/users/{userID}/monthly?month=YYYY-MM
func (h *ReportHandler) HandleUserMonthly(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	weeks, err := h.reports.MonthlyBreakdown(r.Context(), actorID,
		urlParam(r, "boardID"), urlParam(r, "userID"), r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, weeks)
}

// HTTP: GET /api/boards/{boardID}/users/{userID}/weekly?weekStart=YYYY-MM-DD
func (h *ReportHandler) HandleUserWeekly(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	days, err := h.reports.WeeklySummary(r.Context(), actorID,
		urlParam(r, "boardID"), urlParam(r, "userID"), r.URL.Query().Get("weekStart"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}
