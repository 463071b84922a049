package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/punchclock/internal/model"
	"github.com/sakif/punchclock/internal/service"
)

type punchRequest struct {
	Type      model.PunchType `json:"type"      validate:"required,oneof=in out"`
	Timestamp *time.Time      `json:"timestamp"`
	Note      string          `json:"note"`
}

type manualPunchRequest struct {
	UserID    string          `json:"userId"    validate:"required"`
	Type      model.PunchType `json:"type"      validate:"required,oneof=in out"`
	Timestamp time.Time       `json:"timestamp" validate:"required"`
	Note      string          `json:"note"`
}

type updatePunchRequest struct {
	Type      *model.PunchType `json:"type"      validate:"omitempty,oneof=in out"`
	Timestamp *time.Time       `json:"timestamp"`
	Note      *string          `json:"note"`
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// PunchHandler serves the clock itself: status, punching, manual entry,
// history, and edits.
type PunchHandler struct {
	punches *service.PunchService
	logger  *slog.Logger
}

func NewPunchHandler(punches *service.PunchService, logger *slog.Logger) *PunchHandler {
	return &PunchHandler{punches: punches, logger: logger}
}

// HandleStatus returns whether the caller is clocked in on the board and
// their latest punch.
//
// HTTP: GET /api/boards/{boardID}/status
func (h *PunchHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	status, err := h.punches.Status(r.Context(), actorID, urlParam(r, "boardID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// HandlePunch records a punch for the caller.
//
// HTTP: POST /api/boards/{boardID}/punches
// Body: {"type": "in", "timestamp": "2026-03-20T09:00:00Z", "note": "..."}
//
// timestamp is optional and defaults to now; when given it must not be in
// the future and must come after the caller's previous punch.
func (h *PunchHandler) HandlePunch(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req punchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	p, err := h.punches.Punch(r.Context(), actorID, urlParam(r, "boardID"), service.PunchInput{
		Type:      req.Type,
		Timestamp: req.Timestamp,
		Note:      req.Note,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleAddManual lets an admin record a punch for a board member.
//
// HTTP: POST /api/boards/{boardID}/punches/manual
func (h *PunchHandler) HandleAddManual(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req manualPunchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	p, err := h.punches.AddPunch(r.Context(), actorID, urlParam(r, "boardID"), service.AddPunchInput{
		UserID:    req.UserID,
		Type:      req.Type,
		Timestamp: req.Timestamp,
		Note:      req.Note,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleHistory lists punches newest first.
//
// HTTP: GET /api/boards/{boardID}/punches?userId=&start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *PunchHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	q := r.URL.Query()
	punches, err := h.punches.History(r.Context(), actorID, urlParam(r, "boardID"), service.HistoryQuery{
		UserID: q.Get("userId"),
		Start:  q.Get("start"),
		End:    q.Get("end"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, punches)
}

// HandleUpdate changes any of type, timestamp and note.
//
// HTTP: PUT /api/punches/{punchID}
func (h *PunchHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req updatePunchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	p, err := h.punches.UpdatePunch(r.Context(), actorID, urlParam(r, "punchID"), service.UpdatePunchInput{
		Type:      req.Type,
		Timestamp: req.Timestamp,
		Note:      req.Note,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleDelete removes a single punch.
//
// HTTP: DELETE /api/punches/{punchID}
func (h *PunchHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.punches.DeletePunch(r.Context(), actorID, urlParam(r, "punchID")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleBulkDelete deletes every listed punch or none of them.
//
// HTTP: POST /api/punches/bulk-delete
// Body: {"ids": ["...", "..."]}
func (h *PunchHandler) HandleBulkDelete(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req bulkDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	n, err := h.punches.DeletePunches(r.Context(), actorID, req.IDs)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}
