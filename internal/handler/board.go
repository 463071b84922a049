package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/punchclock/internal/service"
)

// boardInviteRequest is inviteRequest without a role: board access is a
// grant, not a role.
type boardInviteRequest struct {
	UserID string `json:"userId" validate:"required_without=Email"`
	Email  string `json:"email"  validate:"omitempty,email"`
}

// BoardHandler serves /api/boards/{boardID} and its member list.
type BoardHandler struct {
	orgs   *service.OrganizationService
	logger *slog.Logger
}

func NewBoardHandler(orgs *service.OrganizationService, logger *slog.Logger) *BoardHandler {
	return &BoardHandler{orgs: orgs, logger: logger}
}

// HandleUpdate renames a board.
//
// HTTP: PUT /api/boards/{boardID}
func (h *BoardHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req nameSlugRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	board, err := h.orgs.UpdateBoard(r.Context(), actorID, urlParam(r, "boardID"), req.toInput())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// HandleDelete removes a board together with its grants and punches.
//
// HTTP: DELETE /api/boards/{boardID}
func (h *BoardHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.orgs.DeleteBoard(r.Context(), actorID, urlParam(r, "boardID")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListMembers lists every organization member with whether they can
// reach this board.
//
// HTTP: GET /api/boards/{boardID}/members
func (h *BoardHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	members, err := h.orgs.ListBoardMembers(r.Context(), actorID, urlParam(r, "boardID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// HandleInvite grants board access, adding the user to the organization
// as a member first if needed.
//
// HTTP: POST /api/boards/{boardID}/members
func (h *BoardHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req boardInviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	m, err := h.orgs.InviteToBoard(r.Context(), actorID, urlParam(r, "boardID"),
		service.Invitee{UserID: req.UserID, Email: req.Email})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// HandleRemoveMember revokes a member's explicit grant.
//
// HTTP: DELETE /api/boards/{boardID}/members/{userID}
func (h *BoardHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.orgs.RemoveFromBoard(r.Context(), actorID, urlParam(r, "boardID"), urlParam(r, "userID")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
