package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/punchclock/internal/model"
	"github.com/sakif/punchclock/internal/service"
)

// nameSlugRequest is the body for creating an organization and for
// creating or renaming a board.
type nameSlugRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Slug string `json:"slug" validate:"required,max=100"`
}

func (req nameSlugRequest) toInput() service.NameSlug {
	return service.NameSlug{Name: req.Name, Slug: req.Slug}
}

// inviteRequest names the invitee by id or by email. An email nobody has
// signed in with yet creates a placeholder that attaches on first login.
type inviteRequest struct {
	UserID string        `json:"userId" validate:"required_without=Email"`
	Email  string        `json:"email"  validate:"omitempty,email"`
	Role   model.OrgRole `json:"role,omitempty" validate:"omitempty,oneof=admin member"`
}

func (req inviteRequest) invitee() service.Invitee {
	return service.Invitee{UserID: req.UserID, Email: req.Email}
}

// OrganizationHandler serves /api/organizations.
type OrganizationHandler struct {
	orgs   *service.OrganizationService
	logger *slog.Logger
}

func NewOrganizationHandler(orgs *service.OrganizationService, logger *slog.Logger) *OrganizationHandler {
	return &OrganizationHandler{orgs: orgs, logger: logger}
}

// HandleCreate creates an organization with the caller as its first admin.
// Superadmin only.
//
// HTTP: POST /api/organizations
// Body: {"name": "Acme", "slug": "acme"}
func (h *OrganizationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
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

	org, err := h.orgs.CreateOrganization(r.Context(), actorID, req.toInput())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, org)
}

// HandleGetBySlug returns the organization and the caller's role in it.
//
// HTTP: GET /api/organizations/by-slug/{slug}
func (h *OrganizationHandler) HandleGetBySlug(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	org, err := h.orgs.GetOrganizationBySlug(r.Context(), actorID, urlParam(r, "slug"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

// HandleListBoards lists the boards of the organization the caller can
// reach: all of them for an admin, granted ones for a member.
//
// HTTP: GET /api/organizations/{orgID}/boards
func (h *OrganizationHandler) HandleListBoards(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	boards, err := h.orgs.ListBoards(r.Context(), actorID, urlParam(r, "orgID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, boards)
}

// HandleCreateBoard adds a board to the organization. Org admins only.
//
// HTTP: POST /api/organizations/{orgID}/boards
// Body: {"name": "Front desk", "slug": "front-desk"}
func (h *OrganizationHandler) HandleCreateBoard(w http.ResponseWriter, r *http.Request) {
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

	board, err := h.orgs.CreateBoard(r.Context(), actorID, urlParam(r, "orgID"), req.toInput())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, board)
}

// HandleGetBoardBySlug resolves a board slug within the organization.
//
// HTTP: GET /api/organizations/{orgID}/boards/by-slug/{slug}
func (h *OrganizationHandler) HandleGetBoardBySlug(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	board, err := h.orgs.GetBoardBySlug(r.Context(), actorID, urlParam(r, "orgID"), urlParam(r, "slug"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// HandleListMembers lists the organization's members with their roles.
//
// HTTP: GET /api/organizations/{orgID}/members
func (h *OrganizationHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	members, err := h.orgs.ListMembers(r.Context(), actorID, urlParam(r, "orgID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// HandleInviteMember adds a member or changes an existing member's role.
//
// HTTP: POST /api/organizations/{orgID}/members
// Body: {"email": "new@example.com", "role": "member"} or {"userId": "..."}
func (h *OrganizationHandler) HandleInviteMember(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req inviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	m, err := h.orgs.InviteToOrganization(r.Context(), actorID, urlParam(r, "orgID"), req.invitee(), req.Role)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}
