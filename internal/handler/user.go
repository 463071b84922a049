package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/punchclock/internal/service"
)

// UserHandler serves the signed-in user's own profile.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleMe returns the current user.
//
// HTTP: GET /api/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	u, err := h.users.GetUser(r.Context(), actorID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// HandleMyOrganizations lists the organizations the user belongs to, each
// with the user's role in it.
//
// HTTP: GET /api/me/organizations
func (h *UserHandler) HandleMyOrganizations(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	orgs, err := h.users.GetUserOrganizations(r.Context(), actorID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orgs)
}
