package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/authbridge/authbridge/internal/middleware"
	"github.com/authbridge/authbridge/internal/service"
)

// UserHandler handles authenticated user management requests.
type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// ServeHTTP routes /api/v1/user and /api/v1/user/* requests.
func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/user")
	path = strings.Trim(path, "/")

	switch {
	case path == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r)
	case path == "profile" && r.Method == http.MethodGet:
		h.handleProfile(w, r)
	case path == "invite" && r.Method == http.MethodPost:
		h.handleInvite(w, r)
	case path == "attributes" && r.Method == http.MethodPatch:
		h.handleAttributes(w, r)
	case path == "" || path == "profile" || path == "invite" || path == "attributes":
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	default:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
	}
}

type inviteRequest struct {
	Email      string            `json:"email"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type attributesRequest struct {
	Attributes map[string]string `json:"attributes"`
}

func (h *UserHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	c := middleware.GetClaim(r)
	if c == nil {
		WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED_REQUEST", "authentication required")
		return
	}

	profile, err := h.svc.Profile(r.Context(), c)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) handleInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	out, err := h.svc.Invite(r.Context(), req.Email, req.Attributes)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]string{
		"subject": out.Subject,
		"status":  out.Status,
	})
}

func (h *UserHandler) handleAttributes(w http.ResponseWriter, r *http.Request) {
	c := middleware.GetClaim(r)
	if c == nil {
		WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED_REQUEST", "authentication required")
		return
	}

	var req attributesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	user, err := h.svc.UpdateAttributes(r.Context(), c, req.Attributes)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	c := middleware.GetClaim(r)
	if c == nil {
		WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED_REQUEST", "authentication required")
		return
	}

	if err := h.svc.Delete(r.Context(), c); err != nil {
		handleAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
