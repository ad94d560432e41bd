package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/authbridge/authbridge/internal/middleware"
	"github.com/authbridge/authbridge/internal/service"
)

// MFAHandler handles software-token MFA lifecycle requests.
type MFAHandler struct {
	svc *service.MFAService
}

func NewMFAHandler(svc *service.MFAService) *MFAHandler {
	return &MFAHandler{svc: svc}
}

// ServeHTTP routes /api/v1/mfa/* requests.
func (h *MFAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	c := middleware.GetClaim(r)
	if c == nil {
		WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED_REQUEST", "authentication required")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/mfa/")
	path = strings.TrimRight(path, "/")

	switch path {
	case "associate":
		h.handleAssociate(w, r)
	case "verify":
		h.handleVerify(w, r)
	case "enable":
		h.handleEnable(w, r)
	case "disable":
		h.handleDisable(w, r)
	default:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
	}
}

type verifyRequest struct {
	Code string `json:"code"`
}

func (h *MFAHandler) handleAssociate(w http.ResponseWriter, r *http.Request) {
	c := middleware.GetClaim(r)

	enrollment, err := h.svc.Associate(r.Context(), c.Token, c.Username)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, enrollment)
}

func (h *MFAHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	c := middleware.GetClaim(r)

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	if err := h.svc.Verify(r.Context(), c.Token, req.Code); err != nil {
		handleAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "mfa enabled"})
}

func (h *MFAHandler) handleEnable(w http.ResponseWriter, r *http.Request) {
	c := middleware.GetClaim(r)

	if err := h.svc.Enable(r.Context(), c.Token); err != nil {
		handleAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "mfa enabled"})
}

func (h *MFAHandler) handleDisable(w http.ResponseWriter, r *http.Request) {
	c := middleware.GetClaim(r)

	if err := h.svc.Disable(r.Context(), c.Token); err != nil {
		handleAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "mfa disabled"})
}
