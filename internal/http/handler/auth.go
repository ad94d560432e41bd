package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/authbridge/authbridge/internal/claim"
	"github.com/authbridge/authbridge/internal/cognito"
	"github.com/authbridge/authbridge/internal/guard"
	"github.com/authbridge/authbridge/internal/middleware"
	"github.com/authbridge/authbridge/internal/service"
)

const maxAuthBodySize = 1 << 20 // 1 MB

// AuthHandler handles credential, challenge and password-reset requests.
type AuthHandler struct {
	guard  *guard.Guard
	client cognito.Client
	policy *cognito.PolicyResolver
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(g *guard.Guard, client cognito.Client, policy *cognito.PolicyResolver) *AuthHandler {
	return &AuthHandler{guard: g, client: client, policy: policy}
}

// ServeHTTP routes /api/v1/auth/* requests.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/auth/")
	path = strings.TrimRight(path, "/")

	switch path {
	case "register":
		h.require(http.MethodPost, w, r, h.handleRegister)
	case "confirm-signup":
		h.require(http.MethodPost, w, r, h.handleConfirmSignUp)
	case "resend-code":
		h.require(http.MethodPost, w, r, h.handleResendCode)
	case "login":
		h.require(http.MethodPost, w, r, h.handleLogin)
	case "login/mfa":
		h.require(http.MethodPost, w, r, h.handleChallenge)
	case "refresh-token":
		h.require(http.MethodPost, w, r, h.handleRefresh)
	case "forgot-password":
		h.require(http.MethodPost, w, r, h.handleForgotPassword)
	case "reset-password":
		h.require(http.MethodPost, w, r, h.handleResetPassword)
	case "logout":
		h.require(http.MethodPut, w, r, h.handleLogout)
	case "logout/forced":
		h.require(http.MethodPut, w, r, h.handleForcedLogout)
	default:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
	}
}

func (h *AuthHandler) require(method string, w http.ResponseWriter, r *http.Request, handler func(http.ResponseWriter, *http.Request)) {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxAuthBodySize)
	handler(w, r)
}

// --- DTOs ---

type registerRequest struct {
	Email      string            `json:"email"`
	Password   string            `json:"password"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type confirmSignUpRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type resendCodeRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type challengeRequest struct {
	ChallengeName string `json:"challenge_name"`
	SessionToken  string `json:"session_token"`
	Username      string `json:"username"`
	Answer        string `json:"answer"`
}

type refreshRequest struct {
	Email        string `json:"email"`
	RefreshToken string `json:"refresh_token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type tokenResponse struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int32  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

type challengeResponse struct {
	Status        string            `json:"status"`
	ChallengeName string            `json:"challenge_name"`
	SessionToken  string            `json:"session_token"`
	Username      string            `json:"username"`
	Parameters    map[string]string `json:"parameters,omitempty"`
}

// --- Handlers ---

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "email and password are required")
		return
	}
	if !h.checkPassword(r.Context(), w, req.Password) {
		return
	}

	out, err := h.client.Register(r.Context(), cognito.RegisterInput{
		Username:   req.Email,
		Password:   req.Password,
		Attributes: mergeEmailAttribute(req.Email, req.Attributes),
	})
	if err != nil {
		handleAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"subject":       out.Subject,
		"confirmed":     out.Confirmed,
		"code_delivery": out.CodeDelivery,
	})
}

func (h *AuthHandler) handleConfirmSignUp(w http.ResponseWriter, r *http.Request) {
	var req confirmSignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if req.Email == "" || req.Code == "" {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "email and code are required")
		return
	}

	if err := h.client.ConfirmSignUp(r.Context(), cognito.ConfirmSignUpInput{
		Username: req.Email,
		Code:     req.Code,
	}); err != nil {
		handleAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": cognito.OutcomeConfirmed.String()})
}

func (h *AuthHandler) handleResendCode(w http.ResponseWriter, r *http.Request) {
	var req resendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if req.Email == "" {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "email is required")
		return
	}

	if err := h.client.ResendConfirmationCode(r.Context(), req.Email); err != nil {
		handleAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "confirmation code resent"})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "email and password are required")
		return
	}

	result, err := h.guard.Attempt(r.Context(), req.Email, req.Password)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	writeGuardResult(w, result)
}

func (h *AuthHandler) handleChallenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if req.ChallengeName == "" || req.SessionToken == "" || req.Username == "" || req.Answer == "" {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "challenge_name, session_token, username and answer are required")
		return
	}

	result, err := h.guard.Respond(r.Context(), claim.ChallengeState{
		Name:     req.ChallengeName,
		Session:  req.SessionToken,
		Username: req.Username,
	}, req.Answer)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	writeGuardResult(w, result)
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if req.Email == "" || req.RefreshToken == "" {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "email and refresh_token are required")
		return
	}

	result, err := h.guard.Refresh(r.Context(), req.Email, req.RefreshToken)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	writeGuardResult(w, result)
}

func (h *AuthHandler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if req.Email == "" {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "email is required")
		return
	}

	outcome, err := h.client.SendResetLink(r.Context(), req.Email)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	WriteOutcome(w, outcome)
}

func (h *AuthHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "email, code and new_password are required")
		return
	}
	if !h.checkPassword(r.Context(), w, req.NewPassword) {
		return
	}

	outcome, err := h.client.ResetPassword(r.Context(), cognito.ResetPasswordInput{
		Username:    req.Email,
		Code:        req.Code,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		handleAuthError(w, err)
		return
	}

	WriteOutcome(w, outcome)
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.logout(w, r, false)
}

func (h *AuthHandler) handleForcedLogout(w http.ResponseWriter, r *http.Request) {
	h.logout(w, r, true)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request, forced bool) {
	c := middleware.GetClaim(r)
	if c == nil {
		WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED_REQUEST", "authentication required")
		return
	}

	if err := h.guard.Logout(r.Context(), c, forced); err != nil {
		handleAuthError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

// checkPassword validates a candidate password against the pool policy and
// writes a 422 with the policy message on failure. Resolver errors are not
// fatal: the provider enforces the policy authoritatively.
func (h *AuthHandler) checkPassword(ctx context.Context, w http.ResponseWriter, password string) bool {
	policy, err := h.policy.Resolve(ctx)
	if err != nil {
		slog.Warn("password policy unavailable, deferring to provider", "error", err)
		return true
	}
	if !policy.Matches(password) {
		WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", policy.Message())
		return false
	}
	return true
}

func writeGuardResult(w http.ResponseWriter, result guard.Result) {
	if ch := result.Challenge; ch != nil {
		WriteJSON(w, http.StatusOK, challengeResponse{
			Status:        "challenge",
			ChallengeName: ch.Name,
			SessionToken:  ch.Session,
			Username:      ch.Username,
			Parameters:    ch.Parameters,
		})
		return
	}

	c := result.Claim
	WriteJSON(w, http.StatusOK, tokenResponse{
		IDToken:      stringField(c.Result, "IdToken"),
		AccessToken:  c.Token,
		RefreshToken: c.RefreshToken(),
		ExpiresIn:    int32(c.TTL().Seconds()),
		TokenType:    stringField(c.Result, "TokenType"),
	})
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func mergeEmailAttribute(email string, attrs map[string]string) map[string]string {
	merged := map[string]string{"email": email}
	for name, value := range attrs {
		merged[name] = value
	}
	return merged
}

// handleAuthError maps sentinel and guard errors to HTTP responses. Fixed
// messages avoid leaking provider internals; details are logged server-side.
func handleAuthError(w http.ResponseWriter, err error) {
	if info, ok := cognito.LookupError(err); ok {
		slog.Error("auth error", "code", info.Code, "detail", err.Error())
		WriteError(w, info.Status, info.Code, cognitoErrorMessage(info.Code))
		return
	}

	switch {
	case errors.Is(err, guard.ErrNoLocalUser):
		WriteError(w, http.StatusUnauthorized, "NO_LOCAL_USER", "no local account for this user")
	case errors.Is(err, guard.ErrUnsupportedChallenge):
		WriteError(w, http.StatusBadRequest, "UNSUPPORTED_CHALLENGE", "authentication flow not supported")
	case errors.Is(err, claim.ErrInvalidToken):
		WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED_REQUEST", "invalid or expired token")
	case errors.Is(err, claim.ErrNoToken):
		WriteError(w, http.StatusUnauthorized, "NO_TOKEN", "authentication token required")
	case errors.Is(err, service.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, service.ErrForbidden):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	default:
		slog.Error("auth internal error", "error", err.Error())
		WriteError(w, http.StatusBadRequest, "REQUEST_FAILED", "request could not be completed")
	}
}

// cognitoErrorMessage returns a safe, user-facing message for each cognito
// error code.
func cognitoErrorMessage(code string) string {
	messages := map[string]string{
		"USER_ALREADY_EXISTS":     "a user with this email already exists",
		"USER_NOT_FOUND":          "user not found",
		"USER_NOT_CONFIRMED":      "email address not confirmed",
		"INVALID_PASSWORD":        "password does not meet requirements",
		"INVALID_CODE":            "invalid verification code",
		"CODE_EXPIRED":            "verification code has expired",
		"TOO_MANY_REQUESTS":       "too many requests, please try again later",
		"NOT_AUTHORIZED":          "incorrect email or password",
		"LIMIT_EXCEEDED":          "attempt limit exceeded, please try again later",
		"PASSWORD_RESET_REQUIRED": "password reset is required",
		"INVALID_PARAMETER":       "invalid request parameter",
		"MFA_METHOD_NOT_FOUND":    "no software token associated",
		"SOFTWARE_TOKEN_MISMATCH": "verification code did not match",
	}
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "an error occurred"
}
