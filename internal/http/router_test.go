package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/authbridge/authbridge/internal/cognito"
	"github.com/authbridge/authbridge/internal/config"
	"github.com/authbridge/authbridge/internal/guard"
	authhttp "github.com/authbridge/authbridge/internal/http"
	"github.com/authbridge/authbridge/internal/repository"
	"github.com/authbridge/authbridge/internal/service"
	"github.com/authbridge/authbridge/internal/store"
)

// stubCognitoClient for router tests; all methods return errors (not exercised)
type stubCognitoClient struct{}

func (s *stubCognitoClient) Authenticate(ctx context.Context, input cognito.AuthenticateInput) (cognito.AuthenticateOutput, error) {
	return cognito.AuthenticateOutput{}, fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) RespondToChallenge(ctx context.Context, input cognito.ChallengeInput) (cognito.AuthenticateOutput, error) {
	return cognito.AuthenticateOutput{}, fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) RefreshTokens(ctx context.Context, input cognito.RefreshInput) (cognito.AuthenticateOutput, error) {
	return cognito.AuthenticateOutput{}, fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) Register(ctx context.Context, input cognito.RegisterInput) (cognito.RegisterOutput, error) {
	return cognito.RegisterOutput{}, fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) ConfirmSignUp(ctx context.Context, input cognito.ConfirmSignUpInput) error {
	return fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) ResendConfirmationCode(ctx context.Context, username string) error {
	return fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) SendResetLink(ctx context.Context, username string) (cognito.Outcome, error) {
	return cognito.OutcomeSuccess, fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) ResetPassword(ctx context.Context, input cognito.ResetPasswordInput) (cognito.Outcome, error) {
	return cognito.OutcomeSuccess, fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) InviteUser(ctx context.Context, input cognito.InviteInput) (cognito.InviteOutput, error) {
	return cognito.InviteOutput{}, fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) ConfirmPassword(ctx context.Context, input cognito.ConfirmPasswordInput) error {
	return fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) SetUserAttributes(ctx context.Context, input cognito.SetAttributesInput) error {
	return fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) GetUser(ctx context.Context, username string) (cognito.UserRecord, error) {
	return cognito.UserRecord{}, fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) DeleteUser(ctx context.Context, username string) error {
	return fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) AssociateSoftwareToken(ctx context.Context, accessToken string) (string, error) {
	return "", fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) VerifySoftwareToken(ctx context.Context, input cognito.VerifySoftwareTokenInput) error {
	return fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) SetMFAPreference(ctx context.Context, input cognito.SetMFAPreferenceInput) error {
	return fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) SignOut(ctx context.Context, accessToken string) error {
	return fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) DescribeUserPool(ctx context.Context) (cognito.UserPool, error) {
	return cognito.UserPool{}, fmt.Errorf("not implemented")
}

func newTestRouter() http.Handler {
	client := &stubCognitoClient{}
	users := repository.NewMemoryUser()
	tokens := store.NewMemoryStore()
	g := guard.New(client, users, tokens, guard.Config{}, nil)
	policy := cognito.NewPolicyResolver(client)
	mapping := config.ParseFieldMapping("email:email,name:name,phone_number:phone_number")
	userSvc := service.NewUserService(client, users, mapping, false)
	mfaSvc := service.NewMFAService(client, "authbridge")
	return authhttp.NewRouter(g, client, policy, userSvc, mfaSvc)
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestRouter_AuthRoutesMounted(t *testing.T) {
	router := newTestRouter()

	// Malformed JSON proves the route is wired without touching the provider.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	var result struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Error.Code != "INVALID_JSON" {
		t.Errorf("expected code=INVALID_JSON, got %s", result.Error.Code)
	}
}

func TestRouter_ProtectedRoutesRejectMissingClaim(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/user/profile"},
		{http.MethodDelete, "/api/v1/user"},
		{http.MethodPost, "/api/v1/mfa/associate"},
		{http.MethodPut, "/api/v1/auth/logout"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			// The router alone carries no auth middleware; handlers still
			// refuse to act without a claim in context.
			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", w.Code)
			}
		})
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}
