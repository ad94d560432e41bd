package http

import (
	"net/http"

	"github.com/authbridge/authbridge/internal/cognito"
	"github.com/authbridge/authbridge/internal/guard"
	"github.com/authbridge/authbridge/internal/http/handler"
	"github.com/authbridge/authbridge/internal/service"
)

// PublicPaths lists routes served without a token. Everything else behind
// the auth middleware requires a stored claim.
func PublicPaths() map[string]bool {
	return map[string]bool{
		"/health":                      true,
		"/api/v1/auth/register":        true,
		"/api/v1/auth/confirm-signup":  true,
		"/api/v1/auth/resend-code":     true,
		"/api/v1/auth/login":           true,
		"/api/v1/auth/login/mfa":       true,
		"/api/v1/auth/refresh-token":   true,
		"/api/v1/auth/forgot-password": true,
		"/api/v1/auth/reset-password":  true,
	}
}

func NewRouter(g *guard.Guard, client cognito.Client, policy *cognito.PolicyResolver, userSvc *service.UserService, mfaSvc *service.MFAService) http.Handler {
	mux := http.NewServeMux()

	// Health check - intentionally outside /api/v1 for LB health check compatibility
	health := handler.NewHealthHandler()
	mux.Handle("/health", health)

	authHandler := handler.NewAuthHandler(g, client, policy)
	mux.Handle("/api/v1/auth/", authHandler)

	userHandler := handler.NewUserHandler(userSvc)
	mux.Handle("/api/v1/user", userHandler)
	mux.Handle("/api/v1/user/", userHandler)

	mfaHandler := handler.NewMFAHandler(mfaSvc)
	mux.Handle("/api/v1/mfa/", mfaHandler)

	return mux
}
