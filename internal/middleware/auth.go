package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"

	"github.com/golang-jwt/jwt/v5"

	"github.com/authbridge/authbridge/internal/claim"
)

// TokenAuthenticator resolves a raw token to its stored claim.
type TokenAuthenticator interface {
	AuthenticateToken(ctx context.Context, token string) (*claim.Claim, error)
}

// TokenParser extracts a token from an incoming request.
type TokenParser func(r *http.Request) (string, error)

type AuthConfig struct {
	Authenticator TokenAuthenticator
	ParseToken    TokenParser
	// PublicPaths are served without a token.
	PublicPaths map[string]bool
	// VerifySignature additionally checks the token signature against the
	// pool's JWKS. Off by default: the store lookup already proves the
	// token was issued here.
	VerifySignature bool
	JWKSClient      *JWKSClient
	Issuer          string
}

// Auth enforces the presence of a valid stored token on protected routes.
type Auth struct {
	cfg AuthConfig
}

func NewAuth(cfg AuthConfig) (*Auth, error) {
	if cfg.Authenticator == nil {
		return nil, fmt.Errorf("middleware: Authenticator is required")
	}
	if cfg.ParseToken == nil {
		return nil, fmt.Errorf("middleware: ParseToken is required")
	}
	if cfg.VerifySignature && cfg.JWKSClient == nil {
		return nil, fmt.Errorf("middleware: JWKSClient is required when VerifySignature is enabled")
	}
	return &Auth{cfg: cfg}, nil
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.PublicPaths[path.Clean(r.URL.Path)] {
			next.ServeHTTP(w, r)
			return
		}

		token, err := a.cfg.ParseToken(r)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "NO_TOKEN", "authentication token required")
			return
		}

		c, err := a.cfg.Authenticator.AuthenticateToken(r.Context(), token)
		if err != nil {
			if !errors.Is(err, claim.ErrInvalidToken) {
				slog.ErrorContext(r.Context(), "token authentication failed", "error", err)
			}
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED_REQUEST", "invalid or expired token")
			return
		}

		if a.cfg.VerifySignature {
			if err := a.verifySignature(token); err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED_REQUEST", "invalid or expired token")
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(SetClaim(r.Context(), c)))
	})
}

func (a *Auth) verifySignature(tokenStr string) error {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("kid header not found")
		}
		return a.cfg.JWKSClient.GetKey(kid)
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(a.cfg.Issuer),
	)
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("token invalid")
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// CognitoJWKSURL returns the JWKS URL for the given Cognito User Pool.
func CognitoJWKSURL(region, userPoolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s/.well-known/jwks.json", region, userPoolID)
}

// CognitoIssuer returns the expected issuer for the given Cognito User Pool.
func CognitoIssuer(region, userPoolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolID)
}
