// Package claim holds the authenticated-session value produced once the
// identity provider returns tokens, plus the transient challenge state that
// precedes it.
package claim

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/authbridge/authbridge/internal/cognito"
	"github.com/authbridge/authbridge/internal/model"
)

// DefaultTTL applies when the provider omits ExpiresIn.
const DefaultTTL = 3600 * time.Second

var (
	// ErrNoToken indicates no token was present on the request.
	ErrNoToken = errors.New("no token provided")
	// ErrInvalidToken indicates a token that is malformed, expired or unknown.
	ErrInvalidToken = errors.New("invalid token")
)

// Claim represents a successfully authenticated session. It is never
// constructed from a pending-challenge response and is never mutated;
// invalidation replaces it with nil.
type Claim struct {
	Token    string         `json:"token"`
	Result   map[string]any `json:"authentication_result"`
	Username string         `json:"username"`
	Subject  string         `json:"subject"`
	User     *model.User    `json:"user,omitempty"`
}

// New builds a Claim from a provider authentication result. The access token
// must pass the structural shape check.
func New(result cognito.AuthResult, username string, user *model.User) (*Claim, error) {
	if err := ValidateTokenShape(result.AccessToken); err != nil {
		return nil, err
	}

	c := &Claim{
		Token: result.AccessToken,
		Result: map[string]any{
			"AccessToken":  result.AccessToken,
			"IdToken":      result.IDToken,
			"RefreshToken": result.RefreshToken,
			"ExpiresIn":    result.ExpiresIn,
			"TokenType":    result.TokenType,
		},
		Username: username,
		User:     user,
	}

	sub, err := ExtractSubject(result.AccessToken)
	if err != nil {
		return nil, err
	}
	c.Subject = sub
	return c, nil
}

// TTL derives the store lifetime from the provider-issued expiry.
func (c *Claim) TTL() time.Duration {
	switch v := c.Result["ExpiresIn"].(type) {
	case int32:
		if v > 0 {
			return time.Duration(v) * time.Second
		}
	case float64: // JSON round trip decodes numbers as float64
		if v > 0 {
			return time.Duration(v) * time.Second
		}
	}
	return DefaultTTL
}

// RefreshToken returns the refresh token from the raw result, if present.
func (c *Claim) RefreshToken() string {
	v, _ := c.Result["RefreshToken"].(string)
	return v
}

// ValidateTokenShape enforces the loose JWT shape check: exactly three
// non-empty, trimmed, dot-separated segments. No signature or claims
// verification happens locally.
func ValidateTokenShape(token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("token must have three segments: %w", ErrInvalidToken)
	}
	for _, part := range parts {
		if part == "" || part != strings.TrimSpace(part) {
			return fmt.Errorf("token segment empty or untrimmed: %w", ErrInvalidToken)
		}
	}
	return nil
}

// ExtractSubject reads the sub claim from a token without verifying the
// signature. Tokens reaching this point were just issued by the provider.
func ExtractSubject(token string) (string, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("sub claim not found in token")
	}
	return sub, nil
}
