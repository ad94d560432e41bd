package middleware

import (
	"context"
	"net/http"

	"github.com/authbridge/authbridge/internal/claim"
)

type contextKey string

const claimKey contextKey = "auth_claim"

// SetClaim attaches the authenticated claim to the request context.
func SetClaim(ctx context.Context, c *claim.Claim) context.Context {
	return context.WithValue(ctx, claimKey, c)
}

// GetClaim returns the claim attached by the auth middleware, or nil on
// unauthenticated requests.
func GetClaim(r *http.Request) *claim.Claim {
	c, _ := r.Context().Value(claimKey).(*claim.Claim)
	return c
}
