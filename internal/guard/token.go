package guard

import (
	"net/http"
	"strings"

	"github.com/authbridge/authbridge/internal/claim"
)

// DefaultSessionCookie is the session key carrying the token when no
// Authorization header is present.
const DefaultSessionCookie = "auth_token"

// ParseToken extracts the token from a request, trying the Authorization
// header first and the session cookie second; the first non-empty match
// wins. Returns claim.ErrNoToken when neither yields one.
func ParseToken(r *http.Request, cookieName string) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
			return token, nil
		}
	}

	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", claim.ErrNoToken
}
