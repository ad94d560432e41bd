package cognito

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"
)

// symbolSet is the special-character class Cognito counts toward the
// RequireSymbols rule. The pipe character is deliberately absent; clients
// validate against the same set.
const symbolSet = "^$*.[]{}()?\"!@#%&/\\,><':;_~`=+-"

const maxPasswordLength = 99

// PasswordPolicy is the user pool's password policy as returned by
// DescribeUserPool.
type PasswordPolicy struct {
	MinimumLength    int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumbers   bool
	RequireSymbols   bool
}

// Pattern compiles the policy into a lookahead regular expression suitable
// for client-side validators. Lookahead groups are appended in a fixed
// order so generated patterns stay stable across calls.
func (p PasswordPolicy) Pattern() string {
	var b strings.Builder
	b.WriteString("^")
	if p.RequireUppercase {
		b.WriteString("(?=.*[A-Z])")
	}
	if p.RequireLowercase {
		b.WriteString("(?=.*[a-z])")
	}
	if p.RequireNumbers {
		b.WriteString("(?=.*[0-9])")
	}
	if p.RequireSymbols {
		b.WriteString(`(?=.*[\^$*.\[\]{}()?"!@#%&/\\,><':;_~` + "`" + `=+\-])`)
	}
	fmt.Fprintf(&b, `[^\s]{%d,%d}$`, p.MinimumLength, maxPasswordLength)
	return b.String()
}

// Matches reports whether password satisfies the policy. The check mirrors
// the lookahead pattern; Go's regexp engine has no lookahead support, so
// the predicate is evaluated directly.
func (p PasswordPolicy) Matches(password string) bool {
	runes := []rune(password)
	if len(runes) < p.MinimumLength || len(runes) > maxPasswordLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range runes {
		switch {
		case unicode.IsSpace(r):
			return false
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
		if strings.ContainsRune(symbolSet, r) {
			hasSymbol = true
		}
	}

	if p.RequireUppercase && !hasUpper {
		return false
	}
	if p.RequireLowercase && !hasLower {
		return false
	}
	if p.RequireNumbers && !hasDigit {
		return false
	}
	if p.RequireSymbols && !hasSymbol {
		return false
	}
	return true
}

// Message renders the policy as a human-readable requirement sentence.
func (p PasswordPolicy) Message() string {
	parts := []string{fmt.Sprintf("be at least %d characters long", p.MinimumLength)}
	if p.RequireUppercase {
		parts = append(parts, "contain an uppercase letter")
	}
	if p.RequireLowercase {
		parts = append(parts, "contain a lowercase letter")
	}
	if p.RequireNumbers {
		parts = append(parts, "contain a number")
	}
	if p.RequireSymbols {
		parts = append(parts, "contain a special character")
	}
	return "Password must " + strings.Join(parts, ", ") + "."
}

// PoolDescriber is the slice of Client the resolver needs.
type PoolDescriber interface {
	DescribeUserPool(ctx context.Context) (UserPool, error)
}

// PolicyResolver fetches the user pool's password policy once and caches it
// for its own lifetime.
type PolicyResolver struct {
	client PoolDescriber

	mu     sync.Mutex
	cached *PasswordPolicy
}

// NewPolicyResolver creates a resolver backed by the given client.
func NewPolicyResolver(client PoolDescriber) *PolicyResolver {
	return &PolicyResolver{client: client}
}

// Resolve returns the cached policy, fetching pool metadata on first use.
func (r *PolicyResolver) Resolve(ctx context.Context) (PasswordPolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil {
		return *r.cached, nil
	}

	pool, err := r.client.DescribeUserPool(ctx)
	if err != nil {
		return PasswordPolicy{}, fmt.Errorf("failed to describe user pool: %w", err)
	}

	policy := pool.PasswordPolicy
	if policy.MinimumLength == 0 {
		policy.MinimumLength = 8
	}
	r.cached = &policy
	return policy, nil
}
