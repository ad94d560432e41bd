package cognito_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authbridge/authbridge/internal/cognito"
)

func TestPasswordPolicy_Pattern(t *testing.T) {
	tests := []struct {
		name   string
		policy cognito.PasswordPolicy
		want   string
	}{
		{
			name:   "length only",
			policy: cognito.PasswordPolicy{MinimumLength: 8},
			want:   `^[^\s]{8,99}$`,
		},
		{
			name: "uppercase and numbers",
			policy: cognito.PasswordPolicy{
				MinimumLength:    8,
				RequireUppercase: true,
				RequireNumbers:   true,
			},
			want: `^(?=.*[A-Z])(?=.*[0-9])[^\s]{8,99}$`,
		},
		{
			name: "all requirements keep fixed order",
			policy: cognito.PasswordPolicy{
				MinimumLength:    12,
				RequireUppercase: true,
				RequireLowercase: true,
				RequireNumbers:   true,
				RequireSymbols:   true,
			},
			want: `^(?=.*[A-Z])(?=.*[a-z])(?=.*[0-9])(?=.*[\^$*.\[\]{}()?"!@#%&/\\,><':;_~` + "`" + `=+\-])[^\s]{12,99}$`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Pattern())
		})
	}
}

func TestPasswordPolicy_Matches(t *testing.T) {
	policy := cognito.PasswordPolicy{
		MinimumLength:    8,
		RequireUppercase: true,
		RequireNumbers:   true,
	}

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"satisfies all", "Abcdefg1", true},
		{"no uppercase", "abcdefgh", false},
		{"no digit", "Abcdefgh", false},
		{"too short", "Abc1", false},
		{"contains whitespace", "Abcdef 1", false},
		{"longer than minimum", "Abcdefg1xyz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Matches(tt.password))
		})
	}
}

func TestPasswordPolicy_MatchesSymbols(t *testing.T) {
	policy := cognito.PasswordPolicy{
		MinimumLength:  8,
		RequireSymbols: true,
	}

	assert.True(t, policy.Matches("abcdefg!"))
	assert.True(t, policy.Matches("abcdefg$"))
	assert.False(t, policy.Matches("abcdefgh"))
	// The pipe is not part of the accepted symbol set.
	assert.False(t, policy.Matches("abcdefg|"))
}

func TestPasswordPolicy_Message(t *testing.T) {
	policy := cognito.PasswordPolicy{
		MinimumLength:    10,
		RequireUppercase: true,
		RequireSymbols:   true,
	}

	msg := policy.Message()
	assert.Contains(t, msg, "at least 10 characters")
	assert.Contains(t, msg, "uppercase letter")
	assert.Contains(t, msg, "special character")
	assert.NotContains(t, msg, "lowercase")
}

type stubPoolDescriber struct {
	pool  cognito.UserPool
	err   error
	calls int
}

func (s *stubPoolDescriber) DescribeUserPool(context.Context) (cognito.UserPool, error) {
	s.calls++
	return s.pool, s.err
}

func TestPolicyResolver_CachesFirstFetch(t *testing.T) {
	stub := &stubPoolDescriber{pool: cognito.UserPool{
		ID: "us-east-1_example",
		PasswordPolicy: cognito.PasswordPolicy{
			MinimumLength:  10,
			RequireNumbers: true,
		},
	}}
	resolver := cognito.NewPolicyResolver(stub)

	first, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, stub.calls, "pool metadata should be fetched once")
	assert.Equal(t, 10, first.MinimumLength)
}

func TestPolicyResolver_DefaultsMinimumLength(t *testing.T) {
	stub := &stubPoolDescriber{pool: cognito.UserPool{}}
	resolver := cognito.NewPolicyResolver(stub)

	policy, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, policy.MinimumLength)
}

func TestPolicyResolver_PropagatesError(t *testing.T) {
	stub := &stubPoolDescriber{err: errors.New("describe failed")}
	resolver := cognito.NewPolicyResolver(stub)

	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, stub.calls)

	// Errors are not cached; a later call retries.
	_, _ = resolver.Resolve(context.Background())
	assert.Equal(t, 2, stub.calls)
}
