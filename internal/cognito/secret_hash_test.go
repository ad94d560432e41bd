package cognito_test

import (
	"testing"

	"github.com/authbridge/authbridge/internal/cognito"
)

func TestComputeSecretHash(t *testing.T) {
	tests := []struct {
		name         string
		username     string
		clientID     string
		clientSecret string
		want         string
	}{
		{
			name:         "known reference value",
			username:     "alice@example.com",
			clientID:     "1example23456789",
			clientSecret: "secret-key",
			// Pre-computed: Base64(HMAC_SHA256("secret-key", "alice@example.com"+"1example23456789"))
			want: "+gq/iJj9qkKJcoNUrFvj2g/nrIRSw9htDPLVF0gGJIg=",
		},
		{
			name:         "different user changes output",
			username:     "bob@example.com",
			clientID:     "1example23456789",
			clientSecret: "secret-key",
			want:         "AbGIPqu4S+sjK6dxirrdN0NNsgIiKaRh6FxupOnMbYs=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cognito.ComputeSecretHash(tt.username, tt.clientID, tt.clientSecret)
			if got != tt.want {
				t.Errorf("ComputeSecretHash() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComputeSecretHash_DeterministicAndDistinct(t *testing.T) {
	h1 := cognito.ComputeSecretHash("user", "client", "secret")
	h2 := cognito.ComputeSecretHash("user", "client", "secret")
	if h1 != h2 {
		t.Error("same inputs should produce same hash")
	}

	h3 := cognito.ComputeSecretHash("user2", "client", "secret")
	if h1 == h3 {
		t.Error("different usernames should produce different hashes")
	}

	h4 := cognito.ComputeSecretHash("user", "client", "other-secret")
	if h1 == h4 {
		t.Error("different secrets should produce different hashes")
	}
}
