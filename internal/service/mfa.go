package service

import (
	"context"
	"encoding/base32"
	"fmt"

	"github.com/pquerna/otp/totp"

	"github.com/authbridge/authbridge/internal/cognito"
)

// MFAService drives software-token MFA: associate a secret, verify the
// first code, toggle the preference. Secret generation and code checking
// happen at the provider.
type MFAService struct {
	client cognito.Client
	issuer string
}

// NewMFAService creates a new MFAService. issuer names this application in
// authenticator apps.
func NewMFAService(client cognito.Client, issuer string) *MFAService {
	return &MFAService{client: client, issuer: issuer}
}

// Enrollment is the result of associating a software token.
type Enrollment struct {
	Secret     string `json:"secret"`
	OtpauthURL string `json:"otpauth_url"`
}

// Associate requests a software-token secret from the provider and wraps it
// in an otpauth:// provisioning URL for QR rendering.
func (s *MFAService) Associate(ctx context.Context, accessToken, account string) (Enrollment, error) {
	if accessToken == "" {
		return Enrollment{}, fmt.Errorf("%w: access token is required", ErrInvalidInput)
	}

	secret, err := s.client.AssociateSoftwareToken(ctx, accessToken)
	if err != nil {
		return Enrollment{}, err
	}

	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	if err != nil {
		return Enrollment{}, fmt.Errorf("provider returned malformed secret: %w", err)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: account,
		Secret:      raw,
	})
	if err != nil {
		return Enrollment{}, fmt.Errorf("failed to build provisioning key: %w", err)
	}

	return Enrollment{
		Secret:     secret,
		OtpauthURL: key.URL(),
	}, nil
}

// Verify proves possession of the associated software token with a 6-digit
// code, then turns the MFA preference on.
func (s *MFAService) Verify(ctx context.Context, accessToken, code string) error {
	if code == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidInput)
	}

	if err := s.client.VerifySoftwareToken(ctx, cognito.VerifySoftwareTokenInput{
		AccessToken: accessToken,
		Code:        code,
	}); err != nil {
		return err
	}

	return s.client.SetMFAPreference(ctx, cognito.SetMFAPreferenceInput{
		AccessToken: accessToken,
		Enabled:     true,
	})
}

// Enable turns the software-token MFA preference on for an already verified
// token.
func (s *MFAService) Enable(ctx context.Context, accessToken string) error {
	return s.client.SetMFAPreference(ctx, cognito.SetMFAPreferenceInput{
		AccessToken: accessToken,
		Enabled:     true,
	})
}

// Disable turns the software-token MFA preference off.
func (s *MFAService) Disable(ctx context.Context, accessToken string) error {
	return s.client.SetMFAPreference(ctx, cognito.SetMFAPreferenceInput{
		AccessToken: accessToken,
		Enabled:     false,
	})
}
