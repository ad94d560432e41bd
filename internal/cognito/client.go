package cognito

import "context"

// Challenge names returned by Cognito that this service knows how to drive.
const (
	ChallengeNewPasswordRequired = "NEW_PASSWORD_REQUIRED"
	ChallengeSoftwareTokenMFA    = "SOFTWARE_TOKEN_MFA"
	ChallengeSMSMFA              = "SMS_MFA"
	ChallengeSelectMFAType       = "SELECT_MFA_TYPE"
)

// Client defines the interface for Cognito identity operations.
// Every method maps to exactly one provider API call.
type Client interface {
	Authenticate(ctx context.Context, input AuthenticateInput) (AuthenticateOutput, error)
	RespondToChallenge(ctx context.Context, input ChallengeInput) (AuthenticateOutput, error)
	RefreshTokens(ctx context.Context, input RefreshInput) (AuthenticateOutput, error)
	Register(ctx context.Context, input RegisterInput) (RegisterOutput, error)
	ConfirmSignUp(ctx context.Context, input ConfirmSignUpInput) error
	ResendConfirmationCode(ctx context.Context, username string) error
	SendResetLink(ctx context.Context, username string) (Outcome, error)
	ResetPassword(ctx context.Context, input ResetPasswordInput) (Outcome, error)
	InviteUser(ctx context.Context, input InviteInput) (InviteOutput, error)
	ConfirmPassword(ctx context.Context, input ConfirmPasswordInput) error
	SetUserAttributes(ctx context.Context, input SetAttributesInput) error
	GetUser(ctx context.Context, username string) (UserRecord, error)
	DeleteUser(ctx context.Context, username string) error
	AssociateSoftwareToken(ctx context.Context, accessToken string) (string, error)
	VerifySoftwareToken(ctx context.Context, input VerifySoftwareTokenInput) error
	SetMFAPreference(ctx context.Context, input SetMFAPreferenceInput) error
	SignOut(ctx context.Context, accessToken string) error
	DescribeUserPool(ctx context.Context) (UserPool, error)
}

// AuthenticateInput contains the credentials for an admin-initiated login.
type AuthenticateInput struct {
	Username string
	Password string
}

// AuthResult holds the tokens issued after fully successful authentication.
type AuthResult struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int32
	TokenType    string
}

// Challenge describes a pending challenge returned instead of tokens.
type Challenge struct {
	Name       string
	Session    string
	Parameters map[string]string
}

// AuthenticateOutput carries exactly one of Result or Challenge.
type AuthenticateOutput struct {
	Result    *AuthResult
	Challenge *Challenge
}

// ChallengeInput contains the answer to a pending authentication challenge.
type ChallengeInput struct {
	ChallengeName string
	Session       string
	Username      string
	Answer        string
}

// RefreshInput contains the parameters for refreshing tokens.
type RefreshInput struct {
	Username     string
	RefreshToken string
}

// RegisterInput contains the parameters for signing up a new user.
type RegisterInput struct {
	Username   string
	Password   string
	Attributes map[string]string
}

// RegisterOutput contains the result of a successful sign-up.
type RegisterOutput struct {
	Subject      string
	Confirmed    bool
	CodeDelivery string // e.g., "EMAIL"
}

// ConfirmSignUpInput contains the parameters for confirming a sign-up.
type ConfirmSignUpInput struct {
	Username string
	Code     string
}

// ResetPasswordInput contains the parameters for completing a password reset.
type ResetPasswordInput struct {
	Username    string
	Code        string
	NewPassword string
}

// InviteInput contains the parameters for an admin-created user.
// When TemporaryPassword is empty Cognito generates and delivers one.
type InviteInput struct {
	Username          string
	TemporaryPassword string
	Attributes        map[string]string
}

// InviteOutput contains the result of an admin-created user.
type InviteOutput struct {
	Subject string
	Status  string
}

// ConfirmPasswordInput sets a permanent password on a user, clearing any
// forced-change state.
type ConfirmPasswordInput struct {
	Username string
	Password string
}

// SetAttributesInput contains attribute updates for a user.
type SetAttributesInput struct {
	Username   string
	Attributes map[string]string
}

// UserRecord is the provider's view of a user.
type UserRecord struct {
	Username   string
	Subject    string
	Status     string
	Enabled    bool
	MFAEnabled bool
	Attributes map[string]string
}

// VerifySoftwareTokenInput contains the TOTP code proving possession of an
// associated software token.
type VerifySoftwareTokenInput struct {
	AccessToken string
	Code        string
}

// SetMFAPreferenceInput toggles software-token MFA for the calling user.
type SetMFAPreferenceInput struct {
	AccessToken string
	Enabled     bool
}

// UserPool holds the pool metadata consumed by the password policy resolver.
type UserPool struct {
	ID             string
	Name           string
	PasswordPolicy PasswordPolicy
}
