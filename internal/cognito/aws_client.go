package cognito

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
)

// AWSClient implements Client using the AWS SDK v2 admin APIs.
type AWSClient struct {
	cip          *cip.Client
	userPoolID   string
	clientID     string
	clientSecret string
}

// NewAWSClient creates a new AWSClient for the given region, pool and app client.
func NewAWSClient(ctx context.Context, region, userPoolID, clientID, clientSecret string) (*AWSClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &AWSClient{
		cip:          cip.NewFromConfig(cfg),
		userPoolID:   userPoolID,
		clientID:     clientID,
		clientSecret: clientSecret,
	}, nil
}

func (c *AWSClient) secretHash(username string) *string {
	if c.clientSecret == "" {
		return nil
	}
	h := ComputeSecretHash(username, c.clientID, c.clientSecret)
	return &h
}

func (c *AWSClient) Authenticate(ctx context.Context, input AuthenticateInput) (AuthenticateOutput, error) {
	authParams := map[string]string{
		"USERNAME": input.Username,
		"PASSWORD": input.Password,
	}
	if h := c.secretHash(input.Username); h != nil {
		authParams["SECRET_HASH"] = *h
	}

	out, err := c.cip.AdminInitiateAuth(ctx, &cip.AdminInitiateAuthInput{
		UserPoolId:     &c.userPoolID,
		ClientId:       &c.clientID,
		AuthFlow:       types.AuthFlowTypeAdminUserPasswordAuth,
		AuthParameters: authParams,
	})
	if err != nil {
		return AuthenticateOutput{}, mapAWSError(err)
	}
	return authenticateOutput(out.AuthenticationResult, out.ChallengeName, out.Session, out.ChallengeParameters)
}

func (c *AWSClient) RespondToChallenge(ctx context.Context, input ChallengeInput) (AuthenticateOutput, error) {
	key, ok := challengeResponseKey(input.ChallengeName)
	if !ok {
		return AuthenticateOutput{}, fmt.Errorf("unsupported challenge %q: %w", input.ChallengeName, ErrInvalidParameter)
	}

	responses := map[string]string{
		"USERNAME": input.Username,
		key:        input.Answer,
	}
	if h := c.secretHash(input.Username); h != nil {
		responses["SECRET_HASH"] = *h
	}

	out, err := c.cip.AdminRespondToAuthChallenge(ctx, &cip.AdminRespondToAuthChallengeInput{
		UserPoolId:         &c.userPoolID,
		ClientId:           &c.clientID,
		ChallengeName:      types.ChallengeNameType(input.ChallengeName),
		ChallengeResponses: responses,
		Session:            &input.Session,
	})
	if err != nil {
		return AuthenticateOutput{}, mapAWSError(err)
	}
	return authenticateOutput(out.AuthenticationResult, out.ChallengeName, out.Session, out.ChallengeParameters)
}

func (c *AWSClient) RefreshTokens(ctx context.Context, input RefreshInput) (AuthenticateOutput, error) {
	authParams := map[string]string{
		"REFRESH_TOKEN": input.RefreshToken,
	}
	if h := c.secretHash(input.Username); h != nil {
		authParams["SECRET_HASH"] = *h
	}

	out, err := c.cip.AdminInitiateAuth(ctx, &cip.AdminInitiateAuthInput{
		UserPoolId:     &c.userPoolID,
		ClientId:       &c.clientID,
		AuthFlow:       types.AuthFlowTypeRefreshTokenAuth,
		AuthParameters: authParams,
	})
	if err != nil {
		return AuthenticateOutput{}, mapAWSError(err)
	}
	return authenticateOutput(out.AuthenticationResult, out.ChallengeName, out.Session, out.ChallengeParameters)
}

func (c *AWSClient) Register(ctx context.Context, input RegisterInput) (RegisterOutput, error) {
	out, err := c.cip.SignUp(ctx, &cip.SignUpInput{
		ClientId:       &c.clientID,
		SecretHash:     c.secretHash(input.Username),
		Username:       &input.Username,
		Password:       &input.Password,
		UserAttributes: attributeList(input.Attributes),
	})
	if err != nil {
		return RegisterOutput{}, mapAWSError(err)
	}
	delivery := ""
	if out.CodeDeliveryDetails != nil && out.CodeDeliveryDetails.DeliveryMedium != "" {
		delivery = string(out.CodeDeliveryDetails.DeliveryMedium)
	}
	return RegisterOutput{
		Subject:      aws.ToString(out.UserSub),
		Confirmed:    out.UserConfirmed,
		CodeDelivery: delivery,
	}, nil
}

func (c *AWSClient) ConfirmSignUp(ctx context.Context, input ConfirmSignUpInput) error {
	_, err := c.cip.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         &c.clientID,
		SecretHash:       c.secretHash(input.Username),
		Username:         &input.Username,
		ConfirmationCode: &input.Code,
	})
	if err != nil {
		return mapAWSError(err)
	}
	return nil
}

func (c *AWSClient) ResendConfirmationCode(ctx context.Context, username string) error {
	_, err := c.cip.ResendConfirmationCode(ctx, &cip.ResendConfirmationCodeInput{
		ClientId:   &c.clientID,
		SecretHash: c.secretHash(username),
		Username:   &username,
	})
	if err != nil {
		return mapAWSError(err)
	}
	return nil
}

func (c *AWSClient) SendResetLink(ctx context.Context, username string) (Outcome, error) {
	_, err := c.cip.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId:   &c.clientID,
		SecretHash: c.secretHash(username),
		Username:   &username,
	})
	if err != nil {
		return resetOutcome(mapAWSError(err))
	}
	return OutcomeResetSent, nil
}

func (c *AWSClient) ResetPassword(ctx context.Context, input ResetPasswordInput) (Outcome, error) {
	_, err := c.cip.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         &c.clientID,
		SecretHash:       c.secretHash(input.Username),
		Username:         &input.Username,
		ConfirmationCode: &input.Code,
		Password:         &input.NewPassword,
	})
	if err != nil {
		return resetOutcome(mapAWSError(err))
	}
	return OutcomeResetComplete, nil
}

func (c *AWSClient) InviteUser(ctx context.Context, input InviteInput) (InviteOutput, error) {
	in := &cip.AdminCreateUserInput{
		UserPoolId:             &c.userPoolID,
		Username:               &input.Username,
		UserAttributes:         attributeList(input.Attributes),
		DesiredDeliveryMediums: []types.DeliveryMediumType{types.DeliveryMediumTypeEmail},
	}
	if input.TemporaryPassword != "" {
		in.TemporaryPassword = &input.TemporaryPassword
	}

	out, err := c.cip.AdminCreateUser(ctx, in)
	if err != nil {
		return InviteOutput{}, mapAWSError(err)
	}

	result := InviteOutput{}
	if out.User != nil {
		result.Status = string(out.User.UserStatus)
		for _, attr := range out.User.Attributes {
			if aws.ToString(attr.Name) == "sub" {
				result.Subject = aws.ToString(attr.Value)
			}
		}
	}
	return result, nil
}

func (c *AWSClient) ConfirmPassword(ctx context.Context, input ConfirmPasswordInput) error {
	_, err := c.cip.AdminSetUserPassword(ctx, &cip.AdminSetUserPasswordInput{
		UserPoolId: &c.userPoolID,
		Username:   &input.Username,
		Password:   &input.Password,
		Permanent:  true,
	})
	if err != nil {
		return mapAWSError(err)
	}
	return nil
}

func (c *AWSClient) SetUserAttributes(ctx context.Context, input SetAttributesInput) error {
	_, err := c.cip.AdminUpdateUserAttributes(ctx, &cip.AdminUpdateUserAttributesInput{
		UserPoolId:     &c.userPoolID,
		Username:       &input.Username,
		UserAttributes: attributeList(input.Attributes),
	})
	if err != nil {
		return mapAWSError(err)
	}
	return nil
}

func (c *AWSClient) GetUser(ctx context.Context, username string) (UserRecord, error) {
	out, err := c.cip.AdminGetUser(ctx, &cip.AdminGetUserInput{
		UserPoolId: &c.userPoolID,
		Username:   &username,
	})
	if err != nil {
		return UserRecord{}, mapAWSError(err)
	}

	record := UserRecord{
		Username:   aws.ToString(out.Username),
		Status:     string(out.UserStatus),
		Enabled:    out.Enabled,
		Attributes: make(map[string]string, len(out.UserAttributes)),
	}
	for _, attr := range out.UserAttributes {
		record.Attributes[aws.ToString(attr.Name)] = aws.ToString(attr.Value)
	}
	record.Subject = record.Attributes["sub"]
	for _, setting := range out.UserMFASettingList {
		if setting == "SOFTWARE_TOKEN_MFA" || setting == "SMS_MFA" {
			record.MFAEnabled = true
		}
	}
	return record, nil
}

func (c *AWSClient) DeleteUser(ctx context.Context, username string) error {
	_, err := c.cip.AdminDeleteUser(ctx, &cip.AdminDeleteUserInput{
		UserPoolId: &c.userPoolID,
		Username:   &username,
	})
	if err != nil {
		return mapAWSError(err)
	}
	return nil
}

func (c *AWSClient) AssociateSoftwareToken(ctx context.Context, accessToken string) (string, error) {
	out, err := c.cip.AssociateSoftwareToken(ctx, &cip.AssociateSoftwareTokenInput{
		AccessToken: &accessToken,
	})
	if err != nil {
		return "", mapAWSError(err)
	}
	return aws.ToString(out.SecretCode), nil
}

func (c *AWSClient) VerifySoftwareToken(ctx context.Context, input VerifySoftwareTokenInput) error {
	out, err := c.cip.VerifySoftwareToken(ctx, &cip.VerifySoftwareTokenInput{
		AccessToken: &input.AccessToken,
		UserCode:    &input.Code,
	})
	if err != nil {
		return mapAWSError(err)
	}
	if out.Status != types.VerifySoftwareTokenResponseTypeSuccess {
		return fmt.Errorf("verification returned %s: %w", out.Status, ErrSoftwareTokenMismatch)
	}
	return nil
}

func (c *AWSClient) SetMFAPreference(ctx context.Context, input SetMFAPreferenceInput) error {
	_, err := c.cip.SetUserMFAPreference(ctx, &cip.SetUserMFAPreferenceInput{
		AccessToken: &input.AccessToken,
		SoftwareTokenMfaSettings: &types.SoftwareTokenMfaSettingsType{
			Enabled:      input.Enabled,
			PreferredMfa: input.Enabled,
		},
	})
	if err != nil {
		return mapAWSError(err)
	}
	return nil
}

func (c *AWSClient) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.cip.GlobalSignOut(ctx, &cip.GlobalSignOutInput{
		AccessToken: &accessToken,
	})
	if err != nil {
		return mapAWSError(err)
	}
	return nil
}

func (c *AWSClient) DescribeUserPool(ctx context.Context) (UserPool, error) {
	out, err := c.cip.DescribeUserPool(ctx, &cip.DescribeUserPoolInput{
		UserPoolId: &c.userPoolID,
	})
	if err != nil {
		return UserPool{}, mapAWSError(err)
	}
	if out.UserPool == nil {
		return UserPool{}, fmt.Errorf("unexpected nil user pool")
	}

	pool := UserPool{
		ID:   aws.ToString(out.UserPool.Id),
		Name: aws.ToString(out.UserPool.Name),
	}
	if out.UserPool.Policies != nil && out.UserPool.Policies.PasswordPolicy != nil {
		p := out.UserPool.Policies.PasswordPolicy
		pool.PasswordPolicy = PasswordPolicy{
			MinimumLength:    int(aws.ToInt32(p.MinimumLength)),
			RequireUppercase: p.RequireUppercase,
			RequireLowercase: p.RequireLowercase,
			RequireNumbers:   p.RequireNumbers,
			RequireSymbols:   p.RequireSymbols,
		}
	}
	return pool, nil
}

// challengeResponseKey returns the ChallengeResponses field name that carries
// the user's answer for a given challenge.
func challengeResponseKey(name string) (string, bool) {
	switch name {
	case ChallengeNewPasswordRequired:
		return "NEW_PASSWORD", true
	case ChallengeSoftwareTokenMFA:
		return "SOFTWARE_TOKEN_MFA_CODE", true
	case ChallengeSMSMFA:
		return "SMS_MFA_CODE", true
	case ChallengeSelectMFAType:
		return "ANSWER", true
	}
	return "", false
}

func authenticateOutput(result *types.AuthenticationResultType, challenge types.ChallengeNameType, session *string, params map[string]string) (AuthenticateOutput, error) {
	if result != nil {
		return AuthenticateOutput{Result: &AuthResult{
			IDToken:      aws.ToString(result.IdToken),
			AccessToken:  aws.ToString(result.AccessToken),
			RefreshToken: aws.ToString(result.RefreshToken),
			ExpiresIn:    result.ExpiresIn,
			TokenType:    aws.ToString(result.TokenType),
		}}, nil
	}
	if challenge != "" {
		return AuthenticateOutput{Challenge: &Challenge{
			Name:       string(challenge),
			Session:    aws.ToString(session),
			Parameters: params,
		}}, nil
	}
	return AuthenticateOutput{}, fmt.Errorf("provider returned neither result nor challenge")
}

func attributeList(attrs map[string]string) []types.AttributeType {
	list := make([]types.AttributeType, 0, len(attrs))
	for name, value := range attrs {
		list = append(list, types.AttributeType{Name: aws.String(name), Value: aws.String(value)})
	}
	return list
}

// resetOutcome converts mapped reset-flow errors to outcome values so callers
// can branch without try/catch. Unexpected errors propagate unchanged.
func resetOutcome(err error) (Outcome, error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return OutcomeInvalidUser, nil
	case errors.Is(err, ErrInvalidCode), errors.Is(err, ErrCodeExpired):
		return OutcomeInvalidToken, nil
	case errors.Is(err, ErrInvalidPassword):
		return OutcomeInvalidPassword, nil
	case errors.Is(err, ErrLimitExceeded), errors.Is(err, ErrTooManyRequests):
		return OutcomeExceeded, nil
	}
	return OutcomeSuccess, err
}

// mapAWSError converts AWS SDK errors to cognito sentinel errors.
func mapAWSError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("cognito: %w", err)
	}

	switch apiErr.ErrorCode() {
	case "UsernameExistsException":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrUserAlreadyExists)
	case "UserNotFoundException":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrUserNotFound)
	case "UserNotConfirmedException":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrUserNotConfirmed)
	case "InvalidPasswordException":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrInvalidPassword)
	case "CodeMismatchException":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrInvalidCode)
	case "ExpiredCodeException":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrCodeExpired)
	case "TooManyRequestsException":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrTooManyRequests)
	case "NotAuthorizedException":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrNotAuthorized)
	case "LimitExceededException":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrLimitExceeded)
	case "PasswordResetRequiredException":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrPasswordResetRequired)
	case "InvalidParameterException":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrInvalidParameter)
	case "SoftwareTokenMFANotFoundException":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrMFAMethodNotFound)
	case "EnableSoftwareTokenMFAException":
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), ErrSoftwareTokenMismatch)
	default:
		return fmt.Errorf("cognito %s: %w", apiErr.ErrorCode(), err)
	}
}

// Compile-time check: AWSClient implements Client.
var _ Client = (*AWSClient)(nil)
