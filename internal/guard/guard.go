// Package guard drives the authentication state machine: credential
// submission, provider challenges, claim issuance and token invalidation.
// All credential checks happen at the identity provider; the guard owns
// only the transitions between attempt, pending challenge and issued claim.
package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/authbridge/authbridge/internal/claim"
	"github.com/authbridge/authbridge/internal/cognito"
	"github.com/authbridge/authbridge/internal/model"
	"github.com/authbridge/authbridge/internal/repository"
	"github.com/authbridge/authbridge/internal/store"
)

var (
	// ErrNoLocalUser indicates the provider authenticated a user with no
	// matching local record and auto-provisioning is disabled.
	ErrNoLocalUser = errors.New("no local user for authenticated subject")
	// ErrUnsupportedChallenge indicates the provider returned a challenge
	// this service cannot drive.
	ErrUnsupportedChallenge = errors.New("unsupported challenge")
)

// Config carries the policy flags that alter state machine transitions.
type Config struct {
	// AddMissingLocalUser provisions a local record on first successful
	// remote authentication instead of failing with ErrNoLocalUser.
	AddMissingLocalUser bool
	// ForcePasswordChange surfaces NEW_PASSWORD_REQUIRED as a challenge the
	// caller must answer.
	ForcePasswordChange bool
	// ForcePasswordAutoUpdate completes NEW_PASSWORD_REQUIRED internally by
	// setting the submitted password as permanent and replaying the attempt.
	ForcePasswordAutoUpdate bool
}

// Result is the outcome of an attempt or challenge response: exactly one of
// Claim (fully authenticated) or Challenge (further action required).
type Result struct {
	Claim     *claim.Claim
	Challenge *claim.ChallengeState
}

// Authenticated reports whether the result carries an issued claim.
func (r Result) Authenticated() bool {
	return r.Claim != nil
}

// Guard implements login, challenge response, token authentication and
// logout on top of the Cognito client and the claim store.
type Guard struct {
	client cognito.Client
	users  repository.UserRepository
	store  store.Store
	cfg    Config
	logger *slog.Logger
}

// New creates a Guard.
func New(client cognito.Client, users repository.UserRepository, tokens store.Store, cfg Config, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		client: client,
		users:  users,
		store:  tokens,
		cfg:    cfg,
		logger: logger,
	}
}

// Attempt runs one authentication attempt. The returned Result carries a
// claim on full success or a challenge the caller must render; a claim is
// never constructed from a pending-challenge response.
func (g *Guard) Attempt(ctx context.Context, username, password string) (Result, error) {
	out, err := g.client.Authenticate(ctx, cognito.AuthenticateInput{
		Username: username,
		Password: password,
	})
	if err != nil {
		return Result{}, err
	}
	return g.settle(ctx, username, password, out, true)
}

// Respond submits the answer to a pending challenge and re-enters the same
// three-way branch as Attempt, supporting multi-step flows such as
// SELECT_MFA_TYPE followed by an MFA code.
func (g *Guard) Respond(ctx context.Context, state claim.ChallengeState, answer string) (Result, error) {
	out, err := g.client.RespondToChallenge(ctx, cognito.ChallengeInput{
		ChallengeName: state.Name,
		Session:       state.Session,
		Username:      state.Username,
		Answer:        answer,
	})
	if err != nil {
		return Result{}, err
	}
	return g.settle(ctx, state.Username, "", out, false)
}

// Refresh exchanges a refresh token for fresh credentials and stores the
// resulting claim.
func (g *Guard) Refresh(ctx context.Context, username, refreshToken string) (Result, error) {
	out, err := g.client.RefreshTokens(ctx, cognito.RefreshInput{
		Username:     username,
		RefreshToken: refreshToken,
	})
	if err != nil {
		return Result{}, err
	}
	return g.settle(ctx, username, "", out, false)
}

// AuthenticateToken resolves a bearer token to its stored claim. Unknown,
// expired or malformed tokens fail with claim.ErrInvalidToken.
func (g *Guard) AuthenticateToken(ctx context.Context, token string) (*claim.Claim, error) {
	if err := claim.ValidateTokenShape(token); err != nil {
		return nil, err
	}
	c, err := g.store.Fetch(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("token not stored or expired: %w", claim.ErrInvalidToken)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Logout releases the stored token record. When forced, the provider is
// additionally told to revoke every token issued to the user.
func (g *Guard) Logout(ctx context.Context, c *claim.Claim, forced bool) error {
	if err := g.store.Release(ctx, c.Token, false); err != nil {
		return err
	}
	if forced {
		if err := g.client.SignOut(ctx, c.Token); err != nil {
			return err
		}
	}
	g.logger.Info("session ended", "username", c.Username, "forced", forced)
	return nil
}

// settle applies the three-way branch over a provider response: challenge,
// authentication result, or neither (hard failure). allowAutoUpdate guards
// the forced-password replay so it runs at most once per attempt.
func (g *Guard) settle(ctx context.Context, username, password string, out cognito.AuthenticateOutput, allowAutoUpdate bool) (Result, error) {
	if ch := out.Challenge; ch != nil {
		return g.settleChallenge(ctx, username, password, ch, allowAutoUpdate)
	}

	if out.Result == nil {
		return Result{}, fmt.Errorf("provider returned neither result nor challenge")
	}

	user, err := g.resolveLocalUser(ctx, username, out.Result.AccessToken)
	if err != nil {
		return Result{}, err
	}

	c, err := claim.New(*out.Result, username, user)
	if err != nil {
		return Result{}, err
	}
	if err := g.store.Put(ctx, c.Token, c, c.TTL()); err != nil {
		return Result{}, fmt.Errorf("failed to store claim: %w", err)
	}

	g.logger.Info("authentication succeeded", "username", username, "subject", c.Subject)
	return Result{Claim: c}, nil
}

func (g *Guard) settleChallenge(ctx context.Context, username, password string, ch *cognito.Challenge, allowAutoUpdate bool) (Result, error) {
	switch ch.Name {
	case cognito.ChallengeNewPasswordRequired:
		if g.cfg.ForcePasswordAutoUpdate && allowAutoUpdate && password != "" {
			return g.autoUpdatePassword(ctx, username, password)
		}
		if !g.cfg.ForcePasswordChange && !g.cfg.ForcePasswordAutoUpdate {
			g.logger.Warn("password change required but forcing is disabled", "username", username)
		}
		return challengeResult(username, ch), nil
	case cognito.ChallengeSoftwareTokenMFA, cognito.ChallengeSMSMFA, cognito.ChallengeSelectMFAType:
		return challengeResult(username, ch), nil
	default:
		return Result{}, fmt.Errorf("%q: %w", ch.Name, ErrUnsupportedChallenge)
	}
}

// autoUpdatePassword sets the submitted password as permanent and replays
// the authentication once, using the new result.
func (g *Guard) autoUpdatePassword(ctx context.Context, username, password string) (Result, error) {
	if err := g.client.ConfirmPassword(ctx, cognito.ConfirmPasswordInput{
		Username: username,
		Password: password,
	}); err != nil {
		return Result{}, fmt.Errorf("failed to confirm password: %w", err)
	}

	out, err := g.client.Authenticate(ctx, cognito.AuthenticateInput{
		Username: username,
		Password: password,
	})
	if err != nil {
		return Result{}, err
	}
	return g.settle(ctx, username, password, out, false)
}

// resolveLocalUser looks up the local record for the authenticated subject
// before trusting the remote claim.
func (g *Guard) resolveLocalUser(ctx context.Context, username, accessToken string) (*model.User, error) {
	sub, err := claim.ExtractSubject(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := g.users.GetBySubject(ctx, sub)
	if errors.Is(err, repository.ErrNotFound) {
		if !g.cfg.AddMissingLocalUser {
			return nil, fmt.Errorf("subject %s: %w", sub, ErrNoLocalUser)
		}
		user, err = g.users.GetOrCreate(ctx, sub, username)
		if err != nil {
			return nil, fmt.Errorf("failed to provision local user: %w", err)
		}
		g.logger.Info("provisioned local user", "subject", sub)
	} else if err != nil {
		return nil, fmt.Errorf("failed to resolve local user: %w", err)
	}
	return &user, nil
}

func challengeResult(username string, ch *cognito.Challenge) Result {
	return Result{Challenge: &claim.ChallengeState{
		Name:       ch.Name,
		Session:    ch.Session,
		Username:   username,
		Parameters: ch.Parameters,
	}}
}
