package service

import (
	"context"
	"fmt"

	"github.com/authbridge/authbridge/internal/claim"
	"github.com/authbridge/authbridge/internal/cognito"
	"github.com/authbridge/authbridge/internal/config"
	"github.com/authbridge/authbridge/internal/model"
	"github.com/authbridge/authbridge/internal/repository"
)

// UserService exposes profile, invite, attribute update and deletion on top
// of the provider's admin API and the local user repository.
type UserService struct {
	client      cognito.Client
	users       repository.UserRepository
	mapping     config.FieldMapping
	allowDelete bool
}

func NewUserService(client cognito.Client, users repository.UserRepository, mapping config.FieldMapping, allowDelete bool) *UserService {
	return &UserService{
		client:      client,
		users:       users,
		mapping:     mapping,
		allowDelete: allowDelete,
	}
}

// Profile merges the provider's user record with the local one, translating
// attributes through the configured field mapping.
type Profile struct {
	User       model.User        `json:"user"`
	Status     string            `json:"status"`
	MFAEnabled bool              `json:"mfa_enabled"`
	Attributes map[string]string `json:"attributes"`
}

func (s *UserService) Profile(ctx context.Context, c *claim.Claim) (Profile, error) {
	record, err := s.client.GetUser(ctx, c.Username)
	if err != nil {
		return Profile{}, err
	}

	user, err := s.users.GetBySubject(ctx, c.Subject)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to load local user: %w", err)
	}

	mapped := make(map[string]string)
	for attr, value := range record.Attributes {
		if field, ok := s.mapping.Lookup(attr); ok {
			mapped[field] = value
		}
	}

	return Profile{
		User:       user,
		Status:     record.Status,
		MFAEnabled: record.MFAEnabled,
		Attributes: mapped,
	}, nil
}

// Invite admin-creates a user; Cognito generates and delivers the temporary
// password. The invited user lands in FORCE_CHANGE_PASSWORD status, so the
// first login walks the NEW_PASSWORD_REQUIRED challenge.
func (s *UserService) Invite(ctx context.Context, email string, attributes map[string]string) (cognito.InviteOutput, error) {
	if email == "" {
		return cognito.InviteOutput{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	attrs := map[string]string{"email": email, "email_verified": "true"}
	for name, value := range attributes {
		if _, ok := s.mapping.Lookup(name); !ok {
			return cognito.InviteOutput{}, fmt.Errorf("%w: unmapped attribute %q", ErrInvalidInput, name)
		}
		attrs[name] = value
	}

	out, err := s.client.InviteUser(ctx, cognito.InviteInput{
		Username:   email,
		Attributes: attrs,
	})
	if err != nil {
		return cognito.InviteOutput{}, err
	}

	if out.Subject != "" {
		if _, err := s.users.GetOrCreate(ctx, out.Subject, email); err != nil {
			return cognito.InviteOutput{}, fmt.Errorf("failed to provision invited user: %w", err)
		}
	}
	return out, nil
}

// UpdateAttributes pushes attribute changes to the provider and mirrors
// mapped fields onto the local record. Attributes outside the configured
// mapping are rejected rather than silently skipped.
func (s *UserService) UpdateAttributes(ctx context.Context, c *claim.Claim, attributes map[string]string) (model.User, error) {
	if len(attributes) == 0 {
		return model.User{}, fmt.Errorf("%w: no attributes given", ErrInvalidInput)
	}

	fields := make(map[string]string, len(attributes))
	for name, value := range attributes {
		field, ok := s.mapping.Lookup(name)
		if !ok {
			return model.User{}, fmt.Errorf("%w: unmapped attribute %q", ErrInvalidInput, name)
		}
		fields[field] = value
	}

	if err := s.client.SetUserAttributes(ctx, cognito.SetAttributesInput{
		Username:   c.Username,
		Attributes: attributes,
	}); err != nil {
		return model.User{}, err
	}

	user, err := s.users.GetBySubject(ctx, c.Subject)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to load local user: %w", err)
	}
	applyFields(&user, fields)

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to update local user: %w", err)
	}
	return updated, nil
}

// Delete removes the user at the provider and locally. Gated by the
// delete-user feature flag.
func (s *UserService) Delete(ctx context.Context, c *claim.Claim) error {
	if !s.allowDelete {
		return fmt.Errorf("%w: user deletion is disabled", ErrForbidden)
	}

	if err := s.client.DeleteUser(ctx, c.Username); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, c.Subject); err != nil {
		return fmt.Errorf("failed to delete local user: %w", err)
	}
	return nil
}

func applyFields(user *model.User, fields map[string]string) {
	for field, value := range fields {
		switch field {
		case "email":
			user.Email = value
		case "name":
			user.Name = value
		case "phone_number":
			user.PhoneNumber = value
		}
	}
}
