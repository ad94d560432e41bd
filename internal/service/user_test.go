package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authbridge/authbridge/internal/claim"
	"github.com/authbridge/authbridge/internal/cognito"
	"github.com/authbridge/authbridge/internal/config"
	"github.com/authbridge/authbridge/internal/model"
	"github.com/authbridge/authbridge/internal/repository"
	"github.com/authbridge/authbridge/internal/service"
)

type userMockClient struct {
	cognito.Client

	getUserFn       func(ctx context.Context, username string) (cognito.UserRecord, error)
	inviteFn        func(ctx context.Context, input cognito.InviteInput) (cognito.InviteOutput, error)
	setAttributesFn func(ctx context.Context, input cognito.SetAttributesInput) error
	deleteUserFn    func(ctx context.Context, username string) error
}

func (m *userMockClient) GetUser(ctx context.Context, username string) (cognito.UserRecord, error) {
	return m.getUserFn(ctx, username)
}

func (m *userMockClient) InviteUser(ctx context.Context, input cognito.InviteInput) (cognito.InviteOutput, error) {
	return m.inviteFn(ctx, input)
}

func (m *userMockClient) SetUserAttributes(ctx context.Context, input cognito.SetAttributesInput) error {
	return m.setAttributesFn(ctx, input)
}

func (m *userMockClient) DeleteUser(ctx context.Context, username string) error {
	return m.deleteUserFn(ctx, username)
}

type userRepoMock struct {
	repository.UserRepository

	getBySubjectFn func(ctx context.Context, subject string) (model.User, error)
	getOrCreateFn  func(ctx context.Context, subject, email string) (model.User, error)
	updateFn       func(ctx context.Context, user model.User) (model.User, error)
	deleteFn       func(ctx context.Context, subject string) error
}

func (m *userRepoMock) GetBySubject(ctx context.Context, subject string) (model.User, error) {
	return m.getBySubjectFn(ctx, subject)
}

func (m *userRepoMock) GetOrCreate(ctx context.Context, subject, email string) (model.User, error) {
	return m.getOrCreateFn(ctx, subject, email)
}

func (m *userRepoMock) Update(ctx context.Context, user model.User) (model.User, error) {
	return m.updateFn(ctx, user)
}

func (m *userRepoMock) Delete(ctx context.Context, subject string) error {
	return m.deleteFn(ctx, subject)
}

func defaultMapping() config.FieldMapping {
	return config.ParseFieldMapping("email:email,name:name,phone_number:phone_number")
}

func testClaim() *claim.Claim {
	return &claim.Claim{
		Token:    "aaa.bbb.ccc",
		Username: "alice@example.com",
		Subject:  "sub-1",
	}
}

func TestUserService_Profile(t *testing.T) {
	client := &userMockClient{
		getUserFn: func(_ context.Context, username string) (cognito.UserRecord, error) {
			assert.Equal(t, "alice@example.com", username)
			return cognito.UserRecord{
				Username:   username,
				Subject:    "sub-1",
				Status:     "CONFIRMED",
				Enabled:    true,
				MFAEnabled: true,
				Attributes: map[string]string{
					"email":          "alice@example.com",
					"name":           "Alice",
					"custom:tenant":  "acme",
					"email_verified": "true",
				},
			}, nil
		},
	}
	users := &userRepoMock{
		getBySubjectFn: func(_ context.Context, subject string) (model.User, error) {
			return model.User{ID: "local-1", Subject: subject, Email: "alice@example.com"}, nil
		},
	}
	svc := service.NewUserService(client, users, defaultMapping(), false)

	profile, err := svc.Profile(context.Background(), testClaim())
	require.NoError(t, err)

	assert.Equal(t, "local-1", profile.User.ID)
	assert.Equal(t, "CONFIRMED", profile.Status)
	assert.True(t, profile.MFAEnabled)
	// Only mapped attributes survive the merge.
	assert.Equal(t, map[string]string{
		"email": "alice@example.com",
		"name":  "Alice",
	}, profile.Attributes)
}

func TestUserService_Invite(t *testing.T) {
	var invited *cognito.InviteInput
	provisioned := false
	client := &userMockClient{
		inviteFn: func(_ context.Context, input cognito.InviteInput) (cognito.InviteOutput, error) {
			invited = &input
			return cognito.InviteOutput{Subject: "sub-new", Status: "FORCE_CHANGE_PASSWORD"}, nil
		},
	}
	users := &userRepoMock{
		getOrCreateFn: func(_ context.Context, subject, email string) (model.User, error) {
			provisioned = true
			assert.Equal(t, "sub-new", subject)
			assert.Equal(t, "bob@example.com", email)
			return model.User{ID: "local-2", Subject: subject, Email: email}, nil
		},
	}
	svc := service.NewUserService(client, users, defaultMapping(), false)

	out, err := svc.Invite(context.Background(), "bob@example.com", map[string]string{"name": "Bob"})
	require.NoError(t, err)

	assert.Equal(t, "FORCE_CHANGE_PASSWORD", out.Status)
	assert.True(t, provisioned)
	require.NotNil(t, invited)
	assert.Equal(t, "bob@example.com", invited.Username)
	assert.Equal(t, "bob@example.com", invited.Attributes["email"])
	assert.Equal(t, "true", invited.Attributes["email_verified"])
	assert.Equal(t, "Bob", invited.Attributes["name"])
}

func TestUserService_Invite_RejectsInvalidInput(t *testing.T) {
	svc := service.NewUserService(&userMockClient{}, &userRepoMock{}, defaultMapping(), false)

	_, err := svc.Invite(context.Background(), "", nil)
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.Invite(context.Background(), "bob@example.com", map[string]string{"custom:tenant": "acme"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestUserService_UpdateAttributes(t *testing.T) {
	var pushed *cognito.SetAttributesInput
	client := &userMockClient{
		setAttributesFn: func(_ context.Context, input cognito.SetAttributesInput) error {
			pushed = &input
			return nil
		},
	}
	users := &userRepoMock{
		getBySubjectFn: func(_ context.Context, subject string) (model.User, error) {
			return model.User{ID: "local-1", Subject: subject, Name: "Alice"}, nil
		},
		updateFn: func(_ context.Context, user model.User) (model.User, error) {
			return user, nil
		},
	}
	svc := service.NewUserService(client, users, defaultMapping(), false)

	updated, err := svc.UpdateAttributes(context.Background(), testClaim(), map[string]string{
		"name":         "Alice Smith",
		"phone_number": "+15551234567",
	})
	require.NoError(t, err)

	require.NotNil(t, pushed)
	assert.Equal(t, "alice@example.com", pushed.Username)
	assert.Equal(t, "Alice Smith", pushed.Attributes["name"])
	assert.Equal(t, "Alice Smith", updated.Name)
	assert.Equal(t, "+15551234567", updated.PhoneNumber)
}

func TestUserService_UpdateAttributes_RejectsUnmapped(t *testing.T) {
	svc := service.NewUserService(&userMockClient{}, &userRepoMock{}, defaultMapping(), false)

	_, err := svc.UpdateAttributes(context.Background(), testClaim(), map[string]string{"custom:tenant": "acme"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.UpdateAttributes(context.Background(), testClaim(), nil)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestUserService_Delete(t *testing.T) {
	remoteDeleted := false
	localDeleted := false
	client := &userMockClient{
		deleteUserFn: func(_ context.Context, username string) error {
			remoteDeleted = true
			assert.Equal(t, "alice@example.com", username)
			return nil
		},
	}
	users := &userRepoMock{
		deleteFn: func(_ context.Context, subject string) error {
			localDeleted = true
			assert.Equal(t, "sub-1", subject)
			return nil
		},
	}
	svc := service.NewUserService(client, users, defaultMapping(), true)

	require.NoError(t, svc.Delete(context.Background(), testClaim()))
	assert.True(t, remoteDeleted)
	assert.True(t, localDeleted)
}

func TestUserService_Delete_GatedByFlag(t *testing.T) {
	svc := service.NewUserService(&userMockClient{}, &userRepoMock{}, defaultMapping(), false)

	err := svc.Delete(context.Background(), testClaim())
	assert.ErrorIs(t, err, service.ErrForbidden)
}
