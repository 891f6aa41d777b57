package password_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/nimbus/pkg/errx"
	"github.com/Abraxas-365/nimbus/pkg/iam"
	"github.com/Abraxas-365/nimbus/pkg/iam/iamtest"
	"github.com/Abraxas-365/nimbus/pkg/iam/password"
	"github.com/Abraxas-365/nimbus/pkg/iam/secrethash"
	"github.com/Abraxas-365/nimbus/pkg/iam/session"
	"github.com/Abraxas-365/nimbus/pkg/kernel"
)

var (
	now      = time.Unix(1_700_000_000, 0)
	client   = secrethash.Client{ID: "client-id", Secret: "client-secret"}
	identity = iam.Identity{IdentityID: kernel.NewIdentityID("eu-west-1:identity"), IdentityPoolID: "eu-west-1:pool"}
)

type fakeStore struct {
	sessions map[kernel.IdentityID]*session.Session
	err      error
	calls    int
}

func (s *fakeStore) Get(_ context.Context, id iam.Identity) (*session.Session, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if got, ok := s.sessions[id.IdentityID]; ok {
		return got, nil
	}
	return nil, session.ErrNotFound
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (n *fakeNotifier) PasswordReset(_ context.Context, address string) error {
	n.sent = append(n.sent, address)
	return n.err
}

func storeWith(expires time.Time) *fakeStore {
	return &fakeStore{sessions: map[kernel.IdentityID]*session.Session{
		identity.IdentityID: {UserID: "9b2c", AccessToken: "access", ExpiresAt: expires},
	}}
}

func newHandler(pool iam.UserPoolAPI, store session.Store, opts ...password.Option) *password.Handler {
	opts = append([]password.Option{password.WithClock(func() time.Time { return now })}, opts...)
	return password.NewHandler(password.Config{Client: client}, pool, store, opts...)
}

func authenticated(body map[string]any) *iam.Request {
	return &iam.Request{Resource: iam.ResourcePassword, Body: body, Identity: identity}
}

func forgotten(body map[string]any) *iam.Request {
	return &iam.Request{Resource: iam.ResourceForgotPassword, Body: body}
}

func assertTyped(t *testing.T, err error, status int, message string) {
	t.Helper()
	gotStatus, body, typed := errx.Classify(err)
	require.True(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, status, gotStatus)
	assert.Equal(t, message, body.Message)
}

// ============================================================================
// Authenticated flow
// ============================================================================

func TestAuthenticated_Success(t *testing.T) {
	pool := &iamtest.UserPool{}
	var in *cip.ChangePasswordInput
	pool.ChangePasswordFn = func(i *cip.ChangePasswordInput) (*cip.ChangePasswordOutput, error) {
		in = i
		return &cip.ChangePasswordOutput{}, nil
	}

	resp, err := newHandler(pool, storeWith(now.Add(time.Hour))).Handle(context.Background(),
		authenticated(map[string]any{"password": "new-pass", "old-password": "old-pass"}))
	require.NoError(t, err)

	assert.Equal(t, iam.Response{"message": "Password changed successfully."}, resp)
	assert.Equal(t, "access", aws.ToString(in.AccessToken))
	assert.Equal(t, "old-pass", aws.ToString(in.PreviousPassword))
	assert.Equal(t, "new-pass", aws.ToString(in.ProposedPassword))
}

func TestAuthenticated_TokenExpiringNowIsUsable(t *testing.T) {
	pool := &iamtest.UserPool{}
	_, err := newHandler(pool, storeWith(now)).Handle(context.Background(),
		authenticated(map[string]any{"password": "new-pass", "old-password": "old-pass"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"ChangePassword"}, pool.Calls)
}

func TestAuthenticated_ExpiredSession(t *testing.T) {
	tests := []struct {
		name     string
		store    *fakeStore
		identity iam.Identity
	}{
		{"expired token", storeWith(now.Add(-time.Second)), identity},
		{"no stored session", &fakeStore{}, identity},
		{"no identity claims", storeWith(now.Add(time.Hour)), iam.Identity{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := &iamtest.UserPool{}
			req := authenticated(map[string]any{"password": "new-pass", "old-password": "old-pass"})
			req.Identity = tt.identity

			_, err := newHandler(pool, tt.store).Handle(context.Background(), req)
			assertTyped(t, err, 400, "Identity provider credentials expired. Please log in and try again.")
			assert.True(t, errx.IsType(err, errx.TypeSessionExpired))
			assert.Empty(t, pool.Calls)
		})
	}
}

func TestAuthenticated_StoreFailurePropagates(t *testing.T) {
	boom := errors.New("dataset unavailable")
	pool := &iamtest.UserPool{}

	_, err := newHandler(pool, &fakeStore{err: boom}).Handle(context.Background(),
		authenticated(map[string]any{"password": "new-pass", "old-password": "old-pass"}))
	assert.ErrorIs(t, err, boom)
	_, typed := errx.As(err)
	assert.False(t, typed)
	assert.Empty(t, pool.Calls)
}

func TestAuthenticated_RequiresOldPasswordBeforeLookup(t *testing.T) {
	store := storeWith(now.Add(time.Hour))
	pool := &iamtest.UserPool{}

	_, err := newHandler(pool, store).Handle(context.Background(), authenticated(map[string]any{"password": "new-pass"}))
	assertTyped(t, err, 400, `Value for "old-password" must be specified in request body.`)
	assert.Zero(t, store.calls)
	assert.Empty(t, pool.Calls)
}

func TestAuthenticated_ProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"param validation", iamtest.ParamError("ChangePassword", "ProposedPassword"), "Password does not meet complexity requirements."},
		{"invalid password", iamtest.APIError("ChangePassword", "InvalidPasswordException"), "Password does not meet complexity requirements."},
		{"limit exceeded", iamtest.APIError("ChangePassword", "LimitExceededException"), "Password change attempt limit reached. Please wait a while and try again."},
		{"wrong old password", iamtest.APIError("ChangePassword", "NotAuthorizedException"), "Existing password entered is not correct."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := &iamtest.UserPool{ChangePasswordFn: func(*cip.ChangePasswordInput) (*cip.ChangePasswordOutput, error) {
				return nil, tt.err
			}}

			_, err := newHandler(pool, storeWith(now.Add(time.Hour))).Handle(context.Background(),
				authenticated(map[string]any{"password": "new-pass", "old-password": "old-pass"}))
			assertTyped(t, err, 400, tt.message)
		})
	}
}

func TestAuthenticated_UnmappedErrorPropagates(t *testing.T) {
	providerErr := iamtest.APIError("ChangePassword", "ResourceNotFoundException")
	pool := &iamtest.UserPool{ChangePasswordFn: func(*cip.ChangePasswordInput) (*cip.ChangePasswordOutput, error) {
		return nil, providerErr
	}}

	_, err := newHandler(pool, storeWith(now.Add(time.Hour))).Handle(context.Background(),
		authenticated(map[string]any{"password": "new-pass", "old-password": "old-pass"}))
	assert.Same(t, providerErr, err)
}

// ============================================================================
// Forgot flow
// ============================================================================

func TestForgot_Success(t *testing.T) {
	pool := &iamtest.UserPool{}
	var in *cip.ConfirmForgotPasswordInput
	pool.ConfirmForgotPasswordFn = func(i *cip.ConfirmForgotPasswordInput) (*cip.ConfirmForgotPasswordOutput, error) {
		in = i
		return &cip.ConfirmForgotPasswordOutput{}, nil
	}
	notifier := &fakeNotifier{}
	store := &fakeStore{}

	resp, err := newHandler(pool, store, password.WithNotifier(notifier)).Handle(context.Background(),
		forgotten(map[string]any{"password": "new-pass", "email-address": "a@b.com", "token": "123456"}))
	require.NoError(t, err)

	assert.Equal(t, "Password changed successfully.", resp["message"])
	assert.Equal(t, "client-id", aws.ToString(in.ClientId))
	assert.Equal(t, secrethash.Compute("a@b.com", "client-id", "client-secret"), aws.ToString(in.SecretHash))
	assert.Equal(t, "a@b.com", aws.ToString(in.Username))
	assert.Equal(t, "123456", aws.ToString(in.ConfirmationCode))
	assert.Equal(t, "new-pass", aws.ToString(in.Password))
	assert.Equal(t, []string{"a@b.com"}, notifier.sent)
	assert.Zero(t, store.calls)
}

func TestForgot_NoticeFailureIgnored(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("ses down")}

	_, err := newHandler(&iamtest.UserPool{}, &fakeStore{}, password.WithNotifier(notifier)).Handle(context.Background(),
		forgotten(map[string]any{"password": "new-pass", "email-address": "a@b.com", "token": "123456"}))
	assert.NoError(t, err)
	assert.Len(t, notifier.sent, 1)
}

func TestForgot_MissingFields(t *testing.T) {
	for _, field := range []string{"email-address", "token"} {
		t.Run(field, func(t *testing.T) {
			body := map[string]any{"password": "new-pass", "email-address": "a@b.com", "token": "123456"}
			delete(body, field)
			pool := &iamtest.UserPool{}

			_, err := newHandler(pool, &fakeStore{}).Handle(context.Background(), forgotten(body))
			assertTyped(t, err, 400, `Value for "`+field+`" must be specified in request body.`)
			assert.Empty(t, pool.Calls)
		})
	}
}

func TestForgot_ProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"code mismatch", iamtest.APIError("ConfirmForgotPassword", "CodeMismatchException"), "Invalid password reset code."},
		{"expired code", iamtest.APIError("ConfirmForgotPassword", "ExpiredCodeException"), "Invalid password reset code."},
		{"invalid password", iamtest.APIError("ConfirmForgotPassword", "InvalidPasswordException"), "New password does not meet password requirements."},
		{"param validation", iamtest.ParamError("ConfirmForgotPassword", "Password"), "New password does not meet password requirements."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeNotifier{}
			pool := &iamtest.UserPool{ConfirmForgotPasswordFn: func(*cip.ConfirmForgotPasswordInput) (*cip.ConfirmForgotPasswordOutput, error) {
				return nil, tt.err
			}}

			_, err := newHandler(pool, &fakeStore{}, password.WithNotifier(notifier)).Handle(context.Background(),
				forgotten(map[string]any{"password": "new-pass", "email-address": "a@b.com", "token": "123456"}))
			assertTyped(t, err, 400, tt.message)
			assert.Empty(t, notifier.sent)
		})
	}
}

// ============================================================================
// Shared
// ============================================================================

func TestHandle_PasswordRequiredFirst(t *testing.T) {
	for _, resource := range []string{iam.ResourcePassword, iam.ResourceForgotPassword, "/user/other"} {
		t.Run(resource, func(t *testing.T) {
			pool := &iamtest.UserPool{}
			_, err := newHandler(pool, &fakeStore{}).Handle(context.Background(), &iam.Request{Resource: resource, Body: map[string]any{}})
			assertTyped(t, err, 400, `Value for "password" must be specified in request body.`)
			assert.Empty(t, pool.Calls)
		})
	}
}

func TestHandle_UnknownResource(t *testing.T) {
	_, err := newHandler(&iamtest.UserPool{}, &fakeStore{}).Handle(context.Background(),
		&iam.Request{Resource: "/user/other", Body: map[string]any{"password": "new-pass"}})
	assertTyped(t, err, 500, "Unsure how to process request.")
}

func TestHandle_Warming(t *testing.T) {
	pool := &iamtest.UserPool{}
	store := &fakeStore{}

	resp, err := newHandler(pool, store).Handle(context.Background(), &iam.Request{Resource: iam.ResourcePassword, Warming: true})
	require.NoError(t, err)
	assert.Equal(t, "Warmed!", resp["message"])
	assert.Empty(t, pool.Calls)
	assert.Zero(t, store.calls)
}

// ============================================================================
// Reset code
// ============================================================================

func TestForgotHandler_Success(t *testing.T) {
	var in *cip.ForgotPasswordInput
	pool := &iamtest.UserPool{ForgotPasswordFn: func(i *cip.ForgotPasswordInput) (*cip.ForgotPasswordOutput, error) {
		in = i
		return &cip.ForgotPasswordOutput{CodeDeliveryDetails: &types.CodeDeliveryDetailsType{
			DeliveryMedium: types.DeliveryMediumTypeEmail,
			Destination:    aws.String("a***@b.com"),
		}}, nil
	}}

	resp, err := password.NewForgotHandler(password.Config{Client: client}, pool, nil).Handle(context.Background(),
		&iam.Request{Resource: iam.ResourceForgot, Body: map[string]any{"email-address": "a@b.com"}})
	require.NoError(t, err)

	assert.Equal(t, iam.Response{
		"message":         "Password reset code sent.",
		"delivery-medium": "EMAIL",
		"destination":     "a***@b.com",
	}, resp)
	assert.Equal(t, "a@b.com", aws.ToString(in.Username))
	assert.Equal(t, client.For("a@b.com"), aws.ToString(in.SecretHash))
}

func TestForgotHandler_ProviderErrors(t *testing.T) {
	tests := []struct {
		code    string
		status  int
		message string
	}{
		{"UserNotFoundException", 404, "User with e-mail address (a@b.com) not found."},
		{"LimitExceededException", 400, "Password reset attempt limit reached. Please wait a while and try again."},
		{"InvalidParameterException", 400, "Unable to send a password reset code to this e-mail address."},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			pool := &iamtest.UserPool{ForgotPasswordFn: func(*cip.ForgotPasswordInput) (*cip.ForgotPasswordOutput, error) {
				return nil, iamtest.APIError("ForgotPassword", tt.code)
			}}

			_, err := password.NewForgotHandler(password.Config{Client: client}, pool, nil).Handle(context.Background(),
				&iam.Request{Resource: iam.ResourceForgot, Body: map[string]any{"email-address": "a@b.com"}})
			assertTyped(t, err, tt.status, tt.message)
		})
	}
}

func TestForgotHandler_MissingEmail(t *testing.T) {
	pool := &iamtest.UserPool{}
	_, err := password.NewForgotHandler(password.Config{Client: client}, pool, nil).Handle(context.Background(),
		&iam.Request{Resource: iam.ResourceForgot, Body: map[string]any{}})
	assertTyped(t, err, 400, `Value for "email-address" must be specified in request body.`)
	assert.Empty(t, pool.Calls)
}
