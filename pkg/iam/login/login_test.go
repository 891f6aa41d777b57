package login_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	identitytypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentity/types"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/nimbus/pkg/errx"
	"github.com/Abraxas-365/nimbus/pkg/iam"
	"github.com/Abraxas-365/nimbus/pkg/iam/iamtest"
	"github.com/Abraxas-365/nimbus/pkg/iam/login"
	"github.com/Abraxas-365/nimbus/pkg/iam/secrethash"
	"github.com/Abraxas-365/nimbus/pkg/iam/session"
	"github.com/Abraxas-365/nimbus/pkg/kernel"
)

const issuer = "cognito-idp.eu-west-1.amazonaws.com/eu-west-1_pool"

var pool = iam.PoolParams{
	UserPoolID:     "eu-west-1_pool",
	ClientID:       "client-id",
	ClientSecret:   "client-secret",
	IdentityPoolID: "eu-west-1:identity-pool",
}

func idToken(t *testing.T) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":              "sub-1",
		"cognito:username": "9b2c",
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

type savedSession struct {
	identity iam.Identity
	session  session.Session
}

type fakeWriter struct {
	saved []savedSession
	err   error
}

func (w *fakeWriter) Save(_ context.Context, identity iam.Identity, s session.Session) error {
	w.saved = append(w.saved, savedSession{identity, s})
	return w.err
}

type fixture struct {
	users      *iamtest.UserPool
	identities *iamtest.IdentityPool
	writer     *fakeWriter
	handler    *login.Handler
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	token := idToken(t)
	f := &fixture{
		users:      &iamtest.UserPool{},
		identities: &iamtest.IdentityPool{},
		writer:     &fakeWriter{},
		now:        time.Unix(1_700_000_000, 0),
	}

	f.users.AdminInitiateAuthFn = func(*cip.AdminInitiateAuthInput) (*cip.AdminInitiateAuthOutput, error) {
		return &cip.AdminInitiateAuthOutput{AuthenticationResult: &types.AuthenticationResultType{
			IdToken:      aws.String(token),
			RefreshToken: aws.String("refresh"),
			AccessToken:  aws.String("access"),
			TokenType:    aws.String("Bearer"),
			ExpiresIn:    3600,
		}}, nil
	}
	f.identities.GetIdFn = func(*cognitoidentity.GetIdInput) (*cognitoidentity.GetIdOutput, error) {
		return &cognitoidentity.GetIdOutput{IdentityId: aws.String("eu-west-1:identity")}, nil
	}
	f.identities.GetCredentialsForIdentityFn = func(*cognitoidentity.GetCredentialsForIdentityInput) (*cognitoidentity.GetCredentialsForIdentityOutput, error) {
		return &cognitoidentity.GetCredentialsForIdentityOutput{
			IdentityId: aws.String("eu-west-1:identity"),
			Credentials: &identitytypes.Credentials{
				AccessKeyId:  aws.String("AKIA"),
				SecretKey:    aws.String("secret"),
				SessionToken: aws.String("session"),
				Expiration:   aws.Time(f.now.Add(3600 * time.Second)),
			},
		}, nil
	}

	f.handler = login.NewHandler(login.Config{Region: "eu-west-1"}, f.users, f.identities,
		login.WithSessionWriter(f.writer),
		login.WithClock(func() time.Time { return f.now }),
	)
	return f
}

func request(body map[string]any) *iam.Request {
	return &iam.Request{Resource: iam.ResourceLogin, Body: body, Pool: pool}
}

func validBody() map[string]any {
	return map[string]any{"email-address": "a@b.com", "password": "hunter22"}
}

func TestHandle_Success(t *testing.T) {
	f := newFixture(t)

	var authIn *cip.AdminInitiateAuthInput
	next := f.users.AdminInitiateAuthFn
	f.users.AdminInitiateAuthFn = func(in *cip.AdminInitiateAuthInput) (*cip.AdminInitiateAuthOutput, error) {
		authIn = in
		return next(in)
	}

	resp, err := f.handler.Handle(context.Background(), request(validBody()))
	require.NoError(t, err)

	assert.Equal(t, iam.Response{
		"access-key-id":     "AKIA",
		"secret-access-key": "secret",
		"aws-session-token": "session",
		"expiration":        int64(3600),
	}, resp)

	require.NotNil(t, authIn)
	assert.Equal(t, types.AuthFlowTypeAdminNoSrpAuth, authIn.AuthFlow)
	assert.Equal(t, "eu-west-1_pool", aws.ToString(authIn.UserPoolId))
	assert.Equal(t, "client-id", aws.ToString(authIn.ClientId))
	assert.Equal(t, "a@b.com", authIn.AuthParameters["USERNAME"])
	assert.Equal(t, "hunter22", authIn.AuthParameters["PASSWORD"])
	assert.Equal(t, secrethash.Compute("a@b.com", "client-id", "client-secret"), authIn.AuthParameters["SECRET_HASH"])

	assert.Equal(t, []string{"GetId", "GetCredentialsForIdentity"}, f.identities.Calls)
}

func TestHandle_ExpirationIsRelative(t *testing.T) {
	f := newFixture(t)
	f.now = time.Now()

	resp, err := f.handler.Handle(context.Background(), request(validBody()))
	require.NoError(t, err)

	expiration, ok := resp["expiration"].(int64)
	require.True(t, ok)
	assert.InDelta(t, 3600, expiration, 5)
}

func TestHandle_FederationUsesIssuerLogins(t *testing.T) {
	f := newFixture(t)

	var getID *cognitoidentity.GetIdInput
	var getCreds *cognitoidentity.GetCredentialsForIdentityInput
	nextID, nextCreds := f.identities.GetIdFn, f.identities.GetCredentialsForIdentityFn
	f.identities.GetIdFn = func(in *cognitoidentity.GetIdInput) (*cognitoidentity.GetIdOutput, error) {
		getID = in
		return nextID(in)
	}
	f.identities.GetCredentialsForIdentityFn = func(in *cognitoidentity.GetCredentialsForIdentityInput) (*cognitoidentity.GetCredentialsForIdentityOutput, error) {
		getCreds = in
		return nextCreds(in)
	}

	_, err := f.handler.Handle(context.Background(), request(validBody()))
	require.NoError(t, err)

	token := getID.Logins[issuer]
	assert.NotEmpty(t, token)
	assert.Equal(t, "eu-west-1:identity-pool", aws.ToString(getID.IdentityPoolId))
	assert.Equal(t, "eu-west-1:identity", aws.ToString(getCreds.IdentityId))
	assert.Equal(t, map[string]string{issuer: token}, getCreds.Logins)
}

func TestHandle_ProviderErrors(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantStatus int
		wantMsg    string
	}{
		{"user not found", "UserNotFoundException", 404, "User with e-mail address (a@b.com) not found."},
		{"wrong password", "NotAuthorizedException", 403, "Password entered is not correct."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.users.AdminInitiateAuthFn = func(*cip.AdminInitiateAuthInput) (*cip.AdminInitiateAuthOutput, error) {
				return nil, iamtest.APIError("AdminInitiateAuth", tt.code)
			}

			_, err := f.handler.Handle(context.Background(), request(validBody()))
			status, body, typed := errx.Classify(err)
			require.True(t, typed, "got %v", err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.Empty(t, f.identities.Calls)
		})
	}
}

func TestHandle_UnknownProviderErrorPropagates(t *testing.T) {
	f := newFixture(t)
	providerErr := iamtest.APIError("AdminInitiateAuth", "TooManyRequestsException")
	f.users.AdminInitiateAuthFn = func(*cip.AdminInitiateAuthInput) (*cip.AdminInitiateAuthOutput, error) {
		return nil, providerErr
	}

	_, err := f.handler.Handle(context.Background(), request(validBody()))
	assert.Same(t, providerErr, err)
}

func TestHandle_ChallengeIsFault(t *testing.T) {
	f := newFixture(t)
	f.users.AdminInitiateAuthFn = func(*cip.AdminInitiateAuthInput) (*cip.AdminInitiateAuthOutput, error) {
		return &cip.AdminInitiateAuthOutput{ChallengeName: types.ChallengeNameTypeNewPasswordRequired}, nil
	}

	_, err := f.handler.Handle(context.Background(), request(validBody()))
	require.Error(t, err)
	_, typed := errx.As(err)
	assert.False(t, typed)
}

func TestHandle_FederationErrorPropagates(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("identity pool unavailable")
	f.identities.GetIdFn = func(*cognitoidentity.GetIdInput) (*cognitoidentity.GetIdOutput, error) { return nil, boom }

	_, err := f.handler.Handle(context.Background(), request(validBody()))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"GetId"}, f.identities.Calls)
}

func TestHandle_MissingFields(t *testing.T) {
	for _, field := range []string{"email-address", "password"} {
		t.Run(field, func(t *testing.T) {
			f := newFixture(t)
			body := validBody()
			body[field] = ""

			_, err := f.handler.Handle(context.Background(), request(body))
			e, ok := errx.As(err)
			require.True(t, ok)
			assert.Equal(t, 400, e.HTTPStatus)
			assert.Equal(t, `Value for "`+field+`" must be specified in request body.`, e.Message)
			assert.Empty(t, f.users.Calls)
			assert.Empty(t, f.identities.Calls)
		})
	}
}

func TestHandle_MissingPoolParams(t *testing.T) {
	f := newFixture(t)
	req := request(validBody())
	req.Pool = iam.PoolParams{}

	_, err := f.handler.Handle(context.Background(), req)
	assert.ErrorIs(t, err, login.ErrPoolParamsMissing)
	assert.Empty(t, f.users.Calls)
}

func TestHandle_StoresSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), request(validBody()))
	require.NoError(t, err)

	require.Len(t, f.writer.saved, 1)
	saved := f.writer.saved[0]
	assert.Equal(t, kernel.NewIdentityID("eu-west-1:identity"), saved.identity.IdentityID)
	assert.Equal(t, "eu-west-1:identity-pool", saved.identity.IdentityPoolID)
	assert.Equal(t, kernel.NewUserID("9b2c"), saved.session.UserID)
	assert.Equal(t, "access", saved.session.AccessToken)
	assert.Equal(t, f.now.Add(time.Hour).Unix(), saved.session.ExpiresAt.Unix())
}

func TestHandle_SessionWriteFailureDoesNotFailLogin(t *testing.T) {
	f := newFixture(t)
	f.writer.err = errors.New("redis down")

	_, err := f.handler.Handle(context.Background(), request(validBody()))
	assert.NoError(t, err)
}

func TestHandle_Warming(t *testing.T) {
	f := newFixture(t)

	resp, err := f.handler.Handle(context.Background(), &iam.Request{Warming: true})
	require.NoError(t, err)
	assert.Equal(t, iam.WarmedMessage, resp["message"])
	assert.Empty(t, f.users.Calls)
	assert.Empty(t, f.identities.Calls)
}
