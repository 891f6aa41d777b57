// Package login exchanges user pool credentials for temporary AWS credentials.
package login

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/Abraxas-365/nimbus/pkg/errx"
	"github.com/Abraxas-365/nimbus/pkg/iam"
	"github.com/Abraxas-365/nimbus/pkg/iam/auth"
	"github.com/Abraxas-365/nimbus/pkg/iam/secrethash"
	"github.com/Abraxas-365/nimbus/pkg/iam/session"
	"github.com/Abraxas-365/nimbus/pkg/kernel"
	"github.com/Abraxas-365/nimbus/pkg/logx"
)

var ErrRegistry = errx.NewRegistry("LOGIN")

var (
	CodeUserNotFound      = ErrRegistry.Register("USER_NOT_FOUND", errx.TypeProviderRejected, http.StatusNotFound, "User with e-mail address (%s) not found.")
	CodeIncorrectPassword = ErrRegistry.Register("INCORRECT_PASSWORD", errx.TypeProviderRejected, http.StatusForbidden, "Password entered is not correct.")
)

// ErrPoolParamsMissing means the request reached login without its user pool parameters.
var ErrPoolParamsMissing = errors.New("login: user pool parameters missing from request")

// Tokens is the user pool authentication result.
type Tokens struct {
	IDToken      string
	RefreshToken string
	AccessToken  string
	TokenType    string
	ExpiresIn    time.Duration
}

// Credentials are the temporary AWS credentials of a federated identity.
type Credentials struct {
	IdentityID   kernel.IdentityID
	AccessKeyID  string
	SecretKey    string
	SessionToken string
	Expiration   time.Time
}

// Config holds what login needs beyond the per-request pool parameters.
type Config struct {
	// Region is the user pool region, used to build the issuer name
	Region string
}

// Handler serves iam.ResourceLogin.
type Handler struct {
	cfg        Config
	pool       iam.UserPoolAPI
	identities iam.IdentityPoolAPI
	sessions   session.Writer
	audit      auth.AuditService
	now        func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithSessionWriter stores the user pool access token after each login so
// an authenticated password change can use it.
func WithSessionWriter(w session.Writer) Option {
	return func(h *Handler) { h.sessions = w }
}

// WithAudit sets the audit sink.
func WithAudit(a auth.AuditService) Option {
	return func(h *Handler) { h.audit = a }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// NewHandler creates a login handler.
func NewHandler(cfg Config, pool iam.UserPoolAPI, identities iam.IdentityPoolAPI, opts ...Option) *Handler {
	h := &Handler{
		cfg:        cfg,
		pool:       pool,
		identities: identities,
		audit:      auth.NopAuditService{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle authenticates the user, then federates the ID token into temporary
// credentials. The returned expiration is seconds remaining, not an instant.
func (h *Handler) Handle(ctx context.Context, req *iam.Request) (iam.Response, error) {
	if req.Warming {
		return iam.Warmed(), nil
	}

	logx.WithContext(ctx).WithField("body", logx.Redact(req.Body)).Info("Login request")

	fields, err := req.Require(iam.FieldEmail, iam.FieldPassword)
	if err != nil {
		return nil, err
	}
	email, password := fields[0], fields[1]

	pool := req.Pool
	if pool.UserPoolID == "" || pool.ClientID == "" || pool.IdentityPoolID == "" {
		return nil, ErrPoolParamsMissing
	}

	tokens, err := h.authenticate(ctx, pool, email, password)
	if err != nil {
		h.audit.LogLoginAttempt(ctx, email, "", iam.Outcome(err))
		return nil, err
	}

	creds, err := h.federate(ctx, pool, tokens.IDToken)
	h.audit.LogLoginAttempt(ctx, email, creds.IdentityID, iam.Outcome(err))
	if err != nil {
		return nil, err
	}

	if h.sessions != nil {
		h.saveSession(ctx, pool, creds.IdentityID, tokens)
	}

	return iam.Response{
		"access-key-id":     creds.AccessKeyID,
		"secret-access-key": creds.SecretKey,
		"aws-session-token": creds.SessionToken,
		"expiration":        creds.Expiration.Unix() - h.now().Unix(),
	}, nil
}

func (h *Handler) authenticate(ctx context.Context, pool iam.PoolParams, email, password string) (*Tokens, error) {
	logx.WithContext(ctx).Debug("Initiating auth")

	out, err := h.pool.AdminInitiateAuth(ctx, &cip.AdminInitiateAuthInput{
		UserPoolId: aws.String(pool.UserPoolID),
		ClientId:   aws.String(pool.ClientID),
		AuthFlow:   types.AuthFlowTypeAdminNoSrpAuth,
		AuthParameters: map[string]string{
			"USERNAME":    email,
			"PASSWORD":    password,
			"SECRET_HASH": secrethash.Compute(email, pool.ClientID, pool.ClientSecret),
		},
	})
	if err != nil {
		return nil, iam.CodeMapping{
			iam.ProviderUserNotFound:  func() error { return ErrRegistry.Newf(CodeUserNotFound, email).WithCause(err) },
			iam.ProviderNotAuthorized: func() error { return ErrRegistry.New(CodeIncorrectPassword).WithCause(err) },
		}.Translate(err)
	}

	result := out.AuthenticationResult
	if result == nil {
		return nil, fmt.Errorf("login: unsupported authentication challenge %q", out.ChallengeName)
	}

	return &Tokens{
		IDToken:      aws.ToString(result.IdToken),
		RefreshToken: aws.ToString(result.RefreshToken),
		AccessToken:  aws.ToString(result.AccessToken),
		TokenType:    aws.ToString(result.TokenType),
		ExpiresIn:    time.Duration(result.ExpiresIn) * time.Second,
	}, nil
}

func (h *Handler) federate(ctx context.Context, pool iam.PoolParams, idToken string) (Credentials, error) {
	logins := map[string]string{
		iam.ProviderName(h.cfg.Region, pool.UserPoolID): idToken,
	}

	logx.WithContext(ctx).Debug("Fetching identity id")

	id, err := h.identities.GetId(ctx, &cognitoidentity.GetIdInput{
		IdentityPoolId: aws.String(pool.IdentityPoolID),
		Logins:         logins,
	})
	if err != nil {
		return Credentials{}, err
	}

	identityID := kernel.NewIdentityID(aws.ToString(id.IdentityId))

	logx.WithContext(ctx).WithField("identity_id", identityID).Debug("Fetching credentials")

	out, err := h.identities.GetCredentialsForIdentity(ctx, &cognitoidentity.GetCredentialsForIdentityInput{
		IdentityId: id.IdentityId,
		Logins:     logins,
	})
	if err != nil {
		return Credentials{IdentityID: identityID}, err
	}
	if out.Credentials == nil {
		return Credentials{IdentityID: identityID}, fmt.Errorf("login: no credentials returned for identity %s", identityID)
	}

	return Credentials{
		IdentityID:   identityID,
		AccessKeyID:  aws.ToString(out.Credentials.AccessKeyId),
		SecretKey:    aws.ToString(out.Credentials.SecretKey),
		SessionToken: aws.ToString(out.Credentials.SessionToken),
		Expiration:   aws.ToTime(out.Credentials.Expiration),
	}, nil
}

// saveSession never fails the login; a missing session only means the
// user must log in again before changing their password.
func (h *Handler) saveSession(ctx context.Context, pool iam.PoolParams, identityID kernel.IdentityID, tokens *Tokens) {
	entry := logx.WithContext(ctx).WithField("identity_id", identityID)

	claims, err := auth.ParseIDToken(tokens.IDToken)
	if err != nil {
		entry.WithError(err).Warn("Session not stored")
		return
	}

	err = h.sessions.Save(ctx, iam.Identity{IdentityID: identityID, IdentityPoolID: pool.IdentityPoolID}, session.Session{
		UserID:      claims.UserID(),
		AccessToken: tokens.AccessToken,
		ExpiresAt:   h.now().Add(tokens.ExpiresIn),
	})
	if err != nil {
		entry.WithError(err).Warn("Session not stored")
	}
}
