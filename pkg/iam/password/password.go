// Package password changes user pool passwords, either for a logged-in
// identity or with a reset code sent by the forgot-password flow.
package password

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"

	"github.com/Abraxas-365/nimbus/pkg/errx"
	"github.com/Abraxas-365/nimbus/pkg/iam"
	"github.com/Abraxas-365/nimbus/pkg/iam/auth"
	"github.com/Abraxas-365/nimbus/pkg/iam/secrethash"
	"github.com/Abraxas-365/nimbus/pkg/iam/session"
	"github.com/Abraxas-365/nimbus/pkg/kernel"
	"github.com/Abraxas-365/nimbus/pkg/logx"
)

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("PASSWORD")

var (
	CodeCredentialsExpired = ErrRegistry.Register("CREDENTIALS_EXPIRED", errx.TypeSessionExpired, http.StatusBadRequest, "Identity provider credentials expired. Please log in and try again.")
	CodeComplexity         = ErrRegistry.Register("COMPLEXITY", errx.TypeProviderRejected, http.StatusBadRequest, "Password does not meet complexity requirements.")
	CodeChangeLimit        = ErrRegistry.Register("CHANGE_LIMIT", errx.TypeProviderRejected, http.StatusBadRequest, "Password change attempt limit reached. Please wait a while and try again.")
	CodeIncorrectExisting  = ErrRegistry.Register("INCORRECT_EXISTING", errx.TypeProviderRejected, http.StatusBadRequest, "Existing password entered is not correct.")
	CodeResetRequirements  = ErrRegistry.Register("RESET_REQUIREMENTS", errx.TypeProviderRejected, http.StatusBadRequest, "New password does not meet password requirements.")
	CodeInvalidResetCode   = ErrRegistry.Register("INVALID_RESET_CODE", errx.TypeProviderRejected, http.StatusBadRequest, "Invalid password reset code.")
	CodeUserNotFound       = ErrRegistry.Register("USER_NOT_FOUND", errx.TypeProviderRejected, http.StatusNotFound, "User with e-mail address (%s) not found.")
	CodeResetLimit         = ErrRegistry.Register("RESET_LIMIT", errx.TypeProviderRejected, http.StatusBadRequest, "Password reset attempt limit reached. Please wait a while and try again.")
	CodeResetUndeliverable = ErrRegistry.Register("RESET_UNDELIVERABLE", errx.TypeProviderRejected, http.StatusBadRequest, "Unable to send a password reset code to this e-mail address.")
)

// Messages returned on success.
const (
	ChangedMessage  = "Password changed successfully."
	CodeSentMessage = "Password reset code sent."
)

// Audit method names.
const (
	MethodAuthenticated   = "Authenticated"
	MethodUnauthenticated = "Unauthenticated"
)

// Notifier tells a user their password was reset.
type Notifier interface {
	PasswordReset(ctx context.Context, address string) error
}

// Config is the app client the forgot-password calls are signed for.
type Config struct {
	Client secrethash.Client
}

// Handler serves iam.ResourcePassword and iam.ResourceForgotPassword.
type Handler struct {
	cfg      Config
	pool     iam.UserPoolAPI
	sessions session.Store
	notifier Notifier
	audit    auth.AuditService
	now      func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithNotifier sends a notice after every completed reset.
func WithNotifier(n Notifier) Option {
	return func(h *Handler) { h.notifier = n }
}

// WithAudit sets the audit sink.
func WithAudit(a auth.AuditService) Option {
	return func(h *Handler) { h.audit = a }
}

// WithClock overrides time.Now for the session expiry check.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// NewHandler creates a password change handler.
func NewHandler(cfg Config, pool iam.UserPoolAPI, sessions session.Store, opts ...Option) *Handler {
	h := &Handler{
		cfg:      cfg,
		pool:     pool,
		sessions: sessions,
		audit:    auth.NopAuditService{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle picks the flow from the request resource. The new password is
// required by both flows and checked first.
func (h *Handler) Handle(ctx context.Context, req *iam.Request) (iam.Response, error) {
	if req.Warming {
		return iam.Warmed(), nil
	}

	logx.WithContext(ctx).WithFields(logx.Fields{
		"resource": req.Resource,
		"body":     logx.Redact(req.Body),
	}).Info("Password change request")

	fields, err := req.Require(iam.FieldPassword)
	if err != nil {
		return nil, err
	}
	newPassword := fields[0]

	switch req.Resource {
	case iam.ResourcePassword:
		err = h.changeAuthenticated(ctx, req, newPassword)
	case iam.ResourceForgotPassword:
		err = h.confirmReset(ctx, req, newPassword)
	default:
		return nil, iam.ErrUnsureHowToProcess()
	}
	if err != nil {
		return nil, err
	}

	return iam.Response{"message": ChangedMessage}, nil
}

func (h *Handler) changeAuthenticated(ctx context.Context, req *iam.Request, newPassword string) error {
	logx.WithContext(ctx).Info("Authenticated user password change request")

	fields, err := req.Require(iam.FieldOldPassword)
	if err != nil {
		return err
	}
	oldPassword := fields[0]

	s, err := h.lookupSession(ctx, req.Identity)
	if err != nil {
		return err
	}

	_, err = h.pool.ChangePassword(ctx, &cip.ChangePasswordInput{
		AccessToken:      aws.String(s.AccessToken),
		PreviousPassword: aws.String(oldPassword),
		ProposedPassword: aws.String(newPassword),
	})
	if err != nil {
		err = iam.CodeMapping{
			iam.ProviderParamValidation: complexity(err),
			iam.ProviderInvalidPassword: complexity(err),
			iam.ProviderLimitExceeded:   func() error { return ErrRegistry.NewWithCause(CodeChangeLimit, err) },
			iam.ProviderNotAuthorized:   func() error { return ErrRegistry.NewWithCause(CodeIncorrectExisting, err) },
		}.Translate(err)
	}

	h.audit.LogPasswordChange(ctx, MethodAuthenticated, s.UserID, iam.Outcome(err))
	return err
}

// lookupSession returns the stored session of identity, or a SESSION_EXPIRED
// error when there is none or its access token has expired.
func (h *Handler) lookupSession(ctx context.Context, identity iam.Identity) (*session.Session, error) {
	if identity.IsEmpty() {
		return nil, ErrRegistry.New(CodeCredentialsExpired)
	}

	s, err := h.sessions.Get(ctx, identity)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrRegistry.New(CodeCredentialsExpired).WithDetail("identity_id", identity.IdentityID)
	}
	if err != nil {
		return nil, err
	}
	if !s.Usable(h.now()) {
		return nil, ErrRegistry.New(CodeCredentialsExpired).WithDetail("identity_id", identity.IdentityID)
	}
	return s, nil
}

func (h *Handler) confirmReset(ctx context.Context, req *iam.Request, newPassword string) error {
	logx.WithContext(ctx).Info("Unauthenticated (forgotten) user password change request")

	fields, err := req.Require(iam.FieldEmail, iam.FieldResetCode)
	if err != nil {
		return err
	}
	email, code := fields[0], fields[1]

	_, err = h.pool.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(h.cfg.Client.ID),
		SecretHash:       aws.String(h.cfg.Client.For(email)),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
	})
	if err != nil {
		requirements := func() error { return ErrRegistry.NewWithCause(CodeResetRequirements, err) }
		invalidCode := func() error { return ErrRegistry.NewWithCause(CodeInvalidResetCode, err) }
		err = iam.CodeMapping{
			iam.ProviderParamValidation: requirements,
			iam.ProviderInvalidPassword: requirements,
			iam.ProviderCodeMismatch:    invalidCode,
			iam.ProviderExpiredCode:     invalidCode,
		}.Translate(err)
	}

	h.audit.LogPasswordChange(ctx, MethodUnauthenticated, kernel.NewUserID(email), iam.Outcome(err))
	if err != nil {
		return err
	}

	if h.notifier != nil {
		if nerr := h.notifier.PasswordReset(ctx, email); nerr != nil {
			logx.WithContext(ctx).WithError(nerr).Warn("Password reset notice not sent")
		}
	}
	return nil
}

func complexity(err error) func() error {
	return func() error { return ErrRegistry.NewWithCause(CodeComplexity, err) }
}
