// Package registration signs new users up with the user pool.
package registration

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/google/uuid"

	"github.com/Abraxas-365/nimbus/pkg/errx"
	"github.com/Abraxas-365/nimbus/pkg/iam"
	"github.com/Abraxas-365/nimbus/pkg/iam/auth"
	"github.com/Abraxas-365/nimbus/pkg/iam/secrethash"
	"github.com/Abraxas-365/nimbus/pkg/kernel"
	"github.com/Abraxas-365/nimbus/pkg/logx"
)

// MinPasswordLength is the only password rule checked locally; the pool
// enforces the rest.
const MinPasswordLength = 6

var ErrRegistry = errx.NewRegistry("REGISTRATION")

var CodePasswordTooShort = ErrRegistry.Register("PASSWORD_TOO_SHORT", errx.TypeValidation, http.StatusBadRequest, "Password must be at least six characters long.")

// EmailValidator rejects addresses that cannot receive the verification mail.
type EmailValidator interface {
	Validate(ctx context.Context, address string) error
}

// Config is the single app client registration signs up through.
type Config struct {
	Client secrethash.Client
}

// Handler serves iam.ResourceRegister.
type Handler struct {
	cfg    Config
	pool   iam.UserPoolAPI
	emails EmailValidator
	audit  auth.AuditService
	newID  func() string
}

// NewHandler creates a registration handler. audit may be nil.
func NewHandler(cfg Config, pool iam.UserPoolAPI, emails EmailValidator, audit auth.AuditService) *Handler {
	if audit == nil {
		audit = auth.NopAuditService{}
	}
	return &Handler{
		cfg:    cfg,
		pool:   pool,
		emails: emails,
		audit:  audit,
		newID:  uuid.NewString,
	}
}

// Handle validates the address, then signs the user up under a fresh UUID
// username with the address as the email attribute. Sign-up errors from the
// pool are returned unchanged.
func (h *Handler) Handle(ctx context.Context, req *iam.Request) (iam.Response, error) {
	if req.Warming {
		return iam.Warmed(), nil
	}

	logx.WithContext(ctx).WithField("body", logx.Redact(req.Body)).Info("Registration request")

	fields, err := req.Require(iam.FieldEmail, iam.FieldPassword)
	if err != nil {
		return nil, err
	}
	email, password := fields[0], fields[1]

	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, ErrRegistry.New(CodePasswordTooShort)
	}

	if err := h.emails.Validate(ctx, email); err != nil {
		return nil, err
	}

	username := h.newID()

	_, err = h.pool.SignUp(ctx, &cip.SignUpInput{
		ClientId:   aws.String(h.cfg.Client.ID),
		SecretHash: aws.String(h.cfg.Client.For(username)),
		Username:   aws.String(username),
		Password:   aws.String(password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	})
	h.audit.LogRegistration(ctx, kernel.NewUserID(username), email, iam.Outcome(err))
	if err != nil {
		return nil, err
	}

	return iam.Response{
		"user-id":       username,
		"email-address": email,
	}, nil
}
