package password

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"

	"github.com/Abraxas-365/nimbus/pkg/iam"
	"github.com/Abraxas-365/nimbus/pkg/iam/auth"
	"github.com/Abraxas-365/nimbus/pkg/logx"
)

// ForgotHandler serves iam.ResourceForgot, asking the pool to send a reset
// code the user then redeems at iam.ResourceForgotPassword.
type ForgotHandler struct {
	cfg   Config
	pool  iam.UserPoolAPI
	audit auth.AuditService
}

// NewForgotHandler creates a reset code handler. audit may be nil.
func NewForgotHandler(cfg Config, pool iam.UserPoolAPI, audit auth.AuditService) *ForgotHandler {
	if audit == nil {
		audit = auth.NopAuditService{}
	}
	return &ForgotHandler{cfg: cfg, pool: pool, audit: audit}
}

func (h *ForgotHandler) Handle(ctx context.Context, req *iam.Request) (iam.Response, error) {
	if req.Warming {
		return iam.Warmed(), nil
	}

	logx.WithContext(ctx).WithField("body", logx.Redact(req.Body)).Info("Password reset code request")

	fields, err := req.Require(iam.FieldEmail)
	if err != nil {
		return nil, err
	}
	email := fields[0]

	out, err := h.pool.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId:   aws.String(h.cfg.Client.ID),
		SecretHash: aws.String(h.cfg.Client.For(email)),
		Username:   aws.String(email),
	})
	if err != nil {
		err = iam.CodeMapping{
			iam.ProviderUserNotFound:     func() error { return ErrRegistry.Newf(CodeUserNotFound, email).WithCause(err) },
			iam.ProviderLimitExceeded:    func() error { return ErrRegistry.NewWithCause(CodeResetLimit, err) },
			iam.ProviderInvalidParameter: func() error { return ErrRegistry.NewWithCause(CodeResetUndeliverable, err) },
		}.Translate(err)
	}

	h.audit.LogPasswordResetRequest(ctx, email, iam.Outcome(err))
	if err != nil {
		return nil, err
	}

	resp := iam.Response{"message": CodeSentMessage}
	if d := out.CodeDeliveryDetails; d != nil {
		resp["delivery-medium"] = string(d.DeliveryMedium)
		resp["destination"] = aws.ToString(d.Destination)
	}
	return resp, nil
}
