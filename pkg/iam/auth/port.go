package auth

import (
	"context"

	"github.com/Abraxas-365/nimbus/pkg/kernel"
)

// AuditService records account events. Implementations must not fail the request.
type AuditService interface {
	LogRegistration(ctx context.Context, userID kernel.UserID, email string, outcome string)
	LogLoginAttempt(ctx context.Context, email string, identityID kernel.IdentityID, outcome string)
	LogPasswordChange(ctx context.Context, method string, userID kernel.UserID, outcome string)
	LogPasswordResetRequest(ctx context.Context, email string, outcome string)
}

// NopAuditService discards events.
type NopAuditService struct{}

func (NopAuditService) LogRegistration(context.Context, kernel.UserID, string, string) {}
func (NopAuditService) LogLoginAttempt(context.Context, string, kernel.IdentityID, string) {}
func (NopAuditService) LogPasswordChange(context.Context, string, kernel.UserID, string) {}
func (NopAuditService) LogPasswordResetRequest(context.Context, string, string) {}
