package authinfra

import (
	"context"

	"github.com/Abraxas-365/nimbus/pkg/kernel"
	"github.com/Abraxas-365/nimbus/pkg/logx"
)

// LogxAuditService implements auth.AuditService using structured logx logging.
type LogxAuditService struct{}

func NewLogxAuditService() *LogxAuditService {
	return &LogxAuditService{}
}

func (s *LogxAuditService) LogRegistration(ctx context.Context, userID kernel.UserID, email string, outcome string) {
	logx.WithContext(ctx).WithFields(logx.Fields{
		"audit_event": "registration",
		"user_id":     userID,
		"email":       email,
		"outcome":     outcome,
	}).Info("Audit: registration")
}

func (s *LogxAuditService) LogLoginAttempt(ctx context.Context, email string, identityID kernel.IdentityID, outcome string) {
	logx.WithContext(ctx).WithFields(logx.Fields{
		"audit_event": "login_attempt",
		"email":       email,
		"identity_id": identityID,
		"outcome":     outcome,
	}).Info("Audit: login attempt")
}

func (s *LogxAuditService) LogPasswordChange(ctx context.Context, method string, userID kernel.UserID, outcome string) {
	logx.WithContext(ctx).WithFields(logx.Fields{
		"audit_event": "password_change",
		"method":      method,
		"user_id":     userID,
		"outcome":     outcome,
	}).Info("Audit: password change")
}

func (s *LogxAuditService) LogPasswordResetRequest(ctx context.Context, email string, outcome string) {
	logx.WithContext(ctx).WithFields(logx.Fields{
		"audit_event": "password_reset_request",
		"email":       email,
		"outcome":     outcome,
	}).Info("Audit: password reset request")
}
