package iam

import "github.com/Abraxas-365/nimbus/pkg/errx"

const (
	OutcomeOK    = "ok"
	OutcomeFault = "fault"
)

// Outcome labels err for metrics and audit: "ok", the typed error code, or "fault".
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if e, ok := errx.As(err); ok {
		return e.Code
	}
	return OutcomeFault
}
