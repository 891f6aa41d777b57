package notifxses

import "github.com/Abraxas-365/nimbus/pkg/errx"

var sesErrors = errx.NewRegistry("NOTIFX_SES")

var ErrSendFailed = sesErrors.Register("SEND_FAILED", errx.TypeInternal, 500, "SES send email failed")
