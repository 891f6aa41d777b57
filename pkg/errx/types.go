package errx

import "net/http"

// Type is the closed set of failure kinds a handler can report to a caller.
type Type string

const (
	// TypeValidation marks a missing or malformed request field
	TypeValidation Type = "VALIDATION"

	// TypeProviderRejected marks a recognized identity provider error code
	TypeProviderRejected Type = "PROVIDER_REJECTED"

	// TypeDomainUnreachable marks an e-mail domain that cannot receive mail
	TypeDomainUnreachable Type = "DOMAIN_UNREACHABLE"

	// TypeSessionExpired marks missing or stale stored provider credentials
	TypeSessionExpired Type = "SESSION_EXPIRED"

	// TypeInternal marks a request the handler could not route
	TypeInternal Type = "INTERNAL"
)

// String returns the string representation of the error type
func (t Type) String() string {
	return string(t)
}

// HTTPStatus is the default status for the type. Registered codes may override it.
func (t Type) HTTPStatus() int {
	switch t {
	case TypeValidation, TypeProviderRejected, TypeDomainUnreachable, TypeSessionExpired:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
