// Package emailcheck rejects e-mail addresses that are malformed or whose
// domain cannot receive mail, before a sign-up slot is spent on them.
package emailcheck

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Abraxas-365/nimbus/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("EMAIL")

var (
	CodeSingleAt       = ErrRegistry.Register("SINGLE_AT", errx.TypeValidation, http.StatusBadRequest, "E-mail address must contain a single @ symbol.")
	CodeEmptyLocal     = ErrRegistry.Register("EMPTY_LOCAL_PART", errx.TypeValidation, http.StatusBadRequest, "An e-mail address should have at least one character before the @ symbol.")
	CodeEmptyDomain    = ErrRegistry.Register("EMPTY_DOMAIN", errx.TypeValidation, http.StatusBadRequest, "An e-mail address should have at least one character after the @ symbol.")
	CodeDomainNotFound = ErrRegistry.Register("DOMAIN_NOT_FOUND", errx.TypeDomainUnreachable, http.StatusBadRequest, "Unable to find name servers for e-mail address's domain.")
	CodeLookupTimeout  = ErrRegistry.Register("LOOKUP_TIMEOUT", errx.TypeDomainUnreachable, http.StatusBadRequest, "Timed out trying to reach e-mail address's domain's nameserver(s).")
	CodeNoMailServers  = ErrRegistry.Register("NO_MAIL_SERVERS", errx.TypeDomainUnreachable, http.StatusBadRequest, "Unable to look up e-mail address domain's mail servers.")
)

// Resolver failures the validator distinguishes. Implementations wrap them.
var (
	ErrNXDomain = errors.New("emailcheck: domain does not exist")
	ErrTimeout  = errors.New("emailcheck: lookup timed out")
)

// MXRecord is a single mail exchanger for a domain.
type MXRecord struct {
	Host       string
	Preference uint16
}

// Resolver looks up the MX records of a domain.
type Resolver interface {
	LookupMX(ctx context.Context, domain string) ([]MXRecord, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, domain string) ([]MXRecord, error)

func (f ResolverFunc) LookupMX(ctx context.Context, domain string) ([]MXRecord, error) {
	return f(ctx, domain)
}

// Validator checks address syntax and MX deliverability.
type Validator struct {
	resolver Resolver
}

// NewValidator creates a validator using resolver for MX lookups.
func NewValidator(resolver Resolver) *Validator {
	return &Validator{resolver: resolver}
}

// Split returns the local part and domain of address.
func Split(address string) (local, domain string, err error) {
	parts := strings.Split(address, "@")
	if len(parts) != 2 {
		return "", "", ErrRegistry.New(CodeSingleAt)
	}
	if parts[0] == "" {
		return "", "", ErrRegistry.New(CodeEmptyLocal)
	}
	if parts[1] == "" {
		return "", "", ErrRegistry.New(CodeEmptyDomain)
	}
	return parts[0], parts[1], nil
}

// Validate accepts address only when it has one @, both halves are
// non-empty and the domain publishes at least one MX record. Resolver
// errors other than NXDOMAIN and timeout are returned unchanged.
func (v *Validator) Validate(ctx context.Context, address string) error {
	_, domain, err := Split(address)
	if err != nil {
		return err
	}

	records, err := v.resolver.LookupMX(ctx, domain)
	switch {
	case errors.Is(err, ErrNXDomain):
		return ErrRegistry.NewWithCause(CodeDomainNotFound, err).WithDetail("domain", domain)
	case errors.Is(err, ErrTimeout):
		return ErrRegistry.NewWithCause(CodeLookupTimeout, err).WithDetail("domain", domain)
	case err != nil:
		return err
	}

	if len(records) == 0 {
		return ErrRegistry.New(CodeNoMailServers).WithDetail("domain", domain)
	}
	return nil
}
