package iam

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abraxas-365/nimbus/pkg/kernel"
)

// Resources the handlers are mounted on.
const (
	ResourceRegister       = "/user/register"
	ResourceLogin          = "/user/login"
	ResourcePassword       = "/user/password"
	ResourceForgot         = "/user/forgot"
	ResourceForgotPassword = "/user/forgot/password"
)

// Body fields the handlers read.
const (
	FieldEmail       = "email-address"
	FieldPassword    = "password"
	FieldOldPassword = "old-password"
	FieldResetCode   = "token"
)

// Identity holds the federated identity claims the gateway attached to the caller.
type Identity struct {
	IdentityID     kernel.IdentityID
	IdentityPoolID string
}

// PoolParams are the user pool connection parameters a login request carries.
type PoolParams struct {
	UserPoolID     string
	ClientID       string
	ClientSecret   string
	IdentityPoolID string
}

// ProviderName is the login map key federated identities expect for ID
// tokens issued by userPoolID.
func ProviderName(region, userPoolID string) string {
	return fmt.Sprintf("cognito-idp.%s.amazonaws.com/%s", region, userPoolID)
}

// Request is a single handler invocation.
type Request struct {
	Resource string
	Body     map[string]any
	Identity Identity
	Pool     PoolParams
	Warming  bool
}

// Field returns the body value for name when it is a string.
func (r *Request) Field(name string) string {
	if r == nil || r.Body == nil {
		return ""
	}
	s, _ := r.Body[name].(string)
	return s
}

// Require returns the values of the named fields in order, failing on the
// first one that is missing, empty or not a string.
func (r *Request) Require(names ...string) ([]string, error) {
	values := make([]string, len(names))
	for i, name := range names {
		v := r.Field(name)
		if v == "" {
			return nil, ErrMissingField(name)
		}
		values[i] = v
	}
	return values, nil
}

// ParseWarming interprets a raw warming flag: JSON true or any casing of "true".
func ParseWarming(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	default:
		return false
	}
}

// Handler serves one or more resources.
type Handler interface {
	Handle(ctx context.Context, req *Request) (Response, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req *Request) (Response, error)

func (f HandlerFunc) Handle(ctx context.Context, req *Request) (Response, error) {
	return f(ctx, req)
}

// IsEmpty reports whether the caller carried no identity claims.
func (i Identity) IsEmpty() bool {
	return i.IdentityID.IsEmpty() || i.IdentityPoolID == ""
}
