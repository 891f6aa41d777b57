package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"github.com/Abraxas-365/nimbus/pkg/iam"
	"github.com/Abraxas-365/nimbus/pkg/kernel"
)

// Stage variable and mapped event keys that carry the login pool parameters.
const (
	keyUserPoolID     = "cognito-user-pool-id"
	keyClientID       = "cognito-user-pool-client-id"
	keyClientSecret   = "cognito-user-pool-client-secret"
	keyIdentityPoolID = "cognito-identity-pool-id"
)

// event is every shape the function is invoked with: an API Gateway proxy
// request, a mapping-template event with a pre-parsed "request-body" and
// top-level pool parameters, or a bare warming ping.
type event struct {
	events.APIGatewayProxyRequest

	Warming        any            `json:"warming"`
	RequestBody    map[string]any `json:"request-body"`
	UserPoolID     string         `json:"cognito-user-pool-id"`
	ClientID       string         `json:"cognito-user-pool-client-id"`
	ClientSecret   string         `json:"cognito-user-pool-client-secret"`
	IdentityPoolID string         `json:"cognito-identity-pool-id"`
}

// proxied reports whether the caller expects an API Gateway proxy response.
func (e *event) proxied() bool {
	return e.RequestBody == nil && (e.HTTPMethod != "" || e.Resource != "" || e.Body != "")
}

// errBadBody is a proxy body that is not a JSON object.
type errBadBody struct{ err error }

func (e errBadBody) Error() string { return fmt.Sprintf("decode request body: %v", e.err) }
func (e errBadBody) Unwrap() error { return e.err }

// request converts e into an iam.Request. resource is used when the event
// names none; fallback supplies pool parameters the event does not carry.
func (e *event) request(resource string, fallback iam.PoolParams) (*iam.Request, error) {
	req := &iam.Request{
		Resource: e.Resource,
		Body:     e.RequestBody,
		Identity: iam.Identity{
			IdentityID:     kernel.NewIdentityID(e.RequestContext.Identity.CognitoIdentityID),
			IdentityPoolID: e.RequestContext.Identity.CognitoIdentityPoolID,
		},
		Warming: iam.ParseWarming(e.Warming),
	}
	if req.Resource == "" {
		req.Resource = resource
	}

	if req.Body == nil {
		req.Body = map[string]any{}
		if e.Body != "" {
			raw := []byte(e.Body)
			if e.IsBase64Encoded {
				decoded, err := base64.StdEncoding.DecodeString(e.Body)
				if err != nil {
					return nil, errBadBody{err}
				}
				raw = decoded
			}
			if err := json.Unmarshal(raw, &req.Body); err != nil {
				return nil, errBadBody{err}
			}
		}
	}

	req.Pool = iam.PoolParams{
		UserPoolID:     first(e.UserPoolID, e.StageVariables[keyUserPoolID], fallback.UserPoolID),
		ClientID:       first(e.ClientID, e.StageVariables[keyClientID], fallback.ClientID),
		ClientSecret:   first(e.ClientSecret, e.StageVariables[keyClientSecret], fallback.ClientSecret),
		IdentityPoolID: first(e.IdentityPoolID, e.StageVariables[keyIdentityPoolID], fallback.IdentityPoolID),
	}
	return req, nil
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
