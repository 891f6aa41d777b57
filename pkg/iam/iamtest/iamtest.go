// Package iamtest provides in-memory Cognito clients for handler tests.
package iamtest

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/smithy-go"
)

// APIError returns an error shaped like an SDK operation failure carrying code.
func APIError(operation, code string) error {
	return &smithy.OperationError{
		ServiceID:     "Cognito",
		OperationName: operation,
		Err:           &smithy.GenericAPIError{Code: code, Message: code},
	}
}

// ParamError returns an error shaped like SDK client-side input validation.
func ParamError(operation, field string) error {
	invalid := smithy.InvalidParamsError{Context: operation + "Input"}
	invalid.Add(smithy.NewErrParamRequired(field))
	return &smithy.OperationError{ServiceID: "Cognito", OperationName: operation, Err: invalid}
}

// UserPool is a scripted iam.UserPoolAPI. Unset funcs succeed with empty output.
type UserPool struct {
	mu    sync.Mutex
	Calls []string

	SignUpFn                func(*cip.SignUpInput) (*cip.SignUpOutput, error)
	AdminInitiateAuthFn     func(*cip.AdminInitiateAuthInput) (*cip.AdminInitiateAuthOutput, error)
	ChangePasswordFn        func(*cip.ChangePasswordInput) (*cip.ChangePasswordOutput, error)
	ForgotPasswordFn        func(*cip.ForgotPasswordInput) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPasswordFn func(*cip.ConfirmForgotPasswordInput) (*cip.ConfirmForgotPasswordOutput, error)
}

func (p *UserPool) record(op string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, op)
}

func (p *UserPool) SignUp(_ context.Context, in *cip.SignUpInput, _ ...func(*cip.Options)) (*cip.SignUpOutput, error) {
	p.record("SignUp")
	if p.SignUpFn != nil {
		return p.SignUpFn(in)
	}
	return &cip.SignUpOutput{}, nil
}

func (p *UserPool) AdminInitiateAuth(_ context.Context, in *cip.AdminInitiateAuthInput, _ ...func(*cip.Options)) (*cip.AdminInitiateAuthOutput, error) {
	p.record("AdminInitiateAuth")
	if p.AdminInitiateAuthFn != nil {
		return p.AdminInitiateAuthFn(in)
	}
	return &cip.AdminInitiateAuthOutput{}, nil
}

func (p *UserPool) ChangePassword(_ context.Context, in *cip.ChangePasswordInput, _ ...func(*cip.Options)) (*cip.ChangePasswordOutput, error) {
	p.record("ChangePassword")
	if p.ChangePasswordFn != nil {
		return p.ChangePasswordFn(in)
	}
	return &cip.ChangePasswordOutput{}, nil
}

func (p *UserPool) ForgotPassword(_ context.Context, in *cip.ForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error) {
	p.record("ForgotPassword")
	if p.ForgotPasswordFn != nil {
		return p.ForgotPasswordFn(in)
	}
	return &cip.ForgotPasswordOutput{}, nil
}

func (p *UserPool) ConfirmForgotPassword(_ context.Context, in *cip.ConfirmForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error) {
	p.record("ConfirmForgotPassword")
	if p.ConfirmForgotPasswordFn != nil {
		return p.ConfirmForgotPasswordFn(in)
	}
	return &cip.ConfirmForgotPasswordOutput{}, nil
}

// IdentityPool is a scripted iam.IdentityPoolAPI.
type IdentityPool struct {
	mu    sync.Mutex
	Calls []string

	GetIdFn                     func(*cognitoidentity.GetIdInput) (*cognitoidentity.GetIdOutput, error)
	GetCredentialsForIdentityFn func(*cognitoidentity.GetCredentialsForIdentityInput) (*cognitoidentity.GetCredentialsForIdentityOutput, error)
}

func (p *IdentityPool) record(op string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, op)
}

func (p *IdentityPool) GetId(_ context.Context, in *cognitoidentity.GetIdInput, _ ...func(*cognitoidentity.Options)) (*cognitoidentity.GetIdOutput, error) {
	p.record("GetId")
	if p.GetIdFn != nil {
		return p.GetIdFn(in)
	}
	return &cognitoidentity.GetIdOutput{}, nil
}

func (p *IdentityPool) GetCredentialsForIdentity(_ context.Context, in *cognitoidentity.GetCredentialsForIdentityInput, _ ...func(*cognitoidentity.Options)) (*cognitoidentity.GetCredentialsForIdentityOutput, error) {
	p.record("GetCredentialsForIdentity")
	if p.GetCredentialsForIdentityFn != nil {
		return p.GetCredentialsForIdentityFn(in)
	}
	return &cognitoidentity.GetCredentialsForIdentityOutput{}, nil
}
