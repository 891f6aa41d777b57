package iam

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/smithy-go"
)

// UserPoolAPI is the part of the Cognito user pool client the handlers call.
// *cognitoidentityprovider.Client satisfies it.
type UserPoolAPI interface {
	SignUp(ctx context.Context, in *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	AdminInitiateAuth(ctx context.Context, in *cip.AdminInitiateAuthInput, optFns ...func(*cip.Options)) (*cip.AdminInitiateAuthOutput, error)
	ChangePassword(ctx context.Context, in *cip.ChangePasswordInput, optFns ...func(*cip.Options)) (*cip.ChangePasswordOutput, error)
	ForgotPassword(ctx context.Context, in *cip.ForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, in *cip.ConfirmForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
}

// IdentityPoolAPI is the part of the Cognito federated identity client login calls.
// *cognitoidentity.Client satisfies it.
type IdentityPoolAPI interface {
	GetId(ctx context.Context, in *cognitoidentity.GetIdInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetIdOutput, error)
	GetCredentialsForIdentity(ctx context.Context, in *cognitoidentity.GetCredentialsForIdentityInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetCredentialsForIdentityOutput, error)
}

// Provider error codes the handlers translate.
const (
	ProviderUserNotFound     = "UserNotFoundException"
	ProviderNotAuthorized    = "NotAuthorizedException"
	ProviderInvalidPassword  = "InvalidPasswordException"
	ProviderLimitExceeded    = "LimitExceededException"
	ProviderCodeMismatch     = "CodeMismatchException"
	ProviderExpiredCode      = "ExpiredCodeException"
	ProviderInvalidParameter = "InvalidParameterException"

	// ProviderParamValidation marks client-side SDK input validation failures
	ProviderParamValidation = "ParamValidationError"
)

// ProviderCode returns the identity provider error code carried by err.
// SDK input validation failures report ProviderParamValidation; anything
// that is not a provider error reports "".
func ProviderCode(err error) string {
	if err == nil {
		return ""
	}

	var invalid smithy.InvalidParamsError
	var invalidPtr *smithy.InvalidParamsError
	if errors.As(err, &invalid) || errors.As(err, &invalidPtr) {
		return ProviderParamValidation
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// CodeMapping translates provider error codes into typed errors.
// Codes that are not listed are returned unchanged by Translate.
type CodeMapping map[string]func() error

// Translate maps err through m, returning err itself when its code is not mapped.
func (m CodeMapping) Translate(err error) error {
	if err == nil {
		return nil
	}
	if build, ok := m[ProviderCode(err)]; ok {
		return build()
	}
	return err
}
