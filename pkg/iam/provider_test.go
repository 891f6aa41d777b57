package iam_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Abraxas-365/nimbus/pkg/errx"
	"github.com/Abraxas-365/nimbus/pkg/iam"
	"github.com/Abraxas-365/nimbus/pkg/iam/iamtest"
)

func TestProviderCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), ""},
		{"api error", iamtest.APIError("SignUp", iam.ProviderInvalidPassword), iam.ProviderInvalidPassword},
		{"wrapped api error", fmt.Errorf("call: %w", iamtest.APIError("SignUp", iam.ProviderLimitExceeded)), iam.ProviderLimitExceeded},
		{"param validation", iamtest.ParamError("ChangePassword", "AccessToken"), iam.ProviderParamValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, iam.ProviderCode(tt.err))
		})
	}
}

func TestCodeMapping_Translate(t *testing.T) {
	mapped := errx.New("mapped", errx.TypeProviderRejected)
	m := iam.CodeMapping{
		iam.ProviderNotAuthorized: func() error { return mapped },
	}

	assert.NoError(t, m.Translate(nil))
	assert.Same(t, mapped, m.Translate(iamtest.APIError("AdminInitiateAuth", iam.ProviderNotAuthorized)))

	other := iamtest.APIError("AdminInitiateAuth", "InternalErrorException")
	assert.Same(t, other, m.Translate(other))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, iam.OutcomeOK, iam.Outcome(nil))
	assert.Equal(t, iam.OutcomeFault, iam.Outcome(errors.New("boom")))
	assert.Equal(t, "IAM_MISSING_FIELD", iam.Outcome(iam.ErrMissingField("password")))
}
