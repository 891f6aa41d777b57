package iam

import (
	"net/http"

	"github.com/Abraxas-365/nimbus/pkg/errx"
)

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("IAM")

var (
	CodeMissingField     = ErrRegistry.Register("MISSING_FIELD", errx.TypeValidation, http.StatusBadRequest, "Value for \"%s\" must be specified in request body.")
	CodeUnknownResource  = ErrRegistry.Register("UNKNOWN_RESOURCE", errx.TypeValidation, http.StatusNotFound, "Resource %s is not handled.")
	CodeUnsureHowToRoute = ErrRegistry.Register("UNSURE_HOW_TO_PROCESS", errx.TypeInternal, http.StatusInternalServerError, "Unsure how to process request.")
)

// ErrMissingField reports a required body field that is absent or empty.
func ErrMissingField(field string) *errx.Error {
	return ErrRegistry.Newf(CodeMissingField, field).WithDetail("field", field)
}

func ErrUnknownResource(resource string) *errx.Error {
	return ErrRegistry.Newf(CodeUnknownResource, resource).WithDetail("resource", resource)
}

func ErrUnsureHowToProcess() *errx.Error {
	return ErrRegistry.New(CodeUnsureHowToRoute)
}

// ============================================================================
// Responses
// ============================================================================

// Response is the JSON object a handler returns on success.
type Response map[string]any

// WarmedMessage is returned for warming invocations.
const WarmedMessage = "Warmed!"

// Warmed is the liveness payload for warming invocations.
func Warmed() Response {
	return Response{"message": WarmedMessage}
}
