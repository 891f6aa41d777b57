package errx

// Response is the JSON body returned for a typed failure
type Response struct {
	Message string `json:"message"`
}

// Body returns the caller-facing body for the error
func (e *Error) Body() Response {
	return Response{Message: e.Message}
}

// Classify splits err into a typed failure the adapter renders, or reports
// false when err is an untyped fault that must propagate.
func Classify(err error) (status int, body Response, typed bool) {
	e, ok := As(err)
	if !ok {
		return 0, Response{}, false
	}
	return e.HTTPStatus, e.Body(), true
}
