// Package iam holds what the user account handlers share: the request
// model, required-field validation, the Cognito client contracts, provider
// error-code matching and resource routing.
//
// Subpackages implement one handler each (registration, login, password)
// plus the pieces they call into (secrethash, emailcheck, session, auth).
package iam
