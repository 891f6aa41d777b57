// Package secrethash computes the SECRET_HASH a user pool app client with a
// secret requires on every username-bound call.
package secrethash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Compute returns base64(HMAC-SHA256(clientSecret, subject+clientID)).
func Compute(subject, clientID, clientSecret string) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(subject + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Client binds the app client credentials so callers only supply the subject.
type Client struct {
	ID     string
	Secret string
}

// For returns the secret hash for subject.
func (c Client) For(subject string) string {
	return Compute(subject, c.ID, c.Secret)
}
