// Package session holds the identity provider credentials stored per
// federated identity, which the authenticated password change needs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abraxas-365/nimbus/pkg/iam"
	"github.com/Abraxas-365/nimbus/pkg/kernel"
)

// Record keys shared by every backend.
const (
	KeyUserID         = "user-id"
	KeyIDPCredentials = "idp-credentials"
)

// ErrNotFound is returned by a Store that has nothing for the identity.
var ErrNotFound = errors.New("session: not found")

// Session is the stored user pool username and access token of an identity.
type Session struct {
	UserID      kernel.UserID
	AccessToken string
	ExpiresAt   time.Time
}

// Usable reports whether the access token is present and not expired at now.
// Expiry is compared in whole seconds; a token expiring this second is usable.
func (s *Session) Usable(now time.Time) bool {
	return s != nil && s.AccessToken != "" && s.ExpiresAt.Unix() >= now.Unix()
}

// Store looks up the session of an identity.
type Store interface {
	Get(ctx context.Context, identity iam.Identity) (*Session, error)
}

// Writer persists the session of an identity.
type Writer interface {
	Save(ctx context.Context, identity iam.Identity, s Session) error
}

type idpCredentials struct {
	AccessToken string `json:"access-token"`
	Expires     int64  `json:"expires"`
}

// Records encodes s as the key/value pairs backends store.
func (s Session) Records() (map[string]string, error) {
	creds, err := json.Marshal(idpCredentials{AccessToken: s.AccessToken, Expires: s.ExpiresAt.Unix()})
	if err != nil {
		return nil, fmt.Errorf("session: encode credentials: %w", err)
	}
	return map[string]string{
		KeyUserID:         s.UserID.String(),
		KeyIDPCredentials: string(creds),
	}, nil
}

// FromRecords decodes the key/value pairs of a backend. Missing credentials
// yield a session with an empty access token rather than an error.
func FromRecords(records map[string]string) (*Session, error) {
	s := &Session{UserID: kernel.NewUserID(records[KeyUserID])}

	raw, ok := records[KeyIDPCredentials]
	if !ok || raw == "" {
		return s, nil
	}

	var creds idpCredentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", KeyIDPCredentials, err)
	}
	s.AccessToken = creds.AccessToken
	s.ExpiresAt = time.Unix(creds.Expires, 0)
	return s, nil
}
