package storage

import (
	"crypto/rand"
	"encoding/base64"
)

// GuidFunc produces a globally-unique, sync-stable string identifier. It is
// invoked exactly once per new page, inside the creating transaction; an
// error aborts page creation.
type GuidFunc func() (string, error)

// RandomGuid generates a 12-character base64url guid from 9 random bytes,
// the format the synchronization subsystem expects.
func RandomGuid() (string, error) {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
