package model

import "time"

// TokenStorage indicates where the bearer token is stored
type TokenStorage string

const (
	// TokenStorageKeyring stores the token in the system keyring
	TokenStorageKeyring TokenStorage = "keyring"

	// TokenStorageInsecure stores the token in the local database (fallback)
	TokenStorageInsecure TokenStorage = "insecure_storage"
)

// Session is what bidmatch remembers about the signed-in account between
// runs. The token itself lives in the keyring unless the keyring is
// unavailable.
type Session struct {
	Email        string       `json:"email"`
	UserID       int64        `json:"user_id"`
	Role         Role         `json:"role"`
	TokenStorage TokenStorage `json:"token_storage"`

	// Token is only populated when TokenStorage is insecure_storage
	Token string `json:"token,omitempty"`

	SignedInAt time.Time `json:"signed_in_at"`
}
