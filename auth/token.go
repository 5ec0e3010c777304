package auth

import "time"

// expiryBuffer is subtracted from the token lifetime so a token that is
// about to expire is refreshed rather than used.
const expiryBuffer = 60 * time.Second

// TokenSet is the access/refresh token pair returned by the token endpoint.
// The JSON layout matches the file the token endpoint response is saved as,
// including the saved-at stamp used to compute expiry.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	SavedAt      int64  `json:"_saved_at"`
}

// Valid reports whether the access token can still be used at now, leaving
// the expiry buffer unspent.
func (t *TokenSet) Valid(now time.Time) bool {
	if t.AccessToken == "" {
		return false
	}
	expiresIn := t.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 1800 // endpoint default, 30 minutes
	}
	age := now.Unix() - t.SavedAt
	return age < expiresIn-int64(expiryBuffer.Seconds())
}

// Remaining returns how long the access token stays usable from now,
// not counting the expiry buffer.
func (t *TokenSet) Remaining(now time.Time) time.Duration {
	expiresIn := t.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 1800
	}
	rem := expiresIn - (now.Unix() - t.SavedAt)
	if rem < 0 {
		rem = 0
	}
	return time.Duration(rem) * time.Second
}
