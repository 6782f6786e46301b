package security

import "time"

// NewTestTokenProvider returns a TokenProvider with a freshly generated P-256 key.
// For unit tests only.
func NewTestTokenProvider() (*TokenProvider, error) {
	priv, pub, err := LoadSigningKeys("", "")
	if err != nil {
		return nil, err
	}
	return NewTokenProvider(priv, pub, "test-issuer", time.Hour), nil
}
