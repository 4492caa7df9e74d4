// Package token generates opaque secrets and their storable digests.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// GenerateRandomToken returns size random bytes, URL-safe encoded.
func GenerateRandomToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GeneratePrefixed returns a token of the form prefix_<random>. The prefix
// lets users recognise the secret in their config files.
func GeneratePrefixed(prefix string, size int) (string, error) {
	raw, err := GenerateRandomToken(size)
	if err != nil {
		return "", err
	}
	return prefix + "_" + raw, nil
}

// HashSHA256 returns the hex digest stored in place of the raw token.
func HashSHA256(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
