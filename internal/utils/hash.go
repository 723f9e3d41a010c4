package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// TokenBytes is the amount of entropy of every opaque token issued by the
// application (sessions, e-mail verification, password reset).
const TokenBytes = 32

// HashString computes an HMAC-SHA256 signature over the given string
// using the provided hash key and returns the result as a hex-encoded string.
//
// Opaque tokens are persisted only in this form, so a leaked database does
// not yield usable session or reset tokens.
//
//	digest := utils.HashString(token, "my-secret-key")
func HashString(data string, hashKey string) string {
	hasher := hmac.New(sha256.New, []byte(hashKey))
	hasher.Write([]byte(data))
	return hex.EncodeToString(hasher.Sum(nil))
}

// RandomHex returns n cryptographically random bytes encoded as hex.
func RandomHex(n int) (string, error) {
	b, err := randomBytes(n)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// RandomURLSafe returns n cryptographically random bytes encoded as
// unpadded base64url.
func RandomURLSafe(n int) (string, error) {
	b, err := randomBytes(n)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("error reading random bytes: %w", err)
	}
	return b, nil
}
