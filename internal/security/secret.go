package security

import (
	"crypto/rand"
	"encoding/hex"
)

// secretLength is the size of a generated CSRF signing key.
const secretLength = 32

// ResolveSecret turns a configured secret into key bytes. Hex strings are
// decoded, anything else is used as raw bytes. An empty value yields a fresh
// random key and generated reports true.
func ResolveSecret(configured string) (secret []byte, generated bool, err error) {
	if configured != "" {
		if decoded, err := hex.DecodeString(configured); err == nil {
			return decoded, false, nil
		}
		return []byte(configured), false, nil
	}

	secret = make([]byte, secretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, false, err
	}
	return secret, true, nil
}
