package meta

import "strings"

// ValidateKey checks if a key is valid for the memcache protocol.
// Keys must be 1-250 bytes and contain no whitespace (unless base64-encoded).
func ValidateKey(key string, hasBase64Flag bool) error {
	keyLen := len(key)

	if keyLen < MinKeyLength {
		return &InvalidKeyError{Message: "key is empty"}
	}

	if keyLen > MaxKeyLength {
		return &InvalidKeyError{Message: "key exceeds maximum length of 250 bytes"}
	}

	// Whitespace is only allowed if key is base64-encoded
	if !hasBase64Flag && strings.ContainsAny(key, " \t\r\n") {
		return &InvalidKeyError{Message: "key contains whitespace"}
	}

	return nil
}

// ValidateOpaque checks if an opaque token is valid for the memcache protocol.
// Opaque tokens are limited to 32 bytes.
func ValidateOpaque(opaque string) error {
	if len(opaque) > MaxOpaqueLength {
		return &InvalidOpaqueError{Message: "opaque token exceeds maximum length of 32 bytes"}
	}
	return nil
}
