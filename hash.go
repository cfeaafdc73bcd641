package shroud

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// fingerprintLen is the number of hex characters kept from a digest.
const fingerprintLen = 12

// SHA256Policy replaces text with a short SHA-256 fingerprint. Equal inputs
// produce equal fingerprints, so values can be correlated across log lines
// without being revealed. Not suitable for low-entropy secrets.
func SHA256Policy() TextPolicy {
	return CustomWith(string(NameSHA256), func(value string, m Markers) string {
		if value == "" {
			return m.Placeholder
		}
		sum := sha256.Sum256([]byte(value))
		return "sha256:" + hex.EncodeToString(sum[:])[:fingerprintLen]
	})
}

// Blake2bPolicy is SHA256Policy with a BLAKE2b-256 digest.
func Blake2bPolicy() TextPolicy {
	return CustomWith(string(NameBlake2b), func(value string, m Markers) string {
		if value == "" {
			return m.Placeholder
		}
		sum := blake2b.Sum256([]byte(value))
		return "blake2b:" + hex.EncodeToString(sum[:])[:fingerprintLen]
	})
}
