package crypto

import (
	"crypto/sha256"
	"hash"
)

// SHA256LenBytes is the SHA-256 output length in bytes.
const SHA256LenBytes = 32

// SHA256 computes the SHA-256 digest of message.
func SHA256(message []byte) [SHA256LenBytes]byte {
	return sha256.Sum256(message)
}

// SHA256Slice computes the SHA-256 digest and returns it as a slice.
func SHA256Slice(message []byte) []byte {
	h := sha256.Sum256(message)
	return h[:]
}

// NewSHA256 returns a new hash.Hash for incremental SHA-256 digests.
func NewSHA256() hash.Hash {
	return sha256.New()
}

// SignatureUnlockKeyFromData folds arbitrary device-related entropy into a
// 16-byte unlock key: SHA-256 truncated to its leftmost 16 bytes.
//
// Used to derive the possession-factor unlock key from device-bound bytes
// (e.g. a keychain-resident identifier) that are not themselves a key of
// the right length.
func SignatureUnlockKeyFromData(data []byte) []byte {
	digest := sha256.Sum256(data)
	out := make([]byte, 16)
	copy(out, digest[:16])
	return out
}
