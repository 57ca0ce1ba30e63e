package activation

import (
	"fmt"

	"github.com/powerauth-go/mobile-sdk/pkg/crypto"
)

// DeviceFingerprint computes the human-verifiable fingerprint shown to the
// user right after a successful handshake: SHA-256(devicePublicKeyRaw ||
// activationID), truncated to its leftmost 4 bytes, read as a big-endian
// uint32 and rendered as an 8-digit decimal string in two groups of four
// (e.g. "1234 5678").
func DeviceFingerprint(devicePublicKeyRaw, activationID []byte) string {
	digest := crypto.SHA256(append(append([]byte(nil), devicePublicKeyRaw...), activationID...))
	v := uint32(digest[0])<<24 | uint32(digest[1])<<16 | uint32(digest[2])<<8 | uint32(digest[3])
	v %= 100000000
	digits := fmt.Sprintf("%08d", v)
	return digits[:4] + " " + digits[4:]
}
