package crypto

import (
	"crypto/aes"
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/pbkdf2"
)

// KnowledgePBKDF2Iterations is the fixed iteration count used to normalize
// the user's password/PIN into the 16-byte knowledge unlock key.
const KnowledgePBKDF2Iterations = 10000

// PBKDF2SHA256 derives a key from a password using PBKDF2-HMAC-SHA256.
func PBKDF2SHA256(password, salt []byte, iterations, keyLen int) []byte {
	return pbkdf2.Key(password, salt, iterations, keyLen, sha256.New)
}

// DeriveKnowledgeUnlockKey normalizes a user password/PIN into the 16-byte
// key used to unlock the knowledge-factor envelope. The salt is always the
// raw bytes of the activation's short ID, and the iteration count is fixed
// so that client and server stay interoperable without negotiation.
func DeriveKnowledgeUnlockKey(password, activationIDShort []byte) []byte {
	return PBKDF2SHA256(password, activationIDShort, KnowledgePBKDF2Iterations, AESCBCKeySize)
}

// DeriveK implements the protocol's one-block key tree: a single raw AES
// block encryption of a 16-byte big-endian index under the master key
// (equivalent to one AES-CBC block with a zero IV, but without PKCS#7
// padding since the input is already exactly one block). This is how every
// long-lived signature factor key, the transport key, and any vault-derived
// key are produced from a 16-byte master secret.
func DeriveK(master []byte, index uint64) ([]byte, error) {
	if len(master) != AESCBCKeySize {
		return nil, ErrAESCBCInvalidKeySize
	}
	block, err := aes.NewCipher(master)
	if err != nil {
		return nil, err
	}
	var in [AESCBCBlockSize]byte
	binary.BigEndian.PutUint64(in[8:], index)
	out := make([]byte, AESCBCBlockSize)
	block.Encrypt(out, in[:])
	return out, nil
}
