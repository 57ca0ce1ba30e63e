package session

import "github.com/powerauth-go/mobile-sdk/pkg/crypto"

// UnlockKeys is the transient triple of unlock keys a caller supplies for
// one operation (commit, sign, password change, biometry enrollment). It is
// constructed per call and never persisted in cleartext; callers must
// Zeroize it once the operation completes.
type UnlockKeys struct {
	// Possession is the device-related unlock material (typically the
	// platform keychain entry). It is folded into a 16-byte key with
	// crypto.SignatureUnlockKeyFromData before use. It is required at
	// commit and whenever the possession factor is used; nil or empty is
	// rejected.
	Possession []byte

	// Password is the knowledge-factor unlock input in cleartext (the
	// user's PIN or password). It is normalized with PBKDF2 before use,
	// never used directly as an AES key.
	Password []byte

	// Biometry is the key released by the platform biometric store for
	// this operation. Nil when the biometry factor is not being used.
	Biometry []byte
}

// Zeroize overwrites every key held by k in place. Callers must defer this
// immediately after constructing an UnlockKeys for a signing or vault
// operation.
func (k *UnlockKeys) Zeroize() {
	if k == nil {
		return
	}
	crypto.Zeroize(k.Possession)
	crypto.Zeroize(k.Password)
	crypto.Zeroize(k.Biometry)
}
