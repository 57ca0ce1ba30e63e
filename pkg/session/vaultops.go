package session

import "github.com/powerauth-go/mobile-sdk/pkg/crypto"

// devicePrivateKeyProtectionIndex is the derive_k index used to protect
// the device's own ECDSA private key at rest (distinct from the index
// space used for the four signature factor keys and any caller-requested
// derived key, see pkg/vault.DeriveCryptographicKey).
const devicePrivateKeyProtectionIndex = 9999

// TransportKey returns a copy of the cleartext transport key, used by
// pkg/vault to decrypt the server's vault-unlock response
// (encryptedVaultEncryptionKey = AES(K_transport, 0, K_vault)). The
// transport key is the one signature factor key this Session never wraps
// under an unlock key, since it must be available for every request
// without user interaction.
func (s *Session) TransportKey() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return nil, ErrMissingActivation
	}
	return append([]byte(nil), s.active.transportKey...), nil
}

// SignWithDevicePrivateKey decrypts the device's own ECDSA private key and
// signs payload with it (ECDSA-P256-SHA256 over SHA-256(payload)). Callers
// must have already completed a vault-unlock round trip per §4.E; this
// method itself does not take K_vault, since the device private key
// envelope is protected by a key derived from the transport key rather
// than K_vault (this Session never derives K_vault — only the server
// does, see pkg/vault and DESIGN.md). The vault-unlock round trip still
// gates the operation: it is the only way a caller proves a valid
// knowledge/biometry-backed signature before reaching this call.
func (s *Session) SignWithDevicePrivateKey(payload []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return nil, ErrMissingActivation
	}

	unlock, err := crypto.DeriveK(s.active.transportKey, devicePrivateKeyProtectionIndex)
	if err != nil {
		return nil, err
	}
	privateKeyBytes, err := crypto.AESCBCDecrypt(unlock, crypto.ZeroIV, s.active.devicePrivateKeyEnvelope)
	crypto.Zeroize(unlock)
	if err != nil {
		return nil, ErrInvalidActivationData
	}
	defer crypto.Zeroize(privateKeyBytes)

	keyPair, err := crypto.P256KeyPairFromPrivateKey(privateKeyBytes)
	if err != nil {
		return nil, err
	}
	defer keyPair.Zeroize()

	return crypto.P256Sign(keyPair, payload)
}
