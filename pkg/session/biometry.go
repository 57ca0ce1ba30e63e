package session

import "github.com/powerauth-go/mobile-sdk/pkg/crypto"

// AddBiometryFactor enrolls (or re-enrolls) the biometry factor after
// activation. vaultKey is the K_vault obtained from a vault-unlock round
// trip (see pkg/vault); the biometry signature key is derived from it as
// derive_k(K_vault, 3) and wrapped under biometryUnlockKey, the key the
// platform biometric store released for this operation.
func (s *Session) AddBiometryFactor(vaultKey, biometryUnlockKey []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUsableLocked(); err != nil {
		return err
	}
	if s.state != StateActive {
		return ErrMissingActivation
	}
	if len(biometryUnlockKey) != crypto.AESCBCKeySize {
		return ErrInvalidActivationData
	}

	biometryKey, err := crypto.DeriveK(vaultKey, 3)
	if err != nil {
		return err
	}
	defer crypto.Zeroize(biometryKey)

	envelope, err := crypto.AESCBCEncrypt(biometryUnlockKey, crypto.ZeroIV, biometryKey)
	if err != nil {
		return err
	}

	s.active.envelopes[Biometry] = envelope
	if s.log != nil {
		s.log.Info("biometry factor enrolled")
	}
	return nil
}

// RemoveBiometryFactor discards the biometry envelope, if any. Signing
// with the biometry factor fails thereafter until it is re-enrolled.
func (s *Session) RemoveBiometryFactor() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUsableLocked(); err != nil {
		return err
	}
	if s.state != StateActive {
		return ErrMissingActivation
	}
	if env, ok := s.active.envelopes[Biometry]; ok {
		crypto.Zeroize(env)
		delete(s.active.envelopes, Biometry)
	}
	if s.log != nil {
		s.log.Info("biometry factor removed")
	}
	return nil
}
