package session

import "github.com/powerauth-go/mobile-sdk/pkg/crypto"

// ChangeUserPasswordUnsafe locally re-encrypts the knowledge-factor
// envelope: it decrypts the existing envelope with oldPassword normalized
// through PBKDF2, then re-encrypts the recovered key under newPassword's
// normalization.
//
// Precondition the caller must uphold: oldPassword is NOT validated here.
// If it is wrong, AES-CBC's PKCS#7 padding check will reject the decrypt
// almost always (returning ErrInvalidActivationData) — but it is not a MAC,
// so a wrong password can in principle decrypt to a value with
// coincidentally valid padding, producing a knowledge envelope sealed
// around garbage that will only surface as a later signing failure. To
// guarantee the old password was correct, drive a vault-unlock request
// first (see pkg/vault.Client.ChangeUserPasswordValidated), which proves
// it via a successful signed round trip before calling this method.
func (s *Session) ChangeUserPasswordUnsafe(oldPassword, newPassword []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUsableLocked(); err != nil {
		return err
	}
	if s.state != StateActive {
		return ErrMissingActivation
	}
	envelope, ok := s.active.envelopes[Knowledge]
	if !ok {
		return ErrSignatureFactorNotEnrolled
	}

	idShort := []byte(s.active.activationIDShort)
	oldUnlock := crypto.DeriveKnowledgeUnlockKey(oldPassword, idShort)
	knowledgeKey, err := crypto.AESCBCDecrypt(oldUnlock, crypto.ZeroIV, envelope)
	crypto.Zeroize(oldUnlock)
	if err != nil {
		return ErrInvalidActivationData
	}
	defer crypto.Zeroize(knowledgeKey)

	newUnlock := crypto.DeriveKnowledgeUnlockKey(newPassword, idShort)
	newEnvelope, err := crypto.AESCBCEncrypt(newUnlock, crypto.ZeroIV, knowledgeKey)
	crypto.Zeroize(newUnlock)
	if err != nil {
		return err
	}

	s.active.envelopes[Knowledge] = newEnvelope
	if s.log != nil {
		s.log.Info("knowledge factor envelope re-keyed")
	}
	return nil
}
