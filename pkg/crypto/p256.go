package crypto

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// NIST P-256 constants.
const (
	// P256GroupSizeBytes is the group size in bytes.
	P256GroupSizeBytes = 32

	// P256PublicKeySizeBytes is the uncompressed public key size.
	// Format: 0x04 || X (32 bytes) || Y (32 bytes) = 65 bytes.
	P256PublicKeySizeBytes = 65

	// P256CompressedPublicKeySizeBytes is the compressed public key size.
	// Format: 0x02/0x03 || X (32 bytes) = 33 bytes.
	P256CompressedPublicKeySizeBytes = 33

	// P256SignatureSizeBytes is the ECDSA signature size (r || s).
	P256SignatureSizeBytes = 64
)

// P256KeyPair represents a P-256 key pair usable both for ECDH key
// agreement and ECDSA signing.
type P256KeyPair struct {
	ecdhPrivate  *ecdh.PrivateKey
	ecdsaPrivate *ecdsa.PrivateKey
}

// PublicKey returns the public key in uncompressed format (65 bytes).
func (kp *P256KeyPair) PublicKey() []byte {
	return kp.ecdhPrivate.PublicKey().Bytes()
}

// PublicKeyCompressed returns the public key in compressed format (33 bytes).
func (kp *P256KeyPair) PublicKeyCompressed() []byte {
	pub := kp.ecdsaPrivate.PublicKey
	return elliptic.MarshalCompressed(elliptic.P256(), pub.X, pub.Y)
}

// PrivateKeyBytes returns the private key as a 32-byte scalar.
func (kp *P256KeyPair) PrivateKeyBytes() []byte {
	return kp.ecdhPrivate.Bytes()
}

// Zeroize overwrites the key pair's sensitive scalar in memory. The
// underlying stdlib types don't expose a mutable buffer, so this best-effort
// zeroes the copy of the private scalar this wrapper can reach; callers
// that need a hard guarantee should drop all references and let the GC
// reclaim the backing memory promptly.
func (kp *P256KeyPair) Zeroize() {
	if kp.ecdsaPrivate != nil && kp.ecdsaPrivate.D != nil {
		kp.ecdsaPrivate.D.SetInt64(0)
	}
}

// P256GenerateKeyPair generates a new, random P-256 key pair.
func P256GenerateKeyPair() (*P256KeyPair, error) {
	ecdhPriv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ECDH key: %w", err)
	}
	ecdsaPriv, err := ecdhToECDSA(ecdhPriv)
	if err != nil {
		return nil, fmt.Errorf("failed to derive ECDSA key: %w", err)
	}
	return &P256KeyPair{ecdhPrivate: ecdhPriv, ecdsaPrivate: ecdsaPriv}, nil
}

// P256KeyPairFromPrivateKey reconstructs a key pair from a raw 32-byte
// private scalar, e.g. seeded deterministically in tests.
func P256KeyPairFromPrivateKey(privateKey []byte) (*P256KeyPair, error) {
	if len(privateKey) != P256GroupSizeBytes {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", P256GroupSizeBytes, len(privateKey))
	}
	ecdhPriv, err := ecdh.P256().NewPrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	ecdsaPriv, err := ecdhToECDSA(ecdhPriv)
	if err != nil {
		return nil, fmt.Errorf("failed to derive ECDSA key: %w", err)
	}
	return &P256KeyPair{ecdhPrivate: ecdhPriv, ecdsaPrivate: ecdsaPriv}, nil
}

// ecdhToECDSA converts an ecdh.PrivateKey to an ecdsa.PrivateKey so the same
// scalar can be used for both ECDH and ECDSA operations.
func ecdhToECDSA(ecdhKey *ecdh.PrivateKey) (*ecdsa.PrivateKey, error) {
	privBytes := ecdhKey.Bytes()
	d := new(big.Int).SetBytes(privBytes)

	pubBytes := ecdhKey.PublicKey().Bytes()
	if len(pubBytes) != P256PublicKeySizeBytes || pubBytes[0] != 0x04 {
		return nil, errors.New("crypto: unexpected public key format")
	}
	x := new(big.Int).SetBytes(pubBytes[1:33])
	y := new(big.Int).SetBytes(pubBytes[33:65])

	return &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y},
		D:         d,
	}, nil
}

// P256Sign signs message with an ECDSA-P256-SHA256 signature (message is
// hashed internally with SHA-256). Returns a 64-byte signature (r || s),
// each component zero-padded to 32 bytes.
func P256Sign(keyPair *P256KeyPair, message []byte) ([]byte, error) {
	hash := SHA256(message)
	r, s, err := ecdsa.Sign(rand.Reader, keyPair.ecdsaPrivate, hash[:])
	if err != nil {
		return nil, fmt.Errorf("ECDSA sign failed: %w", err)
	}

	sig := make([]byte, P256SignatureSizeBytes)
	rBytes, sBytes := r.Bytes(), s.Bytes()
	copy(sig[P256GroupSizeBytes-len(rBytes):P256GroupSizeBytes], rBytes)
	copy(sig[P256SignatureSizeBytes-len(sBytes):], sBytes)
	return sig, nil
}

// P256Verify verifies a 64-byte ECDSA signature (r || s) on message against
// a 65-byte uncompressed public key (0x04 || X || Y).
func P256Verify(publicKey, message, signature []byte) (bool, error) {
	if len(publicKey) != P256PublicKeySizeBytes {
		return false, fmt.Errorf("public key must be %d bytes, got %d", P256PublicKeySizeBytes, len(publicKey))
	}
	if publicKey[0] != 0x04 {
		return false, errors.New("crypto: public key must be in uncompressed format")
	}

	x := new(big.Int).SetBytes(publicKey[1:33])
	y := new(big.Int).SetBytes(publicKey[33:65])
	pub := &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}
	if !pub.Curve.IsOnCurve(x, y) {
		return false, errors.New("crypto: public key point is not on the P-256 curve")
	}

	if len(signature) != P256SignatureSizeBytes {
		return false, fmt.Errorf("signature must be %d bytes, got %d", P256SignatureSizeBytes, len(signature))
	}
	r := new(big.Int).SetBytes(signature[:P256GroupSizeBytes])
	s := new(big.Int).SetBytes(signature[P256GroupSizeBytes:])

	hash := SHA256(message)
	return ecdsa.Verify(pub, hash[:], r, s), nil
}

// P256ECDH computes the ECDH shared secret between keyPair and a peer's
// 65-byte uncompressed public key. Returns the 32-byte shared x-coordinate.
func P256ECDH(keyPair *P256KeyPair, peerPublicKey []byte) ([]byte, error) {
	if len(peerPublicKey) != P256PublicKeySizeBytes {
		return nil, fmt.Errorf("peer public key must be %d bytes, got %d", P256PublicKeySizeBytes, len(peerPublicKey))
	}
	peerPub, err := ecdh.P256().NewPublicKey(peerPublicKey)
	if err != nil {
		return nil, fmt.Errorf("invalid peer public key: %w", err)
	}
	secret, err := keyPair.ecdhPrivate.ECDH(peerPub)
	if err != nil {
		return nil, fmt.Errorf("ECDH computation failed: %w", err)
	}
	return secret, nil
}

// P256PublicKeyFromCompressed decompresses a 33-byte compressed public key
// (0x02/0x03 || X) into the 65-byte uncompressed form (0x04 || X || Y).
func P256PublicKeyFromCompressed(compressed []byte) ([]byte, error) {
	if len(compressed) != P256CompressedPublicKeySizeBytes {
		return nil, fmt.Errorf("compressed key must be %d bytes, got %d", P256CompressedPublicKeySizeBytes, len(compressed))
	}
	x, y := elliptic.UnmarshalCompressed(elliptic.P256(), compressed)
	if x == nil {
		return nil, errors.New("crypto: failed to decompress public key")
	}
	result := make([]byte, P256PublicKeySizeBytes)
	result[0] = 0x04
	xBytes, yBytes := x.Bytes(), y.Bytes()
	copy(result[1+P256GroupSizeBytes-len(xBytes):1+P256GroupSizeBytes], xBytes)
	copy(result[1+P256GroupSizeBytes+P256GroupSizeBytes-len(yBytes):], yBytes)
	return result, nil
}

// P256ValidatePublicKey validates that publicKey is a well-formed,
// on-curve, uncompressed P-256 public key.
func P256ValidatePublicKey(publicKey []byte) error {
	if len(publicKey) != P256PublicKeySizeBytes {
		return fmt.Errorf("public key must be %d bytes, got %d", P256PublicKeySizeBytes, len(publicKey))
	}
	if publicKey[0] != 0x04 {
		return errors.New("crypto: public key must be in uncompressed format")
	}
	x := new(big.Int).SetBytes(publicKey[1:33])
	y := new(big.Int).SetBytes(publicKey[33:65])
	if !elliptic.P256().IsOnCurve(x, y) {
		return errors.New("crypto: public key point is not on the P-256 curve")
	}
	return nil
}
