package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
)

// AES-128-CBC constants. The protocol fixes the key size at 128 bits; every
// message that needs confidentiality carries its own IV or uses a
// caller-supplied zero IV, so there is no configurable mode here.
const (
	// AESCBCKeySize is the AES-128 key size in bytes.
	AESCBCKeySize = 16

	// AESCBCBlockSize is the AES block size in bytes, and therefore also
	// the required IV size.
	AESCBCBlockSize = 16
)

// ZeroIV is the all-zero initialization vector used wherever the protocol
// relies on the plaintext itself (or an externally supplied nonce) for
// uniqueness rather than the IV.
var ZeroIV = make([]byte, AESCBCBlockSize)

var (
	ErrAESCBCInvalidKeySize   = errors.New("aescbc: invalid key size, must be 16 bytes")
	ErrAESCBCInvalidIVSize    = errors.New("aescbc: invalid IV size, must be 16 bytes")
	ErrAESCBCInvalidPadding   = errors.New("aescbc: invalid PKCS#7 padding")
	ErrAESCBCEmptyCiphertext  = errors.New("aescbc: ciphertext is empty or not block-aligned")
)

// AESCBCEncrypt encrypts plaintext under key and iv using AES-128-CBC with
// PKCS#7 padding. key and iv must each be AESCBCBlockSize bytes.
func AESCBCEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	if len(key) != AESCBCKeySize {
		return nil, ErrAESCBCInvalidKeySize
	}
	if len(iv) != AESCBCBlockSize {
		return nil, ErrAESCBCInvalidIVSize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad(plaintext, AESCBCBlockSize)
	ciphertext := make([]byte, len(padded))
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// AESCBCDecrypt decrypts ciphertext under key and iv, produced by
// AESCBCEncrypt, and removes the PKCS#7 padding. Returns
// ErrAESCBCInvalidPadding if the padding is malformed, which the caller
// should treat identically to a MAC failure — it indicates either the
// wrong key or tampered ciphertext.
func AESCBCDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	if len(key) != AESCBCKeySize {
		return nil, ErrAESCBCInvalidKeySize
	}
	if len(iv) != AESCBCBlockSize {
		return nil, ErrAESCBCInvalidIVSize
	}
	if len(ciphertext) == 0 || len(ciphertext)%AESCBCBlockSize != 0 {
		return nil, ErrAESCBCEmptyCiphertext
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	padded := make([]byte, len(ciphertext))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(padded, ciphertext)

	return pkcs7Unpad(padded, AESCBCBlockSize)
}

// pkcs7Pad appends PKCS#7 padding so the result is a multiple of blockSize.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(append([]byte{}, data...), padding...)
}

// pkcs7Unpad validates and strips PKCS#7 padding.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	n := len(data)
	if n == 0 || n%blockSize != 0 {
		return nil, ErrAESCBCInvalidPadding
	}
	padLen := int(data[n-1])
	if padLen == 0 || padLen > blockSize || padLen > n {
		return nil, ErrAESCBCInvalidPadding
	}
	for _, b := range data[n-padLen:] {
		if int(b) != padLen {
			return nil, ErrAESCBCInvalidPadding
		}
	}
	return data[:n-padLen], nil
}
