package activationcode

import (
	"encoding/base64"
	"regexp"
	"strings"
)

// alphabet is the RFC4648 base32 alphabet used by activation codes
// (A-Z2-7, no padding, no lowercase, no 0/1/8/9 to avoid confusion with
// O/I/B/g when read aloud or handwritten).
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// grammar matches four dash-separated groups of five base32 characters.
var grammar = regexp.MustCompile(`^[A-Z2-7]{5}-[A-Z2-7]{5}-[A-Z2-7]{5}-[A-Z2-7]{5}$`)

// ActivationCode is the decoded form of a user-entered or scanned
// activation code.
type ActivationCode struct {
	// ActivationIDShort is the first two groups, dash included, e.g.
	// "AAAAA-AAAAA". It is used verbatim as the PBKDF2 salt that
	// normalizes the activation OTP.
	ActivationIDShort string

	// ActivationOTP is the entropy carried by the third group plus the
	// first four characters of the fourth group (nine characters, no
	// dash). The fifth character of the fourth group is the checksum and
	// is not part of the OTP.
	ActivationOTP string

	// Signature is an optional detached signature, present when the code
	// was scanned from a QR code of the form "CODE#base64signature".
	// Nil when the code carries no signature.
	Signature []byte
}

// Parse decodes and validates a user-entered or scanned activation code.
// An optional "#<base64>" suffix carries a detached signature over the
// code, used by the QR-code flow; a plain typed code has no suffix.
func Parse(raw string) (ActivationCode, error) {
	code := raw
	var signature []byte

	if idx := strings.IndexByte(raw, '#'); idx >= 0 {
		code = raw[:idx]
		sigPart := raw[idx+1:]
		decoded, err := base64.StdEncoding.DecodeString(sigPart)
		if err != nil {
			return ActivationCode{}, ErrInvalidSignature
		}
		signature = decoded
	}

	if !grammar.MatchString(code) {
		return ActivationCode{}, ErrInvalidActivationCode
	}

	groups := strings.Split(code, "-")
	prefix := groups[0] + groups[1] + groups[2] + groups[3][:4]
	wantChecksum := groups[3][4]

	gotChecksum, err := ComputeChecksumChar(prefix)
	if err != nil {
		return ActivationCode{}, ErrInvalidActivationCode
	}
	if gotChecksum != wantChecksum {
		return ActivationCode{}, ErrInvalidActivationCode
	}

	return ActivationCode{
		ActivationIDShort: groups[0] + "-" + groups[1],
		ActivationOTP:     groups[2] + groups[3][:4],
		Signature:         signature,
	}, nil
}

// checksumSeed is a non-zero starting accumulator, the same reason CRC
// checksums seed with 0xFFFF rather than 0: a plain sum of values is blind
// to an all-zero prefix, since every weight multiplies zero. Seeding with
// a non-zero constant means the all-"A" prefix (every value 0) still
// produces a non-"A" checksum character.
const checksumSeed = 4

// ComputeChecksumChar computes the checksum character for a 19-character
// base32 prefix (the activation code with its checksum character removed
// and dashes stripped). It is exported so callers can verify invariant 4 of
// §8 directly: the last character of a valid code is always recomputable
// from the preceding nineteen.
//
// The checksum is a non-zero-seeded weighted sum of each character's base32
// value (1-indexed position used as weight), reduced modulo 32 and mapped
// back through the alphabet — a single-pass, Luhn-shaped check that catches
// any adjacent transposition, and any single substituted character at an
// odd position; at an even position some substitutions leave the sum
// unchanged modulo 32.
func ComputeChecksumChar(prefix string) (byte, error) {
	if len(prefix) != 19 {
		return 0, ErrInvalidActivationCode
	}

	sum := checksumSeed
	for i := 0; i < len(prefix); i++ {
		v := strings.IndexByte(alphabet, prefix[i])
		if v < 0 {
			return 0, ErrInvalidActivationCode
		}
		sum += v * (i + 1)
	}
	return alphabet[sum%32], nil
}

// Format re-joins an ActivationIDShort and a nine-character ActivationOTP
// (as produced by Parse) back into the dashed four-group presentation,
// recomputing the checksum character. It is the inverse of Parse minus any
// detached signature.
func Format(activationIDShort, activationOTP string) (string, error) {
	idShort := strings.ReplaceAll(activationIDShort, "-", "")
	if len(idShort) != 10 || len(activationOTP) != 9 {
		return "", ErrInvalidActivationCode
	}
	prefix := idShort + activationOTP
	checksum, err := ComputeChecksumChar(prefix)
	if err != nil {
		return "", err
	}
	full := prefix + string(checksum)
	return full[0:5] + "-" + full[5:10] + "-" + full[10:15] + "-" + full[15:20], nil
}
