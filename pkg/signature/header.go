package signature

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/powerauth-go/mobile-sdk/pkg/session"
)

// protocolVersion is the value reported in every authorization header's
// pa_version field.
const protocolVersion = "2.1"

// Authentication names which factors a caller wants to authenticate a
// request with, and the unlock keys needed to open them. Password and
// Biometry are left nil when that factor is not part of this request; a
// nil Password with Knowledge requested fails the same way
// pkg/session.Sign would, while an unlock key for a factor that is not
// requested is ignored.
type Authentication struct {
	UsePossession bool
	UseKnowledge  bool
	UseBiometry   bool

	// PrepareVaultUnlock requests a vault-unlock-flavored signature; see
	// session.Factor.HasVaultUnlock.
	PrepareVaultUnlock bool

	UnlockKeys session.UnlockKeys
}

func (a Authentication) factorMask() session.Factor {
	var mask session.Factor
	if a.UsePossession {
		mask |= session.Possession
	}
	if a.UseKnowledge {
		mask |= session.Knowledge
	}
	if a.UseBiometry {
		mask |= session.Biometry
	}
	if a.PrepareVaultUnlock {
		mask |= session.PrepareVaultUnlock
	}
	return mask
}

// formatHeader renders a session.SignResult as the
// "X-PowerAuth-Authorization" header value, e.g.:
//
//	PowerAuth pa_activation_id="…", pa_application_key="…",
//	pa_nonce="…", pa_signature_type="…", pa_signature="…", pa_version="2.1"
func formatHeader(result *session.SignResult) string {
	fields := []string{
		kv("pa_activation_id", result.ActivationID),
		kv("pa_application_key", base64.StdEncoding.EncodeToString(result.ApplicationKey)),
		kv("pa_nonce", base64.StdEncoding.EncodeToString(result.Nonce)),
		kv("pa_signature_type", result.SignatureType),
		kv("pa_signature", result.Signature),
		kv("pa_version", protocolVersion),
	}
	return "PowerAuth " + strings.Join(fields, ", ")
}

func kv(key, value string) string {
	return fmt.Sprintf("%s=\"%s\"", key, value)
}
