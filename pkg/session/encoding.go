package session

import "encoding/base64"

// b64 base64-(standard, padded)-encodes data, matching the protocol's
// convention for every field embedded in the signature base string and
// JSON request bodies.
func b64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
