// Package crypto provides the fixed set of cryptographic primitives the
// PowerAuth client core is built from: AES-128-CBC, HMAC-SHA256, ECDH/ECDSA
// on NIST P-256, PBKDF2-HMAC-SHA256, SHA-256, the one-block AES key-tree
// used to derive signature factor keys, and the canonical
// key=value&key=value encoding used for GET-request signing.
//
// None of these choices are configurable: the wire protocol this core
// speaks is fixed by the server it talks to, so there is exactly one
// implementation of each primitive rather than a pluggable suite.
package crypto
