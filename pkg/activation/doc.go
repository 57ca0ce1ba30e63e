// Package activation drives the three-step cryptographic handshake that
// enrolls a device with a server: step 1 sends the device's ephemeral
// public key encrypted under the activation OTP, step 2 verifies and
// decrypts the server's response and derives the long-lived signature
// factor keys, and step 3 commits them into pkg/session wrapped under the
// caller's chosen unlock keys.
//
// Client drives these steps against a pkg/session.Session and a
// pkg/transport.RestClient; it performs no networking itself.
package activation
