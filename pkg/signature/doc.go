// Package signature turns a pkg/session.Sign result into the wire-format
// "X-PowerAuth-Authorization" HTTP header and persists the session's
// updated counter afterward.
//
// Engine is the package's central type; callers construct one per
// Session and reuse it for every signed request that Session makes.
package signature
