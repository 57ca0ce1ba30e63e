// Package persistence declares the opaque key-to-bytes store the facade
// flushes every successful session mutation through, plus two reference
// implementations (in-memory and file-backed) for tests and the demo CLI.
// The default production implementation — writing into the platform
// keychain — is an external collaborator outside this core's scope; this
// package only needs to agree on the interface.
package persistence
