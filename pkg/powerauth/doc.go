// Package powerauth is the top-level facade tying together activation,
// signing, vault operations, and persistence into the single entry point
// an application integrates against. It mirrors the shape of the other
// per-concern packages (pkg/activation, pkg/signature, pkg/vault) without
// adding protocol logic of its own.
package powerauth
