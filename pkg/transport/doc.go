// Package transport declares the external collaborator interfaces this
// core is built against but never implements: the REST client that
// actually issues the four PowerAuth endpoints over HTTP, with its own
// TLS, retries, and JSON handling. The core never imports net/http — it
// only depends on this package's RestClient interface, which is the seam
// a caller's own transport stack plugs into.
package transport
