// Package session holds the PowerAuth client's central state machine: the
// application setup, the tri-state activation lifecycle (Empty, Pending,
// Active, Broken), the four long-lived signature factor keys once
// activated, and the ratcheted request counter. It implements every
// operation described as "Session state" and "Signature engine" in the
// protocol core, including (de)serialization of the persisted blob.
//
// A Session is a single mutable object guarded by one exclusive mutex: all
// cryptographic work it performs is CPU-only, so there are no suspension
// points inside the lock.
package session
