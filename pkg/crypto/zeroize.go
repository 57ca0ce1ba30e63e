package crypto

// Zeroize overwrites every byte of b with zero in place. It is the building
// block every transient key-holding struct in this module uses to scrub
// unlock keys, factor keys and vault keys before they become garbage,
// since Go offers no language-level guarantee that a byte slice's backing
// array is wiped on collection.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
