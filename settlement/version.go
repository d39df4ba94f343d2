package settlement

// Version gates the two documented behavior deltas observed across the
// protocol's history (§9 Design Notes): everything else is identical
// regardless of version.
type Version uint8

const (
	V1 Version = 1
	V2 Version = 2
	V3 Version = 3
	V4 Version = 4
)

// acceptsZeroRootRef reports whether a zero root_ref slot (used to encode
// an empty/padding UTXO in an under-full block) is accepted. Only V4+.
func (v Version) acceptsZeroRootRef() bool { return v >= V4 }

// shortCircuitsZeroAddressBurn reports whether a burn whose recipient is
// the zero address skips the token transfer rather than attempting (and
// failing) a transfer to address(0). V3+.
func (v Version) shortCircuitsZeroAddressBurn() bool { return v >= V3 }
