// Package poseidon wraps gnark-crypto's Poseidon2 Merkle-Damgård sponge for
// native (off-circuit) hashing. It is the counterpart of circuit's in-circuit
// Poseidon2 gadget — the two must always agree on a given input, since Smirk
// roots are computed natively and then re-derived inside a SNARK.
package poseidon

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"

	"github.com/polybase/payy/field"
)

// Hash2 computes Poseidon2(left, right), the node-hash used throughout
// Smirk: internal node = Hash2(leftChild, rightChild).
func Hash2(left, right field.Element) field.Element {
	return HashN(left, right)
}

// HashN computes a Poseidon2 Merkle-Damgård hash over an arbitrary number of
// field elements, used both for Smirk's 2-ary node hash and for UTXO/mint
// commitment hashing (which mixes more than two elements).
func HashN(elems ...field.Element) field.Element {
	h := poseidon2.NewMerkleDamgardHasher()
	for _, e := range elems {
		b := e.Bytes()
		h.Write(b[:])
	}
	sum := h.Sum(nil)
	var out fr.Element
	out.SetBytes(sum)
	res, err := field.FromBytesBE(out.Bytes())
	if err != nil {
		// SetBytes always reduces modulo the scalar field, so this can
		// never fire; kept as a defensive invariant rather than a panic.
		return field.Zero()
	}
	return res
}
