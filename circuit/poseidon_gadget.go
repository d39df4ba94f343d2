// Package circuit implements the UTXO, Mint, Burn, and Aggregation gnark
// circuits against the BN254 curve, matching the public-input layouts the
// settlement contract consumes.
package circuit

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"
)

// newSponge builds a fresh Poseidon2 Merkle-Damgård sponge over api. Every
// hashing step in these circuits goes through this constructor so that a
// single set of round parameters is used throughout, matching the native
// poseidon package's use of gnark-crypto's default Poseidon2 instance.
func newSponge(api frontend.API) (hash.FieldHasher, error) {
	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return nil, err
	}
	return hash.NewMerkleDamgardHasher(api, p, 0), nil
}

// hash2 computes Poseidon2(left, right) in-circuit — the counterpart of
// poseidon.Hash2, used by the Merkle path recomputation in
// update_gadget.go (rootFromLeaf).
func hash2(api frontend.API, left, right frontend.Variable) (frontend.Variable, error) {
	h, err := newSponge(api)
	if err != nil {
		return nil, err
	}
	h.Write(left, right)
	out := h.Sum()
	h.Reset()
	return out, nil
}

// hashN computes a Poseidon2 Merkle-Damgård hash over an arbitrary number
// of elements in-circuit, mirroring poseidon.HashN.
func hashN(api frontend.API, elems ...frontend.Variable) (frontend.Variable, error) {
	h, err := newSponge(api)
	if err != nil {
		return nil, err
	}
	h.Write(elems...)
	out := h.Sum()
	h.Reset()
	return out, nil
}
