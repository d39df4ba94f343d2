package circuit

import "github.com/consensys/gnark/frontend"

// BurnCircuit proves knowledge of a shielded note being withdrawn and a
// signature binding the withdrawal to a specific recipient, matching
// §4.2's 5-element public vector [to, nullifier, value, source, sig].
// The note's Merkle root is witnessed privately: this circuit attests
// that some valid opening exists, not that it is recent — recency of the
// UTXOs an aggregated block references is re-checked independently by
// the settlement protocol's root-ring lookup.
type BurnCircuit struct {
	To        frontend.Variable `gnark:",public"`
	Nullifier frontend.Variable `gnark:",public"`
	Value     frontend.Variable `gnark:",public"`
	Source    frontend.Variable `gnark:",public"`
	Sig       frontend.Variable `gnark:",public"`

	Root        frontend.Variable
	Randomness  frontend.Variable
	OwnerSecret frontend.Variable
	Proof       MerkleProof
}

// Define asserts: the note (Value, Source, Randomness, ownerPubKey)
// exists in the tree at the private Root; Nullifier is derived from the
// owner's secret and the note's commitment (unlinkable to the commitment
// but unique per note, per the glossary); Sig binds the owner's secret
// to the chosen recipient To.
func (c *BurnCircuit) Define(api frontend.API) error {
	ownerPubKey, err := hashN(api, c.OwnerSecret)
	if err != nil {
		return err
	}
	commitment, err := hashN(api, c.Value, c.Source, c.Randomness, ownerPubKey)
	if err != nil {
		return err
	}

	c.Proof.LeafValue = commitment
	c.Proof.RootHash = c.Root
	if err := c.Proof.Define(api); err != nil {
		return err
	}

	nullifier, err := hashN(api, c.OwnerSecret, commitment)
	if err != nil {
		return err
	}
	api.AssertIsEqual(nullifier, c.Nullifier)

	sig, err := hashN(api, c.OwnerSecret, c.To)
	if err != nil {
		return err
	}
	api.AssertIsEqual(sig, c.Sig)

	return nil
}
