package circuit

import "github.com/consensys/gnark/frontend"

// MintCircuit proves knowledge of a valid preimage of Commitment with the
// declared Value and Source, matching §4.2's 3-element public vector
// [commitment, value, source].
type MintCircuit struct {
	Commitment frontend.Variable `gnark:",public"`
	Value      frontend.Variable `gnark:",public"`
	Source     frontend.Variable `gnark:",public"`

	Randomness  frontend.Variable
	OwnerSecret frontend.Variable
}

// Define asserts Commitment == Poseidon(Value, Source, Randomness,
// Poseidon(OwnerSecret)).
func (c *MintCircuit) Define(api frontend.API) error {
	ownerPubKey, err := hashN(api, c.OwnerSecret)
	if err != nil {
		return err
	}
	derived, err := hashN(api, c.Value, c.Source, c.Randomness, ownerPubKey)
	if err != nil {
		return err
	}
	api.AssertIsEqual(derived, c.Commitment)
	return nil
}
