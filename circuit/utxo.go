package circuit

import (
	"github.com/consensys/gnark/frontend"
)

// NumInputs and NumOutputs are the UTXO circuit's fixed transaction shape:
// two notes consumed, four notes created.
const (
	NumInputs  = 2
	NumOutputs = 4
)

// Note is the private witness of a single UTXO commitment's preimage:
// commitment = Poseidon(Value, Source, Randomness, OwnerPubKey).
type Note struct {
	Value      frontend.Variable
	Source     frontend.Variable
	Randomness frontend.Variable
	OwnerPubKey frontend.Variable
}

func (n Note) commitment(api frontend.API) (frontend.Variable, error) {
	return hashN(api, n.Value, n.Source, n.Randomness, n.OwnerPubKey)
}

// UTXOCircuit proves a single shielded transaction: two owned input notes
// are spent (their commitments removed from the tree at RootRef) and four
// new notes are created, with value conserved up to an optional external
// mint inflow or burn outflow of Value identified by MB. A transfer
// witnesses Value = 0 and MB = 0.
type UTXOCircuit struct {
	// Public inputs, in the exact order the settlement contract expects
	// for one of the six published UTXO slots: (root_ref, mb, value).
	RootRef frontend.Variable `gnark:",public"`
	MB      frontend.Variable `gnark:",public"`
	Value   frontend.Variable `gnark:",public"`

	// Private witnesses.
	Inputs        [NumInputs]Note
	InputSecret   [NumInputs]frontend.Variable // preimage of each input's OwnerPubKey
	InputProofs   [NumInputs]MerkleProof       // membership of each input commitment under RootRef
	Outputs       [NumOutputs]Note
	IsMint        frontend.Variable // 1 if Value is an external mint inflow, 0 if burn outflow (ignored when Value == 0)
}

// Define enforces ownership of each spent input, its inclusion under
// RootRef, and that the transaction balances: sum(outputs) - sum(inputs)
// equals +Value when minting, -Value when burning, and 0 for a transfer
// (where Value is witnessed as zero).
func (c *UTXOCircuit) Define(api frontend.API) error {
	api.AssertIsBoolean(c.IsMint)

	sumIn := frontend.Variable(0)
	inputCommitments := make([]frontend.Variable, NumInputs)
	for i := 0; i < NumInputs; i++ {
		derivedPubKey, err := hashN(api, c.InputSecret[i])
		if err != nil {
			return err
		}
		api.AssertIsEqual(derivedPubKey, c.Inputs[i].OwnerPubKey)

		commitment, err := c.Inputs[i].commitment(api)
		if err != nil {
			return err
		}
		inputCommitments[i] = commitment
		c.InputProofs[i].LeafValue = commitment
		c.InputProofs[i].RootHash = c.RootRef
		if err := c.InputProofs[i].Define(api); err != nil {
			return err
		}
		sumIn = api.Add(sumIn, c.Inputs[i].Value)
	}

	sumOut := frontend.Variable(0)
	outputCommitments := make([]frontend.Variable, NumOutputs)
	for j := 0; j < NumOutputs; j++ {
		commitment, err := c.Outputs[j].commitment(api)
		if err != nil {
			return err
		}
		outputCommitments[j] = commitment
		sumOut = api.Add(sumOut, c.Outputs[j].Value)
	}

	external := api.Select(c.IsMint, c.Value, api.Neg(c.Value))
	api.AssertIsEqual(api.Sub(sumOut, sumIn), external)

	// Bind MB (§4.2/D): a transfer (Value == 0) publishes mb = 0; a
	// mint-consuming UTXO publishes mb = C_mint, the commitment of the
	// output claiming the minted value (Outputs[0]); a burn-producing
	// UTXO publishes mb = nullifier, derived the same way burn.go derives
	// its own Nullifier, from the input being withdrawn (Inputs[0]).
	nullifier, err := hashN(api, c.InputSecret[0], inputCommitments[0])
	if err != nil {
		return err
	}
	mintOrBurn := api.Select(c.IsMint, outputCommitments[0], nullifier)
	isTransfer := api.IsZero(c.Value)
	expectedMB := api.Select(isTransfer, frontend.Variable(0), mintOrBurn)
	api.AssertIsEqual(c.MB, expectedMB)

	return nil
}
