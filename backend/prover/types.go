package prover

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// BigIntString is a wrapper for big.Int that unmarshals from JSON strings,
// since field elements routinely exceed float64/JSON-number precision.
type BigIntString struct {
	*big.Int
}

// UnmarshalJSON implements json.Unmarshaler to handle string JSON values.
func (b *BigIntString) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)

	if str == "" || str == "null" {
		b.Int = big.NewInt(0)
		return nil
	}

	b.Int = new(big.Int)
	if _, ok := b.Int.SetString(str, 10); !ok {
		return fmt.Errorf("cannot parse %q as big.Int", str)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (b BigIntString) MarshalJSON() ([]byte, error) {
	if b.Int == nil {
		return []byte("0"), nil
	}
	return []byte(`"` + b.Int.String() + `"`), nil
}

// MintProofRequest asks the prover to produce a mint-circuit proof for a
// single note (§4.2's 3-element public vector).
type MintProofRequest struct {
	Value       BigIntString `json:"value"`
	Source      BigIntString `json:"source"`
	Randomness  BigIntString `json:"randomness"`
	OwnerSecret BigIntString `json:"owner_secret"`
}

// NoteRequest is one shielded note's full witness: its value/source and
// the randomness and owner secret that derive its commitment.
type NoteRequest struct {
	Value       BigIntString `json:"value"`
	Source      BigIntString `json:"source"`
	Randomness  BigIntString `json:"randomness"`
	OwnerSecret BigIntString `json:"owner_secret"`
}

// MerkleWitnessRequest is a smirk.Witness carried over the wire: the
// caller (the aggregator, which owns the live tree) supplies it, since
// the prover itself holds no tree state.
type MerkleWitnessRequest struct {
	Key  BigIntString   `json:"key"`
	Path []BigIntString `json:"path"` // length smirk.Depth
}

// SpentNoteRequest pairs a note with the membership witness proving its
// commitment is present under the root the spending proof references.
type SpentNoteRequest struct {
	Note    NoteRequest          `json:"note"`
	Witness MerkleWitnessRequest `json:"witness"`
}

// BurnProofRequest asks the prover to produce a burn-circuit proof
// (§4.2's 5-element public vector).
type BurnProofRequest struct {
	To   BigIntString     `json:"to"`
	Note SpentNoteRequest `json:"note"`
	Root BigIntString     `json:"root"` // the tree root the note's proof was taken against
}

// UTXOProofRequest asks the prover to produce a UTXO-transfer-circuit
// proof (§4.2's 3-element public vector: root_ref, mb, value). mb is
// deliberately not a request field: the prover derives it itself from
// Inputs/Outputs/Value/IsMint (see GenerateUTXOProof), since trusting a
// caller-supplied mb would let an untrusted submitter key the nullifier
// or mint ledger however it likes.
type UTXOProofRequest struct {
	RootRef BigIntString       `json:"root_ref"`
	Value   BigIntString       `json:"value"`
	IsMint  bool               `json:"is_mint"`
	Inputs  []SpentNoteRequest `json:"inputs"`  // length NumInputs
	Outputs []NoteRequest      `json:"outputs"` // length NumOutputs
}

// TreeUpdateRequest witnesses a single leaf mutation (one smirk.Witness
// co-path, shared by both the pre- and post-mutation leaf values, plus
// those two values) — the wire form of circuit.TreeUpdate.
type TreeUpdateRequest struct {
	Key     BigIntString   `json:"key"`
	Path    []BigIntString `json:"path"` // length smirk.Depth, captured before the mutation
	OldLeaf BigIntString   `json:"old_leaf"`
	NewLeaf BigIntString   `json:"new_leaf"`
}

// TxTransitionRequest is one aggregated slot's effect on the tree: two
// input removals, four output insertions, and (for a burn slot) a
// nullifier insertion — the wire form of circuit.TxTransition. IsMint
// flags a mint-consuming slot, mirroring IsBurn; a slot is a transfer
// exactly when both are false.
type TxTransitionRequest struct {
	RemoveInput  []TreeUpdateRequest `json:"remove_input"`  // length NumInputs
	InsertOutput []TreeUpdateRequest `json:"insert_output"` // length NumOutputs
	IsBurn       bool                `json:"is_burn"`
	IsMint       bool                `json:"is_mint"`
	NullifierIns TreeUpdateRequest   `json:"nullifier_ins"`
}

// AggregateProofRequest asks the prover to produce the aggregation-circuit
// proof over a full batch of NumAggregatedUTXOs slots (§4.2, §4.4). The
// 12-element accumulator instance vector is opaque pass-through data from
// the out-of-scope external KZG-accumulation step; this request only
// carries it through to the public witness.
type AggregateProofRequest struct {
	OldRoot       BigIntString           `json:"old_root"`
	NewRoot       BigIntString           `json:"new_root"`
	UtxoHashes    []BigIntString         `json:"utxo_hashes"` // length 3*NumAggregatedUTXOs
	AggrInstances []BigIntString         `json:"aggr_instances"` // length NumAggrInstances
	Transactions  []TxTransitionRequest  `json:"transactions"`   // length NumAggregatedUTXOs
}

// ProofResponse carries a generated proof and its public-input vector.
type ProofResponse struct {
	Proof        string   `json:"proof"`         // base64-encoded groth16 proof
	PublicInputs []string `json:"public_inputs"` // decimal field elements, in public-vector order
	Success      bool     `json:"success"`
	Error        string   `json:"error,omitempty"`
}
