package prover

import (
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/polybase/payy/circuit"
	"github.com/polybase/payy/field"
	"github.com/polybase/payy/poseidon"
	"github.com/polybase/payy/smirk"
)

func toField(b BigIntString, name string) (field.Element, error) {
	if b.Int == nil {
		return field.Element{}, fmt.Errorf("%s: missing", name)
	}
	e, err := field.FromBigInt(b.Int)
	if err != nil {
		return field.Element{}, fmt.Errorf("%s: %w", name, err)
	}
	return e, nil
}

func noteCommitment(value, source, randomness, ownerSecret field.Element) field.Element {
	ownerPubKey := poseidon.HashN(ownerSecret)
	return poseidon.HashN(value, source, randomness, ownerPubKey)
}

// merkleProofAssignment fills a circuit.MerkleProof's private fields from a
// caller-supplied witness. Directions are recomputed from the key with the
// same bit convention smirk.Tree uses internally.
func merkleProofAssignment(rootHash, leafValue field.Element, w MerkleWitnessRequest) (circuit.MerkleProof, error) {
	if len(w.Path) != smirk.Depth {
		return circuit.MerkleProof{}, fmt.Errorf("merkle witness: expected %d path elements, got %d", smirk.Depth, len(w.Path))
	}
	if w.Key.Int == nil {
		return circuit.MerkleProof{}, fmt.Errorf("merkle witness: missing key")
	}

	var mp circuit.MerkleProof
	mp.RootHash = rootHash.BigInt()
	mp.LeafValue = leafValue.BigInt()
	for i := 0; i < smirk.Depth; i++ {
		pathElem, err := toField(w.Path[i], "merkle witness path element")
		if err != nil {
			return circuit.MerkleProof{}, err
		}
		mp.ProofPath[i] = pathElem.BigInt()
		mp.Directions[i] = w.Key.Bit(i)
	}
	return mp, nil
}

// noteAssignment returns the circuit.Note witness (as frontend.Variable
// big.Ints), the note's owner secret, and its commitment.
func noteAssignment(n NoteRequest) (circuit.Note, field.Element, field.Element, error) {
	value, err := toField(n.Value, "note.value")
	if err != nil {
		return circuit.Note{}, field.Element{}, field.Element{}, err
	}
	source, err := toField(n.Source, "note.source")
	if err != nil {
		return circuit.Note{}, field.Element{}, field.Element{}, err
	}
	randomness, err := toField(n.Randomness, "note.randomness")
	if err != nil {
		return circuit.Note{}, field.Element{}, field.Element{}, err
	}
	ownerSecret, err := toField(n.OwnerSecret, "note.owner_secret")
	if err != nil {
		return circuit.Note{}, field.Element{}, field.Element{}, err
	}
	ownerPubKey := poseidon.HashN(ownerSecret)
	commitment := noteCommitment(value, source, randomness, ownerSecret)

	note := circuit.Note{
		Value:       value.BigInt(),
		Source:      source.BigInt(),
		Randomness:  randomness.BigInt(),
		OwnerPubKey: ownerPubKey.BigInt(),
	}
	return note, ownerSecret, commitment, nil
}

// GenerateMintProof builds and proves a MintCircuit assignment.
func (cm *CircuitManager) GenerateMintProof(req *MintProofRequest) (*ProofResponse, error) {
	value, err := toField(req.Value, "value")
	if err != nil {
		return nil, err
	}
	source, err := toField(req.Source, "source")
	if err != nil {
		return nil, err
	}
	randomness, err := toField(req.Randomness, "randomness")
	if err != nil {
		return nil, err
	}
	ownerSecret, err := toField(req.OwnerSecret, "owner_secret")
	if err != nil {
		return nil, err
	}
	commitment := noteCommitment(value, source, randomness, ownerSecret)

	assignment := &circuit.MintCircuit{
		Commitment:  commitment.BigInt(),
		Value:       value.BigInt(),
		Source:      source.BigInt(),
		Randomness:  randomness.BigInt(),
		OwnerSecret: ownerSecret.BigInt(),
	}

	proofB64, err := prove(cm.mint, assignment)
	if err != nil {
		return nil, err
	}
	return &ProofResponse{
		Proof:        proofB64,
		PublicInputs: []string{commitment.String(), value.String(), source.String()},
		Success:      true,
	}, nil
}

// GenerateBurnProof builds and proves a BurnCircuit assignment.
func (cm *CircuitManager) GenerateBurnProof(req *BurnProofRequest) (*ProofResponse, error) {
	to, err := toField(req.To, "to")
	if err != nil {
		return nil, err
	}
	root, err := toField(req.Root, "root")
	if err != nil {
		return nil, err
	}

	_, ownerSecret, commitment, err := noteAssignment(req.Note.Note)
	if err != nil {
		return nil, err
	}
	value, _ := toField(req.Note.Note.Value, "note.value")
	source, _ := toField(req.Note.Note.Source, "note.source")
	randomness, _ := toField(req.Note.Note.Randomness, "note.randomness")

	proof, err := merkleProofAssignment(root, commitment, req.Note.Witness)
	if err != nil {
		return nil, err
	}

	nullifier := poseidon.HashN(ownerSecret, commitment)
	sig := poseidon.HashN(ownerSecret, to)

	assignment := &circuit.BurnCircuit{
		To:          to.BigInt(),
		Nullifier:   nullifier.BigInt(),
		Value:       value.BigInt(),
		Source:      source.BigInt(),
		Sig:         sig.BigInt(),
		Root:        root.BigInt(),
		Randomness:  randomness.BigInt(),
		OwnerSecret: ownerSecret.BigInt(),
		Proof:       proof,
	}

	proofB64, err := prove(cm.burn, assignment)
	if err != nil {
		return nil, err
	}
	return &ProofResponse{
		Proof:        proofB64,
		PublicInputs: []string{to.String(), nullifier.String(), value.String(), source.String(), sig.String()},
		Success:      true,
	}, nil
}

// GenerateUTXOProof builds and proves a UTXOCircuit assignment for a
// two-input, four-output shielded transaction.
func (cm *CircuitManager) GenerateUTXOProof(req *UTXOProofRequest) (*ProofResponse, error) {
	if len(req.Inputs) != circuit.NumInputs {
		return nil, fmt.Errorf("expected %d inputs, got %d", circuit.NumInputs, len(req.Inputs))
	}
	if len(req.Outputs) != circuit.NumOutputs {
		return nil, fmt.Errorf("expected %d outputs, got %d", circuit.NumOutputs, len(req.Outputs))
	}

	rootRef, err := toField(req.RootRef, "root_ref")
	if err != nil {
		return nil, err
	}
	value, err := toField(req.Value, "value")
	if err != nil {
		return nil, err
	}

	var assignment circuit.UTXOCircuit
	assignment.RootRef = rootRef.BigInt()
	assignment.Value = value.BigInt()
	if req.IsMint {
		assignment.IsMint = 1
	} else {
		assignment.IsMint = 0
	}

	var ownerSecrets [circuit.NumInputs]field.Element
	var inputCommitments [circuit.NumInputs]field.Element
	for i, in := range req.Inputs {
		note, ownerSecret, commitment, err := noteAssignment(in.Note)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		proof, err := merkleProofAssignment(rootRef, commitment, in.Witness)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		assignment.Inputs[i] = note
		assignment.InputSecret[i] = ownerSecret.BigInt()
		assignment.InputProofs[i] = proof
		ownerSecrets[i] = ownerSecret
		inputCommitments[i] = commitment
	}

	var outputCommitments [circuit.NumOutputs]field.Element
	for j, out := range req.Outputs {
		note, _, commitment, err := noteAssignment(out)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", j, err)
		}
		assignment.Outputs[j] = note
		outputCommitments[j] = commitment
	}

	// mb is derived here, never taken from the caller (§4.2/D): a
	// transfer publishes 0, a mint-consuming slot publishes the
	// commitment of the output claiming the minted value (Outputs[0]),
	// a burn-producing slot publishes the nullifier of the note being
	// withdrawn (Inputs[0]) — exactly what UTXOCircuit itself asserts,
	// so an inconsistent request simply fails to produce a valid proof.
	var mb field.Element
	switch {
	case value.IsZero():
		mb = field.Zero()
	case req.IsMint:
		mb = outputCommitments[0]
	default:
		mb = poseidon.HashN(ownerSecrets[0], inputCommitments[0])
	}
	assignment.MB = mb.BigInt()

	proofB64, err := prove(cm.utxo, &assignment)
	if err != nil {
		return nil, err
	}
	return &ProofResponse{
		Proof:        proofB64,
		PublicInputs: []string{rootRef.String(), mb.String(), value.String()},
		Success:      true,
	}, nil
}

var _ frontend.Variable // keeps the frontend import meaningful if no assignment above references it directly
