package prover

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polybase/payy/field"
	"github.com/polybase/payy/poseidon"
	"github.com/polybase/payy/smirk"
)

func bis(n int64) BigIntString {
	return BigIntString{Int: big.NewInt(n)}
}

func TestToFieldRejectsMissing(t *testing.T) {
	_, err := toField(BigIntString{}, "value")
	assert.Error(t, err)
}

func TestToFieldRejectsOutOfRange(t *testing.T) {
	_, err := toField(BigIntString{Int: new(big.Int).Neg(big.NewInt(1))}, "value")
	assert.Error(t, err)
}

func TestToFieldAccepts(t *testing.T) {
	e, err := toField(bis(42), "value")
	require.NoError(t, err)
	assert.Equal(t, "42", e.String())
}

func TestNoteCommitmentMatchesPoseidonDerivation(t *testing.T) {
	value := field.FromUint64(100)
	source := field.FromUint64(1)
	randomness := field.FromUint64(55)
	ownerSecret := field.FromUint64(7)

	got := noteCommitment(value, source, randomness, ownerSecret)
	want := poseidon.HashN(value, source, randomness, poseidon.HashN(ownerSecret))
	assert.True(t, got.Equal(want))
}

func TestNoteAssignmentDerivesCommitmentAndSecret(t *testing.T) {
	req := NoteRequest{Value: bis(10), Source: bis(1), Randomness: bis(99), OwnerSecret: bis(7)}
	note, ownerSecret, commitment, err := noteAssignment(req)
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(10), note.Value)
	assert.Equal(t, big.NewInt(1), note.Source)
	assert.Equal(t, big.NewInt(99), note.Randomness)
	assert.True(t, ownerSecret.Equal(field.FromUint64(7)))

	want := noteCommitment(field.FromUint64(10), field.FromUint64(1), field.FromUint64(99), field.FromUint64(7))
	assert.True(t, commitment.Equal(want))
}

func TestNoteAssignmentRejectsBadField(t *testing.T) {
	req := NoteRequest{Value: BigIntString{}, Source: bis(1), Randomness: bis(1), OwnerSecret: bis(1)}
	_, _, _, err := noteAssignment(req)
	assert.Error(t, err)
}

func TestMerkleProofAssignmentMatchesTreeWitness(t *testing.T) {
	tree := smirk.New()
	commitment := poseidon.HashN(field.FromUint64(1), field.FromUint64(2))
	var err error
	tree, err = tree.Insert(commitment.BigInt(), commitment)
	require.NoError(t, err)

	w := tree.Prove(commitment.BigInt())
	req := MerkleWitnessRequest{Key: BigIntString{Int: w.Key}, Path: make([]BigIntString, smirk.Depth)}
	for i, p := range w.Path {
		req.Path[i] = BigIntString{Int: p.BigInt()}
	}

	mp, err := merkleProofAssignment(tree.Root(), commitment, req)
	require.NoError(t, err)
	assert.Equal(t, tree.Root().BigInt(), mp.RootHash)
	assert.Equal(t, commitment.BigInt(), mp.LeafValue)
	assert.Equal(t, w.Key.Bit(0), mp.Directions[0])
}

func TestMerkleProofAssignmentRejectsWrongPathLength(t *testing.T) {
	req := MerkleWitnessRequest{Key: bis(1), Path: []BigIntString{bis(1)}}
	_, err := merkleProofAssignment(field.Zero(), field.Zero(), req)
	assert.Error(t, err)
}

func TestMerkleProofAssignmentRejectsMissingKey(t *testing.T) {
	req := MerkleWitnessRequest{Path: make([]BigIntString, smirk.Depth)}
	for i := range req.Path {
		req.Path[i] = bis(0)
	}
	_, err := merkleProofAssignment(field.Zero(), field.Zero(), req)
	assert.Error(t, err)
}
