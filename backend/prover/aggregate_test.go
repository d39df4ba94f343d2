package prover

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polybase/payy/circuit"
	"github.com/polybase/payy/smirk"
)

func zeroPath() []BigIntString {
	path := make([]BigIntString, smirk.Depth)
	for i := range path {
		path[i] = bis(0)
	}
	return path
}

func noOpUpdateRequest() TreeUpdateRequest {
	return TreeUpdateRequest{Key: bis(0), Path: zeroPath(), OldLeaf: bis(0), NewLeaf: bis(0)}
}

func TestTreeUpdateAssignmentRejectsWrongPathLength(t *testing.T) {
	_, err := treeUpdateAssignment(TreeUpdateRequest{Key: bis(1), Path: []BigIntString{bis(1)}, OldLeaf: bis(0), NewLeaf: bis(0)})
	assert.Error(t, err)
}

func TestTreeUpdateAssignmentRejectsMissingKey(t *testing.T) {
	_, err := treeUpdateAssignment(TreeUpdateRequest{Path: zeroPath(), OldLeaf: bis(0), NewLeaf: bis(0)})
	assert.Error(t, err)
}

func TestTreeUpdateAssignmentBuildsLeaves(t *testing.T) {
	req := noOpUpdateRequest()
	req.OldLeaf = bis(5)
	req.NewLeaf = bis(6)
	tu, err := treeUpdateAssignment(req)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), tu.OldLeaf)
	assert.Equal(t, big.NewInt(6), tu.NewLeaf)
}

func buildNoOpTransaction() TxTransitionRequest {
	tx := TxTransitionRequest{
		RemoveInput:  make([]TreeUpdateRequest, circuit.NumInputs),
		InsertOutput: make([]TreeUpdateRequest, circuit.NumOutputs),
		NullifierIns: noOpUpdateRequest(),
	}
	for i := range tx.RemoveInput {
		tx.RemoveInput[i] = noOpUpdateRequest()
	}
	for i := range tx.InsertOutput {
		tx.InsertOutput[i] = noOpUpdateRequest()
	}
	return tx
}

func TestGenerateAggregateProofRejectsWrongUtxoHashesLength(t *testing.T) {
	cm := &CircuitManager{}
	req := &AggregateProofRequest{
		OldRoot:       bis(0),
		NewRoot:       bis(0),
		UtxoHashes:    []BigIntString{bis(0)},
		AggrInstances: make([]BigIntString, circuit.NumAggrInstances),
		Transactions:  make([]TxTransitionRequest, circuit.NumAggregatedUTXOs),
	}
	_, err := cm.GenerateAggregateProof(req)
	assert.Error(t, err)
}

func TestGenerateAggregateProofRejectsWrongTransactionCount(t *testing.T) {
	cm := &CircuitManager{}
	utxoHashes := make([]BigIntString, 3*circuit.NumAggregatedUTXOs)
	for i := range utxoHashes {
		utxoHashes[i] = bis(0)
	}
	aggrInstances := make([]BigIntString, circuit.NumAggrInstances)
	for i := range aggrInstances {
		aggrInstances[i] = bis(0)
	}
	req := &AggregateProofRequest{
		OldRoot:       bis(0),
		NewRoot:       bis(0),
		UtxoHashes:    utxoHashes,
		AggrInstances: aggrInstances,
		Transactions:  []TxTransitionRequest{buildNoOpTransaction()},
	}
	_, err := cm.GenerateAggregateProof(req)
	assert.Error(t, err)
}

func TestGenerateAggregateProofRejectsMalformedTransaction(t *testing.T) {
	cm := &CircuitManager{}
	utxoHashes := make([]BigIntString, 3*circuit.NumAggregatedUTXOs)
	for i := range utxoHashes {
		utxoHashes[i] = bis(0)
	}
	aggrInstances := make([]BigIntString, circuit.NumAggrInstances)
	for i := range aggrInstances {
		aggrInstances[i] = bis(0)
	}
	transactions := make([]TxTransitionRequest, circuit.NumAggregatedUTXOs)
	for i := range transactions {
		transactions[i] = buildNoOpTransaction()
	}
	transactions[0].RemoveInput = transactions[0].RemoveInput[:1] // too short

	req := &AggregateProofRequest{
		OldRoot:       bis(0),
		NewRoot:       bis(0),
		UtxoHashes:    utxoHashes,
		AggrInstances: aggrInstances,
		Transactions:  transactions,
	}
	_, err := cm.GenerateAggregateProof(req)
	assert.Error(t, err)
}
